package dataprocessing

import (
	"sort"
	"strconv"
	"strings"

	"adlens/pkg/contracts/domain"
)

// This file implements the record-set operations the dashboard table
// is built on: substring/type filtering, per-column sorting with the
// three comparison policies of the table contract, and pagination.
// All operations work on copies; the canonical parsed order is never
// mutated.

// SortDirection selects ascending or descending order.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// numericSortFields are compared by their integer value.
var numericSortFields = map[string]func(domain.AdRecord) int{
	"order":                func(r domain.AdRecord) int { return r.Order },
	"views":                func(r domain.AdRecord) int { return r.Views },
	"clicks":               func(r domain.AdRecord) int { return r.Clicks },
	"conversions":          func(r domain.AdRecord) int { return r.Conversions },
	"direct_conversions":   func(r domain.AdRecord) int { return r.DirectConversions },
	"products_sold":        func(r domain.AdRecord) int { return r.ProductsSold },
	"direct_products_sold": func(r domain.AdRecord) int { return r.DirectProductsSold },
	"gmv":                  func(r domain.AdRecord) int { return r.GMV },
	"direct_gmv":           func(r domain.AdRecord) int { return r.DirectGMV },
	"cost":                 func(r domain.AdRecord) int { return r.Cost },
	"average_rank":         func(r domain.AdRecord) int { return r.AverageRank },
}

// percentSortFields carry source-formatted ratio text and are compared
// by stripping a trailing % and parsing as a float, non-numeric as 0.
var percentSortFields = map[string]func(domain.AdRecord) string{
	"click_rate":             func(r domain.AdRecord) string { return r.ClickRate },
	"conversion_rate":        func(r domain.AdRecord) string { return r.ConversionRate },
	"direct_conversion_rate": func(r domain.AdRecord) string { return r.DirectConversionRate },
	"roas":                   func(r domain.AdRecord) string { return r.ROAS },
	"direct_roas":            func(r domain.AdRecord) string { return r.DirectROAS },
	"acos":                   func(r domain.AdRecord) string { return r.ACOS },
	"direct_acos":            func(r domain.AdRecord) string { return r.DirectACOS },
}

// stringSortFields fall back to case-insensitive lexical comparison.
var stringSortFields = map[string]func(domain.AdRecord) string{
	"keyword":                    func(r domain.AdRecord) string { return r.Keyword },
	"keyword_type":               func(r domain.AdRecord) string { return r.KeywordType },
	"search_command":             func(r domain.AdRecord) string { return r.SearchCommand },
	"bidding_method":             func(r domain.AdRecord) string { return r.BiddingMethod },
	"cost_per_conversion":        func(r domain.AdRecord) string { return r.CostPerConversion },
	"direct_cost_per_conversion": func(r domain.AdRecord) string { return r.DirectCostPerConversion },
}

// IsSortableField reports whether name is a valid sort column.
func IsSortableField(name string) bool {
	if _, ok := numericSortFields[name]; ok {
		return true
	}
	if _, ok := percentSortFields[name]; ok {
		return true
	}
	_, ok := stringSortFields[name]
	return ok
}

// FilterRecords returns the records matching the given criteria.
// search matches as a case-insensitive substring of the keyword or the
// search command; keywordType matches by equality after empty-type
// normalization to "Unknown". Empty criteria match everything. The
// input slice is not modified; the result is a fresh slice.
func FilterRecords(records []domain.AdRecord, search, keywordType string) []domain.AdRecord {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]domain.AdRecord, 0, len(records))
	for _, r := range records {
		if search != "" &&
			!strings.Contains(strings.ToLower(r.Keyword), search) &&
			!strings.Contains(strings.ToLower(r.SearchCommand), search) {
			continue
		}
		if keywordType != "" && r.KeywordTypeOrUnknown() != keywordType {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SortRecords returns a sorted copy of records ordered by the named
// field. Unknown field names leave the order unchanged. The sort is
// stable so equal values keep their relative order.
func SortRecords(records []domain.AdRecord, field string, dir SortDirection) []domain.AdRecord {
	out := make([]domain.AdRecord, len(records))
	copy(out, records)

	var less func(a, b domain.AdRecord) bool
	switch {
	case numericSortFields[field] != nil:
		get := numericSortFields[field]
		less = func(a, b domain.AdRecord) bool { return get(a) < get(b) }
	case percentSortFields[field] != nil:
		get := percentSortFields[field]
		less = func(a, b domain.AdRecord) bool { return percentValue(get(a)) < percentValue(get(b)) }
	case stringSortFields[field] != nil:
		get := stringSortFields[field]
		less = func(a, b domain.AdRecord) bool { return strings.ToLower(get(a)) < strings.ToLower(get(b)) }
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		if dir == SortDesc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// percentValue parses source-formatted ratio text ("12.34%", "1.5")
// into a float for comparison. Non-numeric text compares as zero.
func percentValue(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// Page is one page of a filtered and sorted record view.
type Page struct {
	Records    []domain.AdRecord `json:"records"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalRows  int               `json:"total_rows"`
	TotalPages int               `json:"total_pages"`
}

// Paginate slices records into the requested 1-based page. Page and
// size are clamped to sane values; a page past the end yields an empty
// record list with the counts intact.
func Paginate(records []domain.AdRecord, page, pageSize int) Page {
	if pageSize < 1 {
		pageSize = 10
	}
	if page < 1 {
		page = 1
	}

	total := len(records)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Page{
		Records:    records[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalRows:  total,
		TotalPages: totalPages,
	}
}

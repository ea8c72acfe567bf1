package testutil

import (
	"fmt"
	"strings"
)

// ReportRow holds the values a test cares about when building a data
// row; everything else is filled with plausible defaults.
type ReportRow struct {
	Order         int
	Keyword       string
	KeywordType   string
	SearchCommand string
	Views         int
	Clicks        int
	ClickRate     string
	Conversions   int
	Cost          int
	GMV           int
	AverageRank   int
}

// ReportText assembles a complete export file: the nine metadata
// lines, the marker line, and one 24-field data row per entry.
func ReportText(rows ...ReportRow) string {
	var b strings.Builder
	b.WriteString(ReportHeaderText())
	for _, row := range rows {
		b.WriteString(DataRow(row))
		b.WriteString("\n")
	}
	return b.String()
}

// ReportHeaderText returns the free-form header block plus the marker
// line that opens the data section.
func ReportHeaderText() string {
	return strings.Join([]string{
		"Keyword Ads Report",
		"Username,tester01",
		"Store,Test Store",
		"Seller ID,SELLER-42",
		"Ads name,Summer Campaign",
		"Product ID,PROD-777",
		"Data section,",
		"Generated at,2026-08-01 10:00",
		"Time range,2026-07-01 - 2026-07-31",
		"Thứ tự,Từ khóa,Loại từ khóa,Lệnh tìm kiếm,Phương thức đấu thầu,Lượt xem,Lượt click,Tỷ lệ click,Chuyển đổi,Chuyển đổi trực tiếp,Tỷ lệ chuyển đổi,Tỷ lệ chuyển đổi trực tiếp,Chi phí mỗi chuyển đổi,Chi phí mỗi chuyển đổi trực tiếp,Sản phẩm đã bán,Sản phẩm bán trực tiếp,GMV,GMV trực tiếp,Chi phí,Thứ hạng trung bình,ROAS,ROAS trực tiếp,ACOS,ACOS trực tiếp",
		"",
	}, "\n")
}

// DataRow renders one 24-field data line from a ReportRow.
func DataRow(r ReportRow) string {
	if r.Keyword == "" {
		r.Keyword = "keyword"
	}
	if r.ClickRate == "" {
		r.ClickRate = "1.00%"
	}
	fields := []string{
		itoa(r.Order),          // order
		quote(r.Keyword),       // keyword
		r.KeywordType,          // keyword type
		quote(r.SearchCommand), // search command
		"Broad match",          // bidding method
		itoa(r.Views),
		itoa(r.Clicks),
		r.ClickRate,
		itoa(r.Conversions),
		"0",      // direct conversions
		"2.00%",  // conversion rate
		"1.00%",  // direct conversion rate
		"5000",   // cost per conversion
		"0",      // direct cost per conversion
		"3",      // products sold
		"1",      // direct products sold
		itoa(r.GMV),
		"0", // direct gmv
		itoa(r.Cost),
		itoa(r.AverageRank),
		"2.5", // roas
		"1.0", // direct roas
		"40.00%",
		"10.00%",
	}
	return strings.Join(fields, ",")
}

func itoa(v int) string { return fmt.Sprintf("%d", v) }

func quote(s string) string {
	if strings.ContainsAny(s, ",\"") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

package exporter

import (
	"bytes"
	"strconv"
	"strings"

	"adlens/pkg/contracts/domain"
)

// ExportHeader is the fixed header row of the re-export format.
const ExportHeader = "Order,Keyword,Type,Search Command,Views,Clicks,Click Rate,Conversions,Cost,GMV,Avg Rank"

// utf8BOM helps spreadsheet tools detect UTF-8 encoded output.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options configures CSV rendering.
type Options struct {
	// BOMPrefix prepends a UTF-8 byte order mark for Excel compatibility.
	BOMPrefix bool
}

// WriteCSV renders the given records as CSV text using the fixed
// 11-column export subset. Keyword, type, and search command are always
// wrapped in double quotes (embedded quotes doubled); the keyword type
// is normalized so empty types export as "Unknown". Records are emitted
// in the order given, one row per record.
func WriteCSV(records []domain.AdRecord, opts Options) []byte {
	var buf bytes.Buffer
	if opts.BOMPrefix {
		buf.Write(utf8BOM)
	}
	buf.WriteString(ExportHeader)
	buf.WriteByte('\n')

	for _, r := range records {
		row := []string{
			strconv.Itoa(r.Order),
			quote(r.Keyword),
			quote(r.KeywordTypeOrUnknown()),
			quote(r.SearchCommand),
			strconv.Itoa(r.Views),
			strconv.Itoa(r.Clicks),
			quote(r.ClickRate),
			strconv.Itoa(r.Conversions),
			strconv.Itoa(r.Cost),
			strconv.Itoa(r.GMV),
			strconv.Itoa(r.AverageRank),
		}
		buf.WriteString(strings.Join(row, ","))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// quote wraps a field in double quotes, doubling any embedded quotes
// per CSV quoting rules.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Filename derives the download filename for an export from the ad
// campaign name, falling back to a generic name when the header did
// not carry one.
func Filename(header domain.ReportHeader) string {
	name := strings.TrimSpace(header.AdName)
	if name == "" {
		return "keyword-report.csv"
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, name)
	return name + ".csv"
}

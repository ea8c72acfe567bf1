package dataprocessing

import (
	"context"
	"encoding/csv"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"adlens/pkg/contracts/domain"
)

// DataSectionMarker identifies the column-header line that starts the
// tabular section of an export file. The vendor emits it in Vietnamese
// regardless of account locale, so a literal match is reliable.
const DataSectionMarker = "Thứ tự,Từ khóa,Loại từ khóa"

// ErrDataSectionNotFound is returned when no line of the input contains
// DataSectionMarker. It is the parser's only failure mode; every other
// anomaly is absorbed by defaulting or row dropping.
var ErrDataSectionNotFound = errors.New("data section marker not found")

// minRecordFields is the number of fields a data row must have to be
// accepted. Shorter rows are dropped without failing the parse.
const minRecordFields = 24

// Data-section column positions, 0-indexed.
const (
	colOrder = iota
	colKeyword
	colKeywordType
	colSearchCommand
	colBiddingMethod
	colViews
	colClicks
	colClickRate
	colConversions
	colDirectConversions
	colConversionRate
	colDirectConversionRate
	colCostPerConversion
	colDirectCostPerConversion
	colProductsSold
	colDirectProductsSold
	colGMV
	colDirectGMV
	colCost
	colAverageRank
	colROAS
	colDirectROAS
	colACOS
	colDirectACOS
)

// Header metadata line positions within the blank-filtered line list.
// Position 6 is a labeled separator in the source format and carries
// no value, so it has no constant here.
const (
	lineTitle       = 0
	lineUsername    = 1
	lineStoreName   = 2
	lineSellerID    = 3
	lineAdName      = 4
	lineProductID   = 5
	lineGeneratedAt = 7
	lineTimeRange   = 8
)

// Parser converts raw export file text into a domain.ParsedReport.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser. A nil logger falls back to slog.Default.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger.With(slog.String("component", "report_parser"))}
}

// Parse runs the full ingestion pipeline over raw file text: filter
// blank lines, extract header metadata from fixed positions, locate
// the data section, and convert each remaining row into an AdRecord.
//
// The returned report is complete or the error is ErrDataSectionNotFound;
// there is no partial result. A data section with zero valid rows is a
// successful parse with an empty record set.
func (p *Parser) Parse(ctx context.Context, text string) (*domain.ParsedReport, error) {
	lines := filterLines(text)

	header := extractHeader(lines)

	dataStart := -1
	for i, line := range lines {
		if strings.Contains(line, DataSectionMarker) {
			dataStart = i + 1
			break
		}
	}
	if dataStart < 0 {
		p.logger.WarnContext(ctx, "parse failed",
			slog.String("reason", "marker line missing"),
			slog.Int("line_count", len(lines)))
		return nil, ErrDataSectionNotFound
	}

	records := make([]domain.AdRecord, 0, len(lines)-dataStart)
	dropped := 0
	for _, line := range lines[dataStart:] {
		fields, err := SplitFields(line)
		if err != nil || len(fields) < minRecordFields {
			dropped++
			continue
		}
		records = append(records, recordFromFields(fields))
	}

	p.logger.InfoContext(ctx, "report parsed",
		slog.Int("records", len(records)),
		slog.Int("dropped_rows", dropped),
		slog.String("ad_name", header.AdName))

	return &domain.ParsedReport{
		Header:      header,
		Records:     records,
		DroppedRows: dropped,
	}, nil
}

// SplitFields splits one raw data line into ordered string fields,
// honoring standard CSV quoting for embedded commas and quotes. An
// error marks the line as malformed; callers drop such lines.
func SplitFields(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.Read()
}

// filterLines splits input on newlines and drops lines that are empty
// after trimming. Header line positions refer to this filtered list.
func filterLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

// extractHeader pulls the metadata fields from their fixed positions.
// A missing line or one with fewer than two comma-delimited fields
// yields an empty string for that field, never an error.
func extractHeader(lines []string) domain.ReportHeader {
	title := ""
	if len(lines) > lineTitle {
		title = lines[lineTitle]
	}
	return domain.ReportHeader{
		Title:       title,
		Username:    secondField(lines, lineUsername),
		StoreName:   secondField(lines, lineStoreName),
		SellerID:    secondField(lines, lineSellerID),
		AdName:      secondField(lines, lineAdName),
		ProductID:   secondField(lines, lineProductID),
		GeneratedAt: secondField(lines, lineGeneratedAt),
		TimeRange:   secondField(lines, lineTimeRange),
	}
}

func secondField(lines []string, idx int) string {
	if idx >= len(lines) {
		return ""
	}
	parts := strings.Split(lines[idx], ",")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// recordFromFields builds one AdRecord from a row with at least
// minRecordFields fields. Integer fields default to zero on empty or
// non-numeric input; string fields are copied verbatim.
func recordFromFields(fields []string) domain.AdRecord {
	return domain.AdRecord{
		Order:         intField(fields, colOrder),
		Keyword:       strField(fields, colKeyword),
		KeywordType:   strField(fields, colKeywordType),
		SearchCommand: strField(fields, colSearchCommand),
		BiddingMethod: strField(fields, colBiddingMethod),

		Views:              intField(fields, colViews),
		Clicks:             intField(fields, colClicks),
		Conversions:        intField(fields, colConversions),
		DirectConversions:  intField(fields, colDirectConversions),
		ProductsSold:       intField(fields, colProductsSold),
		DirectProductsSold: intField(fields, colDirectProductsSold),
		GMV:                intField(fields, colGMV),
		DirectGMV:          intField(fields, colDirectGMV),
		Cost:               intField(fields, colCost),
		AverageRank:        intField(fields, colAverageRank),

		ClickRate:               strField(fields, colClickRate),
		ConversionRate:          strField(fields, colConversionRate),
		DirectConversionRate:    strField(fields, colDirectConversionRate),
		CostPerConversion:       strField(fields, colCostPerConversion),
		DirectCostPerConversion: strField(fields, colDirectCostPerConversion),
		ROAS:                    strField(fields, colROAS),
		DirectROAS:              strField(fields, colDirectROAS),
		ACOS:                    strField(fields, colACOS),
		DirectACOS:              strField(fields, colDirectACOS),
	}
}

func strField(fields []string, idx int) string {
	if idx >= len(fields) {
		return ""
	}
	return fields[idx]
}

func intField(fields []string, idx int) int {
	if idx >= len(fields) {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(fields[idx]))
	if err != nil {
		return 0
	}
	return v
}

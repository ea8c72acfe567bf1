package exporter

import (
	"fmt"
	"strconv"
	"strings"

	"adlens/internal/dataprocessing"
	"adlens/pkg/contracts/domain"
)

// ParseRow reads one exported data row back into a sparse AdRecord.
// Only the 11 exported columns are populated; everything else keeps
// its zero value. This exists so an exported view can be re-imported
// (and so round-trip behavior is testable) without going through the
// full report parser, which expects the vendor header block.
func ParseRow(line string) (domain.AdRecord, error) {
	fields, err := dataprocessing.SplitFields(line)
	if err != nil {
		return domain.AdRecord{}, fmt.Errorf("split export row: %w", err)
	}
	if len(fields) < 11 {
		return domain.AdRecord{}, fmt.Errorf("export row has %d fields, want 11", len(fields))
	}
	return domain.AdRecord{
		Order:         atoi(fields[0]),
		Keyword:       fields[1],
		KeywordType:   fields[2],
		SearchCommand: fields[3],
		Views:         atoi(fields[4]),
		Clicks:        atoi(fields[5]),
		ClickRate:     fields[6],
		Conversions:   atoi(fields[7]),
		Cost:          atoi(fields[8]),
		GMV:           atoi(fields[9]),
		AverageRank:   atoi(fields[10]),
	}, nil
}

func atoi(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}

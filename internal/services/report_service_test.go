package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adlens/internal/dataprocessing"
	apperrors "adlens/internal/errors"
	"adlens/internal/shared/testutil"
)

func newService(t *testing.T) *ReportService {
	logger, _ := testutil.NewLogger(t)
	return NewReportService(dataprocessing.NewParser(logger), nil, nil, logger)
}

func loadSample(t *testing.T, s *ReportService) *Snapshot {
	t.Helper()
	text := testutil.ReportText(
		testutil.ReportRow{Order: 1, Keyword: "running shoes", KeywordType: "Broad", Views: 100, Clicks: 10, GMV: 500, Cost: 50},
		testutil.ReportRow{Order: 2, Keyword: "sandals", Views: 300, Clicks: 30, GMV: 900, Cost: 60},
		testutil.ReportRow{Order: 3, Keyword: "boots", KeywordType: "Exact", Views: 200, Clicks: 20, GMV: 700, Cost: 40},
	)
	snap, err := s.Load(context.Background(), "report.csv", text)
	require.NoError(t, err)
	return snap
}

func TestLoad_Success(t *testing.T) {
	s := newService(t)
	snap := loadSample(t, s)

	assert.Equal(t, "report.csv", snap.Filename)
	assert.Len(t, snap.Records, 3)
	assert.Equal(t, 600, snap.Statistics.TotalViews)
	assert.Equal(t, "Summer Campaign", snap.Header.AdName)

	got, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Same(t, snap, got)
}

func TestLoad_ReplacesPrevious(t *testing.T) {
	s := newService(t)
	loadSample(t, s)

	text := testutil.ReportText(testutil.ReportRow{Order: 1, Keyword: "only", Views: 7})
	snap, err := s.Load(context.Background(), "second.csv", text)
	require.NoError(t, err)
	assert.Len(t, snap.Records, 1)

	got, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second.csv", got.Filename)
}

func TestLoad_StructuralFailureClearsState(t *testing.T) {
	s := newService(t)
	loadSample(t, s)

	_, err := s.Load(context.Background(), "broken.csv", "not a report at all")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeParsing, appErr.Type)
	assert.ErrorIs(t, err, dataprocessing.ErrDataSectionNotFound)

	// Stale data must not survive a failed load.
	_, err = s.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrNoReport)
}

func TestSnapshot_Empty(t *testing.T) {
	s := newService(t)
	_, err := s.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrNoReport)
}

func TestQuery(t *testing.T) {
	s := newService(t)
	loadSample(t, s)

	tests := []struct {
		name       string
		query      RecordQuery
		wantOrders []int
		wantTotal  int
	}{
		{
			name:       "no criteria",
			query:      RecordQuery{},
			wantOrders: []int{1, 2, 3},
			wantTotal:  3,
		},
		{
			name:       "search filter",
			query:      RecordQuery{Search: "SHOE"},
			wantOrders: []int{1},
			wantTotal:  1,
		},
		{
			name:       "type filter normalizes empty to Unknown",
			query:      RecordQuery{KeywordType: "Unknown"},
			wantOrders: []int{2},
			wantTotal:  1,
		},
		{
			name:       "sort descending",
			query:      RecordQuery{SortField: "views", SortDir: "desc"},
			wantOrders: []int{2, 3, 1},
			wantTotal:  3,
		},
		{
			name:       "pagination",
			query:      RecordQuery{Page: 2, PageSize: 2},
			wantOrders: []int{3},
			wantTotal:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.Query(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, result.Total)

			var orders []int
			for _, r := range result.Records {
				orders = append(orders, r.Order)
			}
			assert.Equal(t, tt.wantOrders, orders)
		})
	}
}

func TestQuery_NoReport(t *testing.T) {
	s := newService(t)
	_, err := s.Query(context.Background(), RecordQuery{})
	assert.ErrorIs(t, err, ErrNoReport)
}

func TestExport(t *testing.T) {
	s := newService(t)
	loadSample(t, s)

	result, err := s.Export(context.Background(), RecordQuery{})
	require.NoError(t, err)
	assert.Equal(t, "Summer Campaign.csv", result.Filename)

	// BOM then header row.
	require.Greater(t, len(result.Data), 3)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, result.Data[:3])
	assert.Contains(t, string(result.Data), "Order,Keyword,Type")
}

func TestExport_FilteredAndSorted(t *testing.T) {
	s := newService(t)
	loadSample(t, s)

	result, err := s.Export(context.Background(), RecordQuery{
		SortField: "views",
		SortDir:   "desc",
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(result.Data[3:]), "\n"), "\n")
	require.Len(t, lines, 4)
	// Rows follow descending views: sandals, boots, running shoes.
	assert.True(t, strings.HasPrefix(lines[1], "2,"))
	assert.True(t, strings.HasPrefix(lines[2], "3,"))
	assert.True(t, strings.HasPrefix(lines[3], "1,"))

	filtered, err := s.Export(context.Background(), RecordQuery{Search: "boots"})
	require.NoError(t, err)
	lines = strings.Split(strings.TrimRight(string(filtered.Data[3:]), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "3,"))
}

func TestClear(t *testing.T) {
	s := newService(t)
	loadSample(t, s)

	s.Clear(context.Background())
	_, err := s.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrNoReport)

	// Clearing twice is harmless.
	s.Clear(context.Background())
}

// Package services holds the application layer between the HTTP
// transport and the data processing packages. The report service owns
// the single in-memory report snapshot.
package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"adlens/internal/dataprocessing"
	apperrors "adlens/internal/errors"
	"adlens/internal/exporter"
	"adlens/internal/infrastructure"
	"adlens/internal/websocket"
	"adlens/pkg/contracts/domain"
)

// RecordQuery describes one records-table request: filtering, sorting
// and pagination over the loaded report.
type RecordQuery struct {
	Search      string `validate:"omitempty,max=200"`
	KeywordType string `validate:"omitempty,max=100"`
	SortField   string `validate:"omitempty,max=50"`
	SortDir     string `validate:"omitempty,oneof=asc desc"`
	Page        int    `validate:"omitempty,min=1"`
	PageSize    int    `validate:"omitempty,min=1,max=500"`
}

// Snapshot is the immutable result of one successful load. Handlers
// read from it without further locking.
type Snapshot struct {
	Filename   string
	Header     domain.ReportHeader
	Records    []domain.AdRecord
	Statistics domain.Statistics
	Dropped    int
}

// QueryResult is one page of filtered and sorted records.
type QueryResult struct {
	Records    []domain.AdRecord
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// ExportResult carries a rendered CSV document and its download name.
type ExportResult struct {
	Filename string
	Data     []byte
}

// ReportService parses uploaded campaign exports and serves the
// resulting snapshot. At most one report is loaded at a time; a new
// upload replaces the previous one atomically.
type ReportService struct {
	parser  *dataprocessing.Parser
	hub     *websocket.Hub
	metrics *infrastructure.ReportMetrics
	logger  *slog.Logger

	mu      sync.RWMutex
	current *Snapshot
}

// NewReportService creates a report service. The hub and metrics may
// be nil in tests.
func NewReportService(parser *dataprocessing.Parser, hub *websocket.Hub, metrics *infrastructure.ReportMetrics, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		parser:  parser,
		hub:     hub,
		metrics: metrics,
		logger:  logger.With(slog.String("service", "report")),
	}
}

// Load parses text as a campaign export and replaces the current
// snapshot. On a structural failure (missing data section) the
// previous snapshot is cleared so stale data is never served next to a
// reported error.
func (s *ReportService) Load(ctx context.Context, filename, text string) (*Snapshot, error) {
	parsed, err := s.parser.Parse(ctx, text)
	if err != nil {
		s.mu.Lock()
		s.current = nil
		s.mu.Unlock()

		s.recordFailure(ctx)
		s.logger.ErrorContext(ctx, "report load failed",
			slog.String("filename", filename),
			slog.String("error", err.Error()))
		return nil, apperrors.NewParsingError("data section not found in uploaded file", err).
			WithContext("filename", filename)
	}

	stats := dataprocessing.ComputeStatistics(parsed.Records)

	snap := &Snapshot{
		Filename:   filename,
		Header:     parsed.Header,
		Records:    parsed.Records,
		Statistics: stats,
		Dropped:    parsed.DroppedRows,
	}

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()

	s.recordSuccess(ctx, parsed.DroppedRows)
	if s.hub != nil {
		s.hub.BroadcastReportLoaded(filename, len(parsed.Records), parsed.DroppedRows)
	}

	s.logger.InfoContext(ctx, "report loaded",
		slog.String("filename", filename),
		slog.Int("records", len(parsed.Records)),
		slog.Int("dropped_rows", parsed.DroppedRows))

	return snap, nil
}

// Snapshot returns the currently loaded report, or ErrNoReport when
// nothing has been uploaded yet.
func (s *ReportService) Snapshot(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	snap := s.current
	s.mu.RUnlock()

	if snap == nil {
		return nil, ErrNoReport
	}
	return snap, nil
}

// Query applies filtering, sorting and pagination to the loaded
// records.
func (s *ReportService) Query(ctx context.Context, q RecordQuery) (*QueryResult, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	records := dataprocessing.FilterRecords(snap.Records, q.Search, q.KeywordType)

	if q.SortField != "" {
		dir := dataprocessing.SortAsc
		if strings.EqualFold(q.SortDir, "desc") {
			dir = dataprocessing.SortDesc
		}
		records = dataprocessing.SortRecords(records, q.SortField, dir)
	}

	page := dataprocessing.Paginate(records, q.Page, q.PageSize)

	return &QueryResult{
		Records:    page.Records,
		Total:      page.TotalRows,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// Export renders the loaded report as the 11 column CSV document.
// Filter and sort criteria apply the same way as Query; pagination is
// ignored so the export always covers the whole matching view.
func (s *ReportService) Export(ctx context.Context, q RecordQuery) (*ExportResult, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	records := dataprocessing.FilterRecords(snap.Records, q.Search, q.KeywordType)
	if q.SortField != "" {
		dir := dataprocessing.SortAsc
		if strings.EqualFold(q.SortDir, "desc") {
			dir = dataprocessing.SortDesc
		}
		records = dataprocessing.SortRecords(records, q.SortField, dir)
	}

	data := exporter.WriteCSV(records, exporter.Options{BOMPrefix: true})
	return &ExportResult{
		Filename: exporter.Filename(snap.Header),
		Data:     data,
	}, nil
}

// Clear discards the current snapshot. Clearing an empty service is
// not an error.
func (s *ReportService) Clear(ctx context.Context) {
	s.mu.Lock()
	had := s.current != nil
	s.current = nil
	s.mu.Unlock()

	if had {
		if s.hub != nil {
			s.hub.BroadcastReportCleared()
		}
		s.logger.InfoContext(ctx, "report cleared")
	}
}

func (s *ReportService) recordSuccess(ctx context.Context, dropped int) {
	if s.metrics == nil {
		return
	}
	s.metrics.ReportsParsed.Add(ctx, 1)
	if dropped > 0 {
		s.metrics.RowsDropped.Add(ctx, int64(dropped))
	}
}

func (s *ReportService) recordFailure(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	s.metrics.ParseFailures.Add(ctx, 1)
}

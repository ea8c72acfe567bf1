// Package http contains the chi HTTP handlers for the dashboard API.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"adlens/internal/dataprocessing"
	apperrors "adlens/internal/errors"
	"adlens/internal/services"
	"adlens/internal/validation"
	"adlens/pkg/contracts/domain"
)

// ReportService is the application surface the handlers depend on.
type ReportService interface {
	Load(ctx context.Context, filename, text string) (*services.Snapshot, error)
	Snapshot(ctx context.Context) (*services.Snapshot, error)
	Query(ctx context.Context, q services.RecordQuery) (*services.QueryResult, error)
	Export(ctx context.Context, q services.RecordQuery) (*services.ExportResult, error)
	Clear(ctx context.Context)
}

// ReportHandler serves the report upload, summary, records table and
// export endpoints.
type ReportHandler struct {
	service   ReportService
	validator *validation.UploadValidator
	validate  *validator.Validate
	errors    *apperrors.ErrorHandler
	logger    *slog.Logger
}

// NewReportHandler creates a report handler. All error responses go
// through the central error handler so the API emits one error media
// type (RFC 7807) everywhere.
func NewReportHandler(service ReportService, uploadValidator *validation.UploadValidator, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{
		service:   service,
		validator: uploadValidator,
		validate:  validator.New(),
		errors:    apperrors.NewErrorHandler(logger, false),
		logger:    logger.With(slog.String("handler", "report")),
	}
}

// Routes returns the report API routes.
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Upload)
	r.Get("/", h.Summary)
	r.Delete("/", h.Clear)
	r.Get("/records", h.Records)
	r.Get("/export", h.Export)
	return r
}

// summaryResponse is the GET /api/report body.
type summaryResponse struct {
	Filename    string              `json:"filename"`
	Header      domain.ReportHeader `json:"header"`
	Statistics  domain.Statistics   `json:"statistics"`
	RecordCount int                 `json:"recordCount"`
	DroppedRows int                 `json:"droppedRows"`
}

// recordsResponse is the GET /api/report/records body.
type recordsResponse struct {
	Records    []domain.AdRecord `json:"records"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}

// Upload handles POST /api/report. The file arrives as the multipart
// form field "file"; size and extension are checked before the body is
// parsed.
func (h *ReportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Hard cap on the whole request body, enforced by the server
	// before the multipart reader sees it.
	r.Body = http.MaxBytesReader(w, r.Body, h.validator.MaxFileSize())

	if err := r.ParseMultipartForm(h.validator.MaxFileSize()); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errors.HandleError(w, r, apperrors.ErrPayloadTooLarge)
			return
		}
		h.errors.HandleError(w, r, apperrors.ErrValidation("file", "invalid multipart form: "+err.Error()))
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		h.errors.HandleError(w, r, apperrors.ErrValidation("file", "missing form field \"file\""))
		return
	}
	defer file.Close()

	if err := h.validator.ValidateFilename(fileHeader.Filename); err != nil {
		h.errors.HandleError(w, r, apperrors.ErrUnsupportedFileType)
		return
	}
	if err := h.validator.ValidateSize(fileHeader.Filename, fileHeader.Size); err != nil {
		h.errors.HandleError(w, r, apperrors.ErrPayloadTooLarge)
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read upload",
			slog.String("filename", fileHeader.Filename),
			slog.String("error", err.Error()))
		h.errors.HandleError(w, r, apperrors.ErrInternalServer)
		return
	}

	snap, err := h.service.Load(ctx, fileHeader.Filename, string(content))
	if err != nil {
		h.errors.HandleError(w, r, apperrors.ErrParseFailure(err))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, summaryFromSnapshot(snap))
}

// Summary handles GET /api/report.
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context())
	if err != nil {
		h.errors.HandleError(w, r, apperrors.ErrReportNotLoaded)
		return
	}
	render.JSON(w, r, summaryFromSnapshot(snap))
}

// Records handles GET /api/report/records.
func (h *ReportHandler) Records(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query, err := h.parseRecordQuery(r)
	if err != nil {
		h.errors.HandleError(w, r, apperrors.ErrValidation("query", err.Error()))
		return
	}
	if err := h.validate.Struct(query); err != nil {
		h.errors.HandleError(w, r, apperrors.NewValidationErrors(fieldErrors(err)))
		return
	}

	result, err := h.service.Query(ctx, query)
	if err != nil {
		h.errors.HandleError(w, r, apperrors.ErrReportNotLoaded)
		return
	}

	resp := recordsResponse{
		Records:    result.Records,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}
	if resp.Records == nil {
		resp.Records = []domain.AdRecord{}
	}
	render.JSON(w, r, resp)
}

// Export handles GET /api/report/export, streaming the current view
// back as a CSV attachment. Filter and sort params match /records;
// pagination does not apply to exports.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	query, err := h.parseRecordQuery(r)
	if err != nil {
		h.errors.HandleError(w, r, apperrors.ErrValidation("query", err.Error()))
		return
	}
	if err := h.validate.Struct(query); err != nil {
		h.errors.HandleError(w, r, apperrors.NewValidationErrors(fieldErrors(err)))
		return
	}

	result, err := h.service.Export(r.Context(), query)
	if err != nil {
		h.errors.HandleError(w, r, apperrors.ErrReportNotLoaded)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Data)
}

// Clear handles DELETE /api/report.
func (h *ReportHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.service.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReportHandler) parseRecordQuery(r *http.Request) (services.RecordQuery, error) {
	q := services.RecordQuery{
		Search:      r.URL.Query().Get("search"),
		KeywordType: r.URL.Query().Get("type"),
		SortField:   r.URL.Query().Get("sort"),
		SortDir:     r.URL.Query().Get("dir"),
	}

	var err error
	if q.Page, err = intParam(r, "page", 1); err != nil {
		return q, err
	}
	if q.PageSize, err = intParam(r, "page_size", 0); err != nil {
		return q, err
	}

	if q.SortField != "" && !dataprocessing.IsSortableField(q.SortField) {
		return q, fmt.Errorf("unknown sort field %q", q.SortField)
	}
	return q, nil
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parameter %q must be an integer", name)
	}
	return v, nil
}

func fieldErrors(err error) []apperrors.ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []apperrors.ValidationError{{Field: "query", Message: err.Error()}}
	}
	out := make([]apperrors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apperrors.ValidationError{
			Field:   fe.Field(),
			Message: fmt.Sprintf("failed %q validation", fe.Tag()),
		})
	}
	return out
}

func summaryFromSnapshot(snap *services.Snapshot) summaryResponse {
	return summaryResponse{
		Filename:    snap.Filename,
		Header:      snap.Header,
		Statistics:  snap.Statistics,
		RecordCount: len(snap.Records),
		DroppedRows: snap.Dropped,
	}
}

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adlens/internal/config"
	"adlens/internal/dataprocessing"
	"adlens/internal/services"
	"adlens/internal/shared/testutil"
	"adlens/internal/validation"
)

func newHandler(t *testing.T) (*ReportHandler, *services.ReportService) {
	logger, _ := testutil.NewLogger(t)
	service := services.NewReportService(dataprocessing.NewParser(logger), nil, nil, logger)
	uploadValidator := validation.NewUploadValidator(config.UploadConfig{
		MaxFileSize:       1 << 20,
		AllowedExtensions: []string{".csv", ".txt"},
	}, logger)
	return NewReportHandler(service, uploadValidator, logger), service
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func loadReport(t *testing.T, service *services.ReportService) {
	t.Helper()
	text := testutil.ReportText(
		testutil.ReportRow{Order: 1, Keyword: "running shoes", KeywordType: "Broad", Views: 100, Clicks: 10},
		testutil.ReportRow{Order: 2, Keyword: "sandals", Views: 300, Clicks: 30},
	)
	_, err := service.Load(context.Background(), "report.csv", text)
	require.NoError(t, err)
}

func TestUpload_Success(t *testing.T) {
	handler, _ := newHandler(t)

	body, contentType := multipartBody(t, "report.csv",
		testutil.ReportText(testutil.ReportRow{Order: 1, Keyword: "shoes", Views: 10, Clicks: 1}))

	req := httptest.NewRequest(http.MethodPost, "/api/report", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Upload(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "report.csv", resp["filename"])
	assert.Equal(t, float64(1), resp["recordCount"])
}

func TestUpload_MissingFileField(t *testing.T) {
	handler, _ := newHandler(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("other", "value"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/report", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()

	handler.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_UnsupportedExtension(t *testing.T) {
	handler, _ := newHandler(t)

	body, contentType := multipartBody(t, "report.xlsx", "irrelevant")
	req := httptest.NewRequest(http.MethodPost, "/api/report", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Upload(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNSUPPORTED_FILE_TYPE")
}

func TestUpload_MissingDataSection(t *testing.T) {
	handler, _ := newHandler(t)

	body, contentType := multipartBody(t, "report.csv", "no marker anywhere\njust text\n")
	req := httptest.NewRequest(http.MethodPost, "/api/report", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Upload(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "DATA_SECTION_NOT_FOUND")
}

func TestSummary(t *testing.T) {
	handler, service := newHandler(t)

	// Before any upload.
	rec := httptest.NewRecorder()
	handler.Summary(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "REPORT_NOT_LOADED")

	loadReport(t, service)

	rec = httptest.NewRecorder()
	handler.Summary(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp summaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.RecordCount)
	assert.Equal(t, 400, resp.Statistics.TotalViews)
}

func TestErrorResponses_AreProblemDetails(t *testing.T) {
	handler, _ := newHandler(t)

	// Handler-level errors use the same RFC 7807 shape as the router's
	// 404/405 responses.
	rec := httptest.NewRecorder()
	handler.Summary(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "/errors/report/not-loaded", problem["type"])
	assert.Equal(t, "REPORT_NOT_LOADED", problem["error_code"])
	assert.Equal(t, float64(http.StatusNotFound), problem["status"])
}

func TestRecords(t *testing.T) {
	handler, service := newHandler(t)
	loadReport(t, service)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantOrders []int
	}{
		{"all records", "", http.StatusOK, []int{1, 2}},
		{"search filter", "?search=shoe", http.StatusOK, []int{1}},
		{"sorted descending", "?sort=views&dir=desc", http.StatusOK, []int{2, 1}},
		{"paginated", "?page=2&page_size=1", http.StatusOK, []int{2}},
		{"unknown sort field", "?sort=bogus", http.StatusBadRequest, nil},
		{"bad page value", "?page=x", http.StatusBadRequest, nil},
		{"bad direction", "?sort=views&dir=sideways", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/report/records"+tt.query, nil)
			rec := httptest.NewRecorder()
			handler.Records(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp recordsResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			var orders []int
			for _, r := range resp.Records {
				orders = append(orders, r.Order)
			}
			assert.Equal(t, tt.wantOrders, orders)
		})
	}
}

func TestRecords_NoReport(t *testing.T) {
	handler, _ := newHandler(t)

	rec := httptest.NewRecorder()
	handler.Records(rec, httptest.NewRequest(http.MethodGet, "/api/report/records", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExport(t *testing.T) {
	handler, service := newHandler(t)
	loadReport(t, service)

	rec := httptest.NewRecorder()
	handler.Export(rec, httptest.NewRequest(http.MethodGet, "/api/report/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `"Summer Campaign.csv"`)
	assert.True(t, strings.Contains(rec.Body.String(), "Order,Keyword,Type"))
}

func TestExport_FilteredView(t *testing.T) {
	handler, service := newHandler(t)
	loadReport(t, service)

	rec := httptest.NewRecorder()
	handler.Export(rec, httptest.NewRequest(http.MethodGet, "/api/report/export?search=sandals", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"sandals"`)
	assert.NotContains(t, body, `"running shoes"`)
}

func TestExport_BadQuery(t *testing.T) {
	handler, service := newHandler(t)
	loadReport(t, service)

	rec := httptest.NewRecorder()
	handler.Export(rec, httptest.NewRequest(http.MethodGet, "/api/report/export?sort=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClear(t *testing.T) {
	handler, service := newHandler(t)
	loadReport(t, service)

	rec := httptest.NewRecorder()
	handler.Clear(rec, httptest.NewRequest(http.MethodDelete, "/api/report", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	handler.Summary(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package http

import (
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"adlens/internal/infrastructure"
)

// HealthHandler serves liveness and version information.
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler creates a health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{startedAt: time.Now()}
}

// Routes returns the health routes.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Health)
	return r
}

type healthResponse struct {
	Status    string `json:"status"`
	UptimeSec int64  `json:"uptimeSeconds"`
	Timestamp string `json:"timestamp"`
}

type versionResponse struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	GoVersion string `json:"goVersion"`
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, healthResponse{
		Status:    "healthy",
		UptimeSec: int64(time.Since(h.startedAt).Seconds()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Version handles GET /api/version.
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, versionResponse{
		Service:   infrastructure.ServiceName,
		Version:   infrastructure.ServiceVersion,
		GoVersion: runtime.Version(),
	})
}

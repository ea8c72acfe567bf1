package infrastructure

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
)

const (
	ServiceName    = "adlens"
	ServiceVersion = "1.0.0"
	MeterName      = "adlens"
)

// MetricsProviders holds the OpenTelemetry meter provider and the
// Prometheus scrape handler backed by it.
type MetricsProviders struct {
	MeterProvider  *sdkmetric.MeterProvider
	Meter          metric.Meter
	PrometheusHTTP http.Handler
}

// InitializeMetrics sets up the OTel meter provider with a Prometheus
// reader and registers it globally.
func InitializeMetrics(logger *slog.Logger) (*MetricsProviders, error) {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(ServiceVersion),
	)

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(mp)

	logger.Info("metrics initialized",
		slog.String("exporter", "prometheus"),
		slog.String("service", ServiceName))

	return &MetricsProviders{
		MeterProvider:  mp,
		Meter:          mp.Meter(MeterName, metric.WithInstrumentationVersion(ServiceVersion)),
		PrometheusHTTP: promhttp.Handler(),
	}, nil
}

// ReportMetrics are the application-level counters around report
// ingestion. Rows are still dropped silently at the contract level;
// these counters exist so operators can see that it happened.
type ReportMetrics struct {
	ReportsParsed Int64Counter
	ParseFailures Int64Counter
	RowsDropped   Int64Counter
}

// Int64Counter is the subset of the OTel counter API the service uses.
type Int64Counter = metric.Int64Counter

// NewReportMetrics creates the ingestion counters on the given meter.
func NewReportMetrics(meter metric.Meter) (*ReportMetrics, error) {
	parsed, err := meter.Int64Counter(
		"adlens_reports_parsed_total",
		metric.WithDescription("Total number of successfully parsed report uploads"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(
		"adlens_parse_failures_total",
		metric.WithDescription("Total number of uploads that failed structural parsing"),
	)
	if err != nil {
		return nil, err
	}

	dropped, err := meter.Int64Counter(
		"adlens_rows_dropped_total",
		metric.WithDescription("Total number of malformed data rows dropped during parsing"),
	)
	if err != nil {
		return nil, err
	}

	return &ReportMetrics{
		ReportsParsed: parsed,
		ParseFailures: failures,
		RowsDropped:   dropped,
	}, nil
}

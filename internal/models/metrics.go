package models

import "time"

// SystemMetrics is the lightweight runtime snapshot served by the health
// tooling, aggregated outside the Prometheus registry.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	ReportUploads            uint64    `json:"report_uploads"`
	ReportRowsIngested       uint64    `json:"report_rows_ingested"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// internal/models/serviceresponse/types.go
package serviceresponse

import "time"

// JobResponse representa el resultado de una ejecución disparada por HTTP.
type JobResponse struct {
	Job        string    `json:"job"`
	RunID      string    `json:"run_id"`
	Output     string    `json:"output"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
}

// JobList representa los jobs disponibles.
type JobList struct {
	Jobs []string `json:"jobs"`
}

// ErrorResponse representa un error del trigger (no de un job).
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse representa el estado del servicio.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Breaker string `json:"breaker,omitempty"`
}

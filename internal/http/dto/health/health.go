// Package health define las respuestas de los health checks.
package health

import "time"

// Estados posibles de Readyz.
const (
	StatusReady       = "ready"
	StatusUnavailable = "unavailable"
)

type ComponentStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version,omitempty"`
	KeyCount      int               `json:"keyCount"`
	NextRefreshAt *time.Time        `json:"nextRefreshAt,omitempty"`
	Components    []ComponentStatus `json:"components,omitempty"`
}

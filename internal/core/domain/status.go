package domain

import "time"

// Health statuses reported by the status service.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// Health is a point-in-time snapshot of the service's dependencies.
type Health struct {
	Status            string
	DatabaseConnected bool
	ModelLoaded       bool
	Timestamp         time.Time
}

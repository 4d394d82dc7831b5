package services

import (
	"time"

	"msydash/pkg/contracts/domain"
)

// HealthStatus is the liveness/readiness document served by the health
// endpoints.
type HealthStatus struct {
	Status     string    `json:"status"`
	Uptime     string    `json:"uptime"`
	SnapshotID string    `json:"snapshot_id,omitempty"`
	BuiltAt    time.Time `json:"snapshot_built_at,omitempty"`
}

// HealthService reports process liveness and snapshot readiness.
type HealthService struct {
	dashboard *DashboardService
	startedAt time.Time
}

// NewHealthService creates a health service.
func NewHealthService(dashboard *DashboardService) *HealthService {
	return &HealthService{dashboard: dashboard, startedAt: time.Now()}
}

// Liveness always reports ok while the process is serving.
func (h *HealthService) Liveness() HealthStatus {
	return HealthStatus{Status: "ok", Uptime: time.Since(h.startedAt).String()}
}

// Readiness reports degraded until the first snapshot is published.
func (h *HealthService) Readiness() (HealthStatus, bool) {
	snap, err := h.dashboard.Current()
	if err != nil {
		return HealthStatus{Status: "no_snapshot", Uptime: time.Since(h.startedAt).String()}, false
	}
	return healthFromSnapshot(snap, h.startedAt), true
}

func healthFromSnapshot(snap *domain.MetricsSnapshot, startedAt time.Time) HealthStatus {
	return HealthStatus{
		Status:     "ready",
		Uptime:     time.Since(startedAt).String(),
		SnapshotID: snap.ID,
		BuiltAt:    snap.BuiltAt,
	}
}

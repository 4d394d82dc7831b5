package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"msydash/internal/dataprocessing"
	apierrors "msydash/internal/errors"
	"msydash/internal/metrics"
	"msydash/pkg/contracts/domain"
)

// ErrNoSnapshot is returned before the first successful load cycle.
var ErrNoSnapshot = errors.New("no snapshot published")

// SnapshotNotifier is told whenever a new snapshot is published. The
// websocket hub implements it; a nil notifier is fine.
type SnapshotNotifier interface {
	SnapshotPublished(snapshot *domain.MetricsSnapshot)
}

var (
	snapshotBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "msydash_snapshot_builds_total",
		Help: "Snapshot build attempts by outcome.",
	}, []string{"status"})
	snapshotBuildSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "msydash_snapshot_build_seconds",
		Help:    "Duration of full load and aggregation cycles.",
		Buckets: prometheus.DefBuckets,
	})
	snapshotMalformedRows = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "msydash_snapshot_malformed_rows",
		Help: "Malformed source rows dropped in the currently published snapshot.",
	})
)

// DashboardService owns the current MetricsSnapshot. Exactly one snapshot is
// published at a time; Reload builds a complete replacement and swaps the
// pointer atomically, so concurrent readers never observe a half-built
// snapshot. A failed reload leaves the previous snapshot serving — the only
// retained-old-state behavior in the system.
type DashboardService struct {
	loader     *dataprocessing.Loader
	aggregator *metrics.Aggregator
	logger     *slog.Logger
	notifier   SnapshotNotifier

	current  atomic.Pointer[domain.MetricsSnapshot]
	reloadMu sync.Mutex
}

// NewDashboardService wires the loader and aggregator for one data directory.
func NewDashboardService(loader *dataprocessing.Loader, aggregator *metrics.Aggregator, notifier SnapshotNotifier, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		loader:     loader,
		aggregator: aggregator,
		notifier:   notifier,
		logger:     logger.With(slog.String("component", "dashboard_service")),
	}
}

// Current returns the published snapshot, or ErrNoSnapshot before the first
// successful reload. The caller must treat the snapshot as read-only.
func (s *DashboardService) Current() (*domain.MetricsSnapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

// Reload runs the full load → normalize → aggregate cycle and publishes the
// result. Reloads are serialized; concurrent calls queue rather than race.
func (s *DashboardService) Reload(ctx context.Context) (*domain.MetricsSnapshot, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := time.Now()
	tables, err := s.loader.Load(ctx)
	if err != nil {
		snapshotBuilds.WithLabelValues("error").Inc()
		s.logger.ErrorContext(ctx, "reload failed, previous snapshot retained",
			slog.String("error", err.Error()))
		if errors.Is(err, dataprocessing.ErrMissingSource) {
			return nil, apierrors.MissingSourceError(err)
		}
		return nil, apierrors.ReloadFailedError(err)
	}

	snapshot, err := s.aggregator.Build(ctx, tables)
	if err != nil {
		snapshotBuilds.WithLabelValues("error").Inc()
		return nil, apierrors.ReloadFailedError(err)
	}

	previous := s.current.Swap(snapshot)
	snapshotBuilds.WithLabelValues("success").Inc()
	snapshotBuildSeconds.Observe(time.Since(start).Seconds())
	snapshotMalformedRows.Set(float64(snapshot.Diagnostics.MalformedRows))

	supersededID := ""
	if previous != nil {
		supersededID = previous.ID
	}
	s.logger.InfoContext(ctx, "snapshot published",
		slog.String("snapshot_id", snapshot.ID),
		slog.String("superseded", supersededID),
		slog.Duration("elapsed", time.Since(start)),
	)

	if s.notifier != nil {
		s.notifier.SnapshotPublished(snapshot)
	}
	return snapshot, nil
}

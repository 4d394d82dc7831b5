package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"msydash/pkg/contracts/domain"
)

// Config tunes the aggregation run.
type Config struct {
	// TopN limits the cost-driver ranking. Zero means all.
	TopN int
	// CriticalIngredients is the watch list for critical alerts.
	CriticalIngredients []string
	// Categories overrides the sales-trend grouping.
	Categories []TrendCategory
}

// Aggregator builds a MetricsSnapshot from one set of normalized tables. It
// carries no state between builds; every Build produces a fresh, fully
// populated snapshot.
type Aggregator struct {
	forecaster Forecaster
	cfg        Config
	logger     *slog.Logger
}

// NewAggregator creates an aggregator with the given forecast strategy.
func NewAggregator(forecaster Forecaster, cfg Config, logger *slog.Logger) *Aggregator {
	if forecaster == nil {
		forecaster = LinearTrend{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TopN == 0 {
		cfg.TopN = 5
	}
	if len(cfg.CriticalIngredients) == 0 {
		cfg.CriticalIngredients = []string{"egg"}
	}
	return &Aggregator{
		forecaster: forecaster,
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "aggregator")),
	}
}

// Build computes every metric and assembles the snapshot. Inputs are read
// only; the returned snapshot is owned by the caller and never mutated here
// again.
func (a *Aggregator) Build(ctx context.Context, tables *domain.NormalizedTables) (*domain.MetricsSnapshot, error) {
	start := time.Now()

	usage, unknown := UsageTotals(tables.Sales, tables.MenuMap, tables.Ingredients)
	costs := BuildCostBreakdown(usage, tables.Ingredients, tables.Purchases)
	alerts := BuildAlerts(tables.Shipments, a.cfg.CriticalIngredients)

	diag := tables.Diagnostics
	diag.UnknownIngredients = append(diag.UnknownIngredients, unknown...)

	snapshot := &domain.MetricsSnapshot{
		ID:          uuid.New().String(),
		BuiltAt:     time.Now().UTC(),
		Months:      tables.Months,
		KPIs:        BuildKPIs(tables.MenuMap, tables.Ingredients, tables.Shipments, alerts),
		Usage:       usage,
		Costs:       costs,
		TopDrivers:  TopDrivers(costs, a.cfg.TopN),
		Frequency:   ShipmentFrequency(tables.Shipments),
		Schedule:    BuildSchedule(tables.Shipments),
		Forecast:    ForecastUsage(usage, tables.Months, a.forecaster),
		Overlap:     BuildOverlap(tables.MenuMap),
		SalesTrends: SalesTrends(tables.Sales, tables.Months, a.cfg.Categories),
		Alerts:      alerts,
		Diagnostics: diag,
	}

	a.logger.InfoContext(ctx, "snapshot built",
		slog.String("snapshot_id", snapshot.ID),
		slog.Int("ingredients", len(usage)),
		slog.Int("menu_items", len(snapshot.Overlap.Items)),
		slog.Int("unknown_ingredients", len(unknown)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return snapshot, nil
}

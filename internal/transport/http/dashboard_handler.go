package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "msydash/internal/errors"
	"msydash/internal/services"
	"msydash/pkg/contracts/domain"
)

// SnapshotProvider is the slice of the dashboard service the handler needs.
type SnapshotProvider interface {
	Current() (*domain.MetricsSnapshot, error)
	Reload(ctx context.Context) (*domain.MetricsSnapshot, error)
}

// Recommender produces the suggestion list for a snapshot.
type Recommender interface {
	Recommendations(ctx context.Context, snap *domain.MetricsSnapshot) []domain.Recommendation
}

// DashboardHandler serves every metric group as a pure projection of the
// current snapshot. No endpoint mutates server state except the explicit
// reload, which replaces the whole snapshot.
type DashboardHandler struct {
	service      SnapshotProvider
	insights     Recommender
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates the handler.
func NewDashboardHandler(service SnapshotProvider, insights Recommender, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		insights:     insights,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/metrics", h.GetKPIs)
	r.Get("/ingredients", h.GetIngredients)
	r.Get("/ingredient-usage", h.GetUsage)
	r.Get("/cost-analysis", h.GetCostAnalysis)
	r.Get("/shipment-schedule", h.GetShipmentSchedule)
	r.Get("/shipment-frequency", h.GetShipmentFrequency)
	r.Get("/forecast", h.GetForecast)
	r.Get("/overlap-matrix", h.GetOverlapMatrix)
	r.Get("/sales-trends", h.GetSalesTrends)
	r.Get("/alerts", h.GetAlerts)
	r.Get("/recommendations", h.GetRecommendations)
	r.Get("/diagnostics", h.GetDiagnostics)
	r.Post("/reload", h.Reload)

	return r
}

// snapshot loads the current snapshot or writes the 503 problem document.
func (h *DashboardHandler) snapshot(w http.ResponseWriter, r *http.Request) (*domain.MetricsSnapshot, bool) {
	snap, err := h.service.Current()
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrSnapshotUnavailable)
		return nil, false
	}
	return snap, true
}

// GetKPIs handles GET /api/metrics.
func (h *DashboardHandler) GetKPIs(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, snap.KPIs)
}

// IngredientDetail merges usage, cost and forecast for one ingredient.
type IngredientDetail struct {
	Ingredient string             `json:"ingredient"`
	Usage      float64            `json:"usage"`
	ByMonth    map[string]float64 `json:"by_month,omitempty"`
	Cost       string             `json:"cost"`
	Share      float64            `json:"share_percent"`
	Actual     bool               `json:"actual_cost"`
	Projected  *float64           `json:"projected"`
}

// GetIngredients handles GET /api/ingredients: the per-ingredient detail
// table. Usage, costs and forecast are aligned by construction — all three
// are sorted by ingredient name and cover the full ingredient table.
func (h *DashboardHandler) GetIngredients(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	details := make([]IngredientDetail, 0, len(snap.Usage))
	for i, u := range snap.Usage {
		d := IngredientDetail{
			Ingredient: u.Ingredient,
			Usage:      u.Total,
			ByMonth:    u.ByMonth,
		}
		if i < len(snap.Costs.Entries) {
			d.Cost = snap.Costs.Entries[i].Total.StringFixed(2)
			d.Share = snap.Costs.Entries[i].Share
			d.Actual = snap.Costs.Entries[i].Actual
		}
		if i < len(snap.Forecast) {
			d.Projected = snap.Forecast[i].Projected
		}
		details = append(details, d)
	}
	render.JSON(w, r, details)
}

// GetUsage handles GET /api/ingredient-usage.
func (h *DashboardHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, snap.Usage)
}

// GetCostAnalysis handles GET /api/cost-analysis: the top cost drivers plus
// the full breakdown.
func (h *DashboardHandler) GetCostAnalysis(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"top_drivers": snap.TopDrivers,
		"entries":     snap.Costs.Entries,
		"grand_total": snap.Costs.Grand.StringFixed(2),
	})
}

// GetShipmentSchedule handles GET /api/shipment-schedule.
func (h *DashboardHandler) GetShipmentSchedule(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, snap.Schedule)
}

// GetShipmentFrequency handles GET /api/shipment-frequency: shipments per
// supplier per calendar week.
func (h *DashboardHandler) GetShipmentFrequency(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, snap.Frequency)
}

// GetForecast handles GET /api/forecast.
func (h *DashboardHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"months":  snap.Months,
		"entries": snap.Forecast,
	})
}

// GetOverlapMatrix handles GET /api/overlap-matrix.
func (h *DashboardHandler) GetOverlapMatrix(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, snap.Overlap)
}

// GetSalesTrends handles GET /api/sales-trends.
func (h *DashboardHandler) GetSalesTrends(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, snap.SalesTrends)
}

// GetAlerts handles GET /api/alerts.
func (h *DashboardHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, snap.Alerts)
}

// GetRecommendations handles GET /api/recommendations.
func (h *DashboardHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, h.insights.Recommendations(r.Context(), snap))
}

// GetDiagnostics handles GET /api/diagnostics.
func (h *DashboardHandler) GetDiagnostics(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, snap.Diagnostics)
}

// ReloadResponse reports the outcome of an explicit reload.
type ReloadResponse struct {
	SnapshotID string `json:"snapshot_id"`
	BuiltAt    string `json:"built_at"`
	Months     int    `json:"months"`
}

// Reload handles POST /api/reload: a whole-snapshot replacement, never an
// incremental patch. On failure the previous snapshot keeps serving and the
// error surfaces as a problem document.
func (h *DashboardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "explicit reload requested")

	snap, err := h.service.Reload(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, ReloadResponse{
		SnapshotID: snap.ID,
		BuiltAt:    snap.BuiltAt.Format("2006-01-02T15:04:05Z07:00"),
		Months:     len(snap.Months),
	})
}

// interface guards
var (
	_ SnapshotProvider = (*services.DashboardService)(nil)
	_ Recommender      = (*services.InsightsService)(nil)
)

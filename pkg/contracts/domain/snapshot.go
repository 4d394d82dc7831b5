package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MetricsSnapshot is the aggregator's sole output: an immutable bundle of
// every computed metric from one load cycle. The service layer publishes it
// by atomic pointer swap; nothing mutates a snapshot after Build returns it.
type MetricsSnapshot struct {
	ID      string    `json:"id"`
	BuiltAt time.Time `json:"built_at"`
	Months  []string  `json:"months"`

	KPIs        KPIBlock            `json:"kpis"`
	Usage       []UsageTotal        `json:"usage"`
	Costs       CostBreakdown       `json:"costs"`
	TopDrivers  []CostEntry         `json:"top_drivers"`
	Frequency   []SupplierWeekCount `json:"shipment_frequency"`
	Schedule    []ScheduleEntry     `json:"shipment_schedule"`
	Forecast    []ForecastEntry     `json:"forecast"`
	Overlap     OverlapMatrix       `json:"overlap"`
	SalesTrends TrendReport         `json:"sales_trends"`
	Alerts      []Alert             `json:"alerts"`
	Diagnostics LoadDiagnostics     `json:"diagnostics"`
}

// KPIBlock holds the headline numbers shown at the top of the dashboard.
type KPIBlock struct {
	TotalMenuItems   int `json:"total_menu_items"`
	TotalIngredients int `json:"total_ingredients"`
	WeeklyShipments  int `json:"weekly_shipments"`
	AlertCount       int `json:"alert_count"`
}

// UsageTotal is the summed quantity consumed for one ingredient across all
// sales records. Ingredients with no mapped sales report zero, not absent.
type UsageTotal struct {
	Ingredient string             `json:"ingredient"`
	Total      float64            `json:"total"`
	ByMonth    map[string]float64 `json:"by_month,omitempty"`
}

// CostEntry is one ingredient's total cost and its share of overall spend.
// Actual is true when the figure comes from purchase-log lines rather than
// the usage * unit_cost estimate.
type CostEntry struct {
	Ingredient string          `json:"ingredient"`
	Total      decimal.Decimal `json:"total"`
	Share      float64         `json:"share_percent"`
	Actual     bool            `json:"actual"`
}

// CostBreakdown holds per-ingredient cost entries and the grand total.
// Shares sum to 100 within 1e-6 relative tolerance whenever Grand is nonzero.
type CostBreakdown struct {
	Entries []CostEntry     `json:"entries"`
	Grand   decimal.Decimal `json:"grand_total"`
}

// SupplierWeekCount is the number of shipments one supplier has scheduled in
// one calendar week (week start = Monday).
type SupplierWeekCount struct {
	Supplier  string    `json:"supplier"`
	WeekStart time.Time `json:"week_start"`
	Count     int       `json:"count"`
}

// ScheduleEntry is the per-supplier delivery view served to the dashboard.
// WeeklyQuantity is the shipped volume normalized to a per-week figure
// regardless of the declared cadence.
type ScheduleEntry struct {
	Supplier       string            `json:"supplier"`
	Ingredient     string            `json:"ingredient"`
	Frequency      ShipmentFrequency `json:"frequency"`
	Shipments      int               `json:"shipments"`
	WeeklyQuantity float64           `json:"weekly_quantity"`
	NextDate       time.Time         `json:"next_date"`
}

// ForecastEntry is one ingredient's projected next-period usage. Projected is
// nil when fewer than two months of data exist for the ingredient.
type ForecastEntry struct {
	Ingredient string   `json:"ingredient"`
	Projected  *float64 `json:"projected"`
	Method     string   `json:"method"`
}

// OverlapMatrix counts shared ingredients between menu item pairs. Counts is
// symmetric and its diagonal equals each item's own ingredient count. Items
// fixes the row/column order.
type OverlapMatrix struct {
	Items  []string `json:"items"`
	Counts [][]int  `json:"counts"`
}

// At returns the overlap count for a pair of item indices.
func (m OverlapMatrix) At(i, j int) int {
	return m.Counts[i][j]
}

// TrendSeries is one category's per-month sales counts, aligned with
// TrendReport.Months.
type TrendSeries struct {
	Category string    `json:"category"`
	Counts   []float64 `json:"counts"`
}

// TrendReport groups sales volumes by dish category over the loaded months.
type TrendReport struct {
	Months []string      `json:"months"`
	Series []TrendSeries `json:"series"`
}

// AlertLevel classifies dashboard alerts.
type AlertLevel string

const (
	AlertWarning  AlertLevel = "warning"
	AlertCritical AlertLevel = "critical"
)

// Alert is a supply-chain condition worth surfacing on the dashboard.
type Alert struct {
	Level   AlertLevel `json:"level"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
}

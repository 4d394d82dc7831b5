package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesRecord is one menu item's sales for one month. Monthly source files are
// concatenated in month order (May through October); the month is attached by
// the loader from the source filename, never read from a column.
type SalesRecord struct {
	Month        string  `json:"month" validate:"required"`
	MenuItemName string  `json:"menu_item_name" validate:"required"`
	QuantitySold float64 `json:"quantity_sold" validate:"min=0"`
	Revenue      float64 `json:"revenue"`
}

// Ingredient is one row of the ingredient reference table. Name is the join
// key against sales mappings, shipments and the purchase log.
type Ingredient struct {
	Name     string          `json:"name" validate:"required"`
	Category string          `json:"category,omitempty"`
	UnitCost decimal.Decimal `json:"unit_cost"`
	Unit     string          `json:"unit,omitempty"`
}

// ShipmentFrequency is the delivery cadence declared in the shipment table.
type ShipmentFrequency string

const (
	FrequencyWeekly   ShipmentFrequency = "weekly"
	FrequencyBiweekly ShipmentFrequency = "biweekly"
	FrequencyMonthly  ShipmentFrequency = "monthly"
	FrequencyUnknown  ShipmentFrequency = "unknown"
)

// Shipment is one row of the shipment reference table. Multiple shipments may
// reference the same ingredient/supplier pair.
type Shipment struct {
	Supplier       string            `json:"supplier"`
	IngredientName string            `json:"ingredient_name" validate:"required"`
	Frequency      ShipmentFrequency `json:"frequency"`
	Shipments      int               `json:"shipments"`
	QuantityPer    float64           `json:"quantity_per_shipment"`
	Unit           string            `json:"unit,omitempty"`
	ScheduledDate  time.Time         `json:"scheduled_date"`
}

// WeeklyQuantity normalizes the shipped quantity to a per-week figure based
// on the declared cadence. Unknown cadences are treated as weekly.
func (s Shipment) WeeklyQuantity() float64 {
	qty := s.QuantityPer * float64(s.Shipments)
	switch s.Frequency {
	case FrequencyBiweekly:
		return qty / 2
	case FrequencyMonthly:
		return qty / 4
	default:
		return qty
	}
}

// PurchaseLogEntry is one row of the optional purchase log. Price is the unit
// price paid; the line total is Quantity * Price.
type PurchaseLogEntry struct {
	Date           time.Time       `json:"date"`
	IngredientName string          `json:"ingredient_name" validate:"required"`
	Quantity       float64         `json:"quantity" validate:"min=0"`
	Price          decimal.Decimal `json:"price"`
}

// LineTotal returns the spend recorded by this entry.
func (p PurchaseLogEntry) LineTotal() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromFloat(p.Quantity))
}

// MenuIngredientMap maps a menu item to the set of ingredient names it
// consumes. It is derived from the menu matrix CSV or supplied explicitly in
// recipes.yaml; it never arrives as part of the sales data itself.
type MenuIngredientMap map[string][]string

// Items returns the mapped menu item names in no particular order.
func (m MenuIngredientMap) Items() []string {
	items := make([]string, 0, len(m))
	for item := range m {
		items = append(items, item)
	}
	return items
}

// NormalizedTables bundles everything the loader/normalizer produces for one
// load cycle. The aggregator consumes it read-only.
type NormalizedTables struct {
	Months      []string
	Sales       []SalesRecord
	Ingredients []Ingredient
	Shipments   []Shipment
	Purchases   []PurchaseLogEntry
	MenuMap     MenuIngredientMap
	Diagnostics LoadDiagnostics
}

// LoadDiagnostics counts recoverable problems encountered during one load
// cycle. Surfaced verbatim on the snapshot so the dashboard can show data
// quality alongside the metrics.
type LoadDiagnostics struct {
	MalformedRows      int      `json:"malformed_rows"`
	UnknownIngredients []string `json:"unknown_ingredients,omitempty"`
	MissingOptional    []string `json:"missing_optional_files,omitempty"`
}

package dataprocessing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FieldSpec declares one canonical field and the header spellings that map to
// it across the heterogeneous source exports. Matching is case, whitespace
// and punctuation tolerant; unit suffixes like "(g)" or "(pcs)" are stripped
// before comparison.
type FieldSpec struct {
	Canonical string
	Aliases   []string
	Required  bool
}

// TableSchema is the canonical schema for one source table. Column resolution
// happens once per table, before row iteration; aggregation code never does
// its own header lookups.
type TableSchema struct {
	Name   string
	Fields []FieldSpec
}

// Canonical field names shared by the loaders.
const (
	FieldMenuItem    = "menu_item_name"
	FieldQuantity    = "quantity"
	FieldRevenue     = "revenue"
	FieldIngredient  = "ingredient_name"
	FieldCategory    = "category"
	FieldUnitCost    = "unit_cost"
	FieldUnit        = "unit"
	FieldSupplier    = "supplier"
	FieldFrequency   = "frequency"
	FieldShipments   = "shipments"
	FieldQuantityPer = "quantity_per_shipment"
	FieldDate        = "date"
	FieldPrice       = "price"
)

// SalesSchema matches the monthly sales workbooks. Only the item name is
// required; missing quantity defaults to one unit per row and missing revenue
// to zero, so a bare item export still loads.
var SalesSchema = TableSchema{
	Name: "sales",
	Fields: []FieldSpec{
		{Canonical: FieldMenuItem, Aliases: []string{"item name", "menu item", "item", "dish", "name", "group"}, Required: true},
		{Canonical: FieldQuantity, Aliases: []string{"quantity sold", "quantity", "qty", "count", "number sold", "units"}},
		{Canonical: FieldRevenue, Aliases: []string{"revenue", "total", "sales", "amount", "price total"}},
	},
}

// IngredientSchema matches the ingredient reference CSV.
var IngredientSchema = TableSchema{
	Name: "ingredients",
	Fields: []FieldSpec{
		{Canonical: FieldIngredient, Aliases: []string{"ingredient name", "ingredient", "name", "item"}, Required: true},
		{Canonical: FieldCategory, Aliases: []string{"category", "type", "group"}},
		{Canonical: FieldUnitCost, Aliases: []string{"unit cost", "cost", "unit price", "price per unit", "price"}},
		{Canonical: FieldUnit, Aliases: []string{"unit", "uom", "unit of measure"}},
	},
}

// ShipmentSchema matches the shipment reference CSV.
var ShipmentSchema = TableSchema{
	Name: "shipments",
	Fields: []FieldSpec{
		{Canonical: FieldIngredient, Aliases: []string{"ingredient", "ingredient name", "item"}, Required: true},
		{Canonical: FieldSupplier, Aliases: []string{"supplier", "vendor", "source"}},
		{Canonical: FieldFrequency, Aliases: []string{"frequency", "cadence", "schedule"}},
		{Canonical: FieldShipments, Aliases: []string{"number of shipments", "num shipments", "shipments", "shipment count"}},
		{Canonical: FieldQuantityPer, Aliases: []string{"quantity per shipment", "qty per shipment", "quantity", "qty"}},
		{Canonical: FieldUnit, Aliases: []string{"unit of shipment", "unit", "uom"}},
		{Canonical: FieldDate, Aliases: []string{"scheduled date", "next delivery", "delivery date", "date"}},
	},
}

// PurchaseSchema matches the optional purchase log CSV.
var PurchaseSchema = TableSchema{
	Name: "purchases",
	Fields: []FieldSpec{
		{Canonical: FieldDate, Aliases: []string{"date", "purchase date", "purchased"}, Required: true},
		{Canonical: FieldIngredient, Aliases: []string{"ingredient", "ingredient name", "item"}, Required: true},
		{Canonical: FieldQuantity, Aliases: []string{"quantity", "qty", "amount"}},
		{Canonical: FieldPrice, Aliases: []string{"price", "unit price", "cost"}},
	},
}

var unitSuffixRe = regexp.MustCompile(`\((?:g|kg|ml|l|lbs?|oz|pcs?|count|x)\)`)

// normalizeHeader reduces a raw header cell to a comparable form:
// lowercase, unit suffixes removed, punctuation folded to single spaces.
func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = unitSuffixRe.ReplaceAllString(s, "")
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// ColumnMap is a resolved header: canonical field name to column index.
type ColumnMap map[string]int

// Has reports whether the source table carried the given canonical field.
func (c ColumnMap) Has(field string) bool {
	_, ok := c[field]
	return ok
}

// Resolve matches a header row against the schema and returns the fixed
// column mapping used for every subsequent row. A required field with no
// matching column is an error; optional fields are simply absent from the
// map and default at coercion time.
func (s TableSchema) Resolve(header []string) (ColumnMap, error) {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = normalizeHeader(h)
	}

	cols := make(ColumnMap, len(s.Fields))
	for _, field := range s.Fields {
		for _, alias := range field.Aliases {
			want := normalizeHeader(alias)
			for i, got := range normalized {
				if got == want {
					if _, taken := cols[field.Canonical]; !taken {
						cols[field.Canonical] = i
					}
				}
			}
			if cols.Has(field.Canonical) {
				break
			}
		}
		if field.Required && !cols.Has(field.Canonical) {
			return nil, fmt.Errorf("table %s: no column matches required field %q", s.Name, field.Canonical)
		}
	}
	return cols, nil
}

// cell returns the trimmed value of a canonical field in a row, or "" when
// the column is absent or the row is short.
func (c ColumnMap) cell(row []string, field string) string {
	idx, ok := c[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

var numericCleaner = strings.NewReplacer(",", "", "$", "", "%", "", " ", "")

// parseFloat coerces a cell to a float. Empty cells yield the fallback; a
// non-empty cell that fails coercion is a malformed-row signal for the
// caller.
func parseFloat(raw string, fallback float64) (float64, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(numericCleaner.Replace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("coerce %q to number: %w", raw, err)
	}
	return v, nil
}

// parseInt coerces a cell to an integer with the same empty/fallback rules.
func parseInt(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	f, err := parseFloat(raw, 0)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// parseDecimal coerces a monetary cell. Money stays decimal end to end; it is
// only flattened to float at the percentage-share edge.
func parseDecimal(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(numericCleaner.Replace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("coerce %q to decimal: %w", raw, err)
	}
	return d, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	time.RFC3339,
}

// parseDate tries the date layouts seen across the source exports.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("coerce %q to date: unrecognized layout", raw)
}

// parseFrequency folds a free-form cadence cell onto the known values.
func parseFrequency(raw string) (freq string) {
	switch lower := strings.ToLower(strings.TrimSpace(raw)); {
	case strings.Contains(lower, "biweekly") || strings.Contains(lower, "bi-weekly"):
		return "biweekly"
	case strings.Contains(lower, "weekly"):
		return "weekly"
	case strings.Contains(lower, "monthly"):
		return "monthly"
	default:
		return "unknown"
	}
}

package metrics

import (
	"fmt"
	"strings"

	"msydash/pkg/contracts/domain"
)

// TrendCategory groups menu items by name keywords for the sales trend chart.
type TrendCategory struct {
	Name     string
	Keywords []string
}

// DefaultCategories mirrors the dish groups the dashboard charts.
var DefaultCategories = []TrendCategory{
	{Name: "Ramen Dishes", Keywords: []string{"Ramen"}},
	{Name: "Fried Rice", Keywords: []string{"Fried Rice"}},
	{Name: "Wings & Cutlets", Keywords: []string{"Wing", "Cutlet"}},
	{Name: "Rice Noodles", Keywords: []string{"Rice Noodle"}},
}

// SalesTrends sums sold quantities per category per month. A menu item
// belongs to a category when its name contains any of the category's
// keywords, case-insensitively.
func SalesTrends(sales []domain.SalesRecord, months []string, categories []TrendCategory) domain.TrendReport {
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	monthIdx := make(map[string]int, len(months))
	for i, m := range months {
		monthIdx[m] = i
	}

	report := domain.TrendReport{Months: months}
	for _, cat := range categories {
		counts := make([]float64, len(months))
		for _, rec := range sales {
			idx, ok := monthIdx[rec.Month]
			if !ok {
				continue
			}
			name := strings.ToLower(rec.MenuItemName)
			for _, kw := range cat.Keywords {
				if strings.Contains(name, strings.ToLower(kw)) {
					counts[idx] += rec.QuantitySold
					break
				}
			}
		}
		report.Series = append(report.Series, domain.TrendSeries{Category: cat.Name, Counts: counts})
	}
	return report
}

// highFrequencyThreshold is the per-window shipment count that flags a
// supplier relationship for review.
const highFrequencyThreshold = 5

// BuildAlerts derives supply-chain alerts from the shipment table: a warning
// for every high-frequency line and a critical entry for ingredients on the
// watch list (volume-sensitive items the kitchen cannot run out of).
func BuildAlerts(shipments []domain.Shipment, critical []string) []domain.Alert {
	var alerts []domain.Alert
	for _, s := range shipments {
		if s.Shipments >= highFrequencyThreshold {
			alerts = append(alerts, domain.Alert{
				Level:   domain.AlertWarning,
				Title:   fmt.Sprintf("%s - High Frequency", s.IngredientName),
				Message: fmt.Sprintf("%d shipments %s", s.Shipments, s.Frequency),
			})
		}
		lower := strings.ToLower(s.IngredientName)
		for _, c := range critical {
			if strings.Contains(lower, strings.ToLower(c)) {
				total := int(s.QuantityPer * float64(s.Shipments))
				alerts = append(alerts, domain.Alert{
					Level:   domain.AlertCritical,
					Title:   fmt.Sprintf("%s - Critical Item", s.IngredientName),
					Message: fmt.Sprintf("Requires %d %s per %s", total, s.Unit, s.Frequency),
				})
				break
			}
		}
	}
	return alerts
}

// BuildKPIs assembles the headline block.
func BuildKPIs(menuMap domain.MenuIngredientMap, ingredients []domain.Ingredient, shipments []domain.Shipment, alerts []domain.Alert) domain.KPIBlock {
	weekly := 0
	for _, s := range shipments {
		if s.Frequency == domain.FrequencyWeekly {
			weekly += s.Shipments
		}
	}
	return domain.KPIBlock{
		TotalMenuItems:   len(menuMap),
		TotalIngredients: len(ingredients),
		WeeklyShipments:  weekly,
		AlertCount:       len(alerts),
	}
}

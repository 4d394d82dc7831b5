package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msydash/pkg/contracts/domain"
)

func TestSalesTrendsGroupsByKeyword(t *testing.T) {
	sales := []domain.SalesRecord{
		{Month: "May", MenuItemName: "Beef Ramen", QuantitySold: 80},
		{Month: "May", MenuItemName: "spicy ramen", QuantitySold: 20},
		{Month: "June", MenuItemName: "Beef Ramen", QuantitySold: 60},
		{Month: "May", MenuItemName: "Chicken Fried Rice", QuantitySold: 50},
		{Month: "May", MenuItemName: "Pad Thai", QuantitySold: 100}, // matches no category
	}
	months := []string{"May", "June"}

	report := SalesTrends(sales, months, nil)
	require.Equal(t, months, report.Months)
	require.Len(t, report.Series, len(DefaultCategories))

	byName := make(map[string]domain.TrendSeries)
	for _, s := range report.Series {
		byName[s.Category] = s
	}

	ramen := byName["Ramen Dishes"]
	assert.Equal(t, []float64{100, 60}, ramen.Counts)

	fried := byName["Fried Rice"]
	assert.Equal(t, []float64{50, 0}, fried.Counts)

	wings := byName["Wings & Cutlets"]
	assert.Equal(t, []float64{0, 0}, wings.Counts)
}

func TestBuildAlerts(t *testing.T) {
	shipments := []domain.Shipment{
		{IngredientName: "beef", Frequency: domain.FrequencyWeekly, Shipments: 5, QuantityPer: 40, Unit: "lbs"},
		{IngredientName: "Egg", Frequency: domain.FrequencyWeekly, Shipments: 6, QuantityPer: 200, Unit: "count"},
		{IngredientName: "rice noodles", Frequency: domain.FrequencyMonthly, Shipments: 1, QuantityPer: 120, Unit: "lbs"},
	}

	alerts := BuildAlerts(shipments, []string{"egg"})
	require.Len(t, alerts, 3)

	assert.Equal(t, domain.AlertWarning, alerts[0].Level)
	assert.Equal(t, "beef - High Frequency", alerts[0].Title)

	// High-frequency egg line raises both a warning and a critical entry;
	// the watch-list match is case-insensitive.
	assert.Equal(t, domain.AlertWarning, alerts[1].Level)
	assert.Equal(t, domain.AlertCritical, alerts[2].Level)
	assert.Equal(t, "Egg - Critical Item", alerts[2].Title)
	assert.Equal(t, "Requires 1200 count per weekly", alerts[2].Message)
}

func TestBuildAlertsNoneBelowThreshold(t *testing.T) {
	shipments := []domain.Shipment{
		{IngredientName: "beef", Frequency: domain.FrequencyWeekly, Shipments: 4},
	}
	assert.Empty(t, BuildAlerts(shipments, []string{"egg"}))
}

func TestBuildKPIs(t *testing.T) {
	menuMap := domain.MenuIngredientMap{"Pad Thai": nil, "Beef Ramen": nil}
	ingredients := []domain.Ingredient{{Name: "beef"}, {Name: "egg"}, {Name: "rice noodles"}}
	shipments := []domain.Shipment{
		{Frequency: domain.FrequencyWeekly, Shipments: 5},
		{Frequency: domain.FrequencyWeekly, Shipments: 6},
		{Frequency: domain.FrequencyMonthly, Shipments: 2},
	}
	alerts := []domain.Alert{{Level: domain.AlertWarning}}

	kpis := BuildKPIs(menuMap, ingredients, shipments, alerts)
	assert.Equal(t, 2, kpis.TotalMenuItems)
	assert.Equal(t, 3, kpis.TotalIngredients)
	assert.Equal(t, 11, kpis.WeeklyShipments)
	assert.Equal(t, 1, kpis.AlertCount)
}

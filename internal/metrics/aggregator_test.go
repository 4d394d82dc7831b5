package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msydash/pkg/contracts/domain"
)

func fixtureTables() *domain.NormalizedTables {
	return &domain.NormalizedTables{
		Months: []string{"May", "June"},
		Sales: []domain.SalesRecord{
			{Month: "May", MenuItemName: "Pad Thai", QuantitySold: 100, Revenue: 1200},
			{Month: "June", MenuItemName: "Pad Thai", QuantitySold: 150, Revenue: 1800},
			{Month: "May", MenuItemName: "Beef Ramen", QuantitySold: 80, Revenue: 1040},
		},
		Ingredients: []domain.Ingredient{
			{Name: "rice noodles", Category: "carbs", UnitCost: dec("2.50"), Unit: "lbs"},
			{Name: "beef", Category: "protein", UnitCost: dec("8.00"), Unit: "lbs"},
			{Name: "egg", Category: "protein", UnitCost: dec("0.30"), Unit: "count"},
		},
		Shipments: []domain.Shipment{
			{Supplier: "Acme Foods", IngredientName: "beef", Frequency: domain.FrequencyWeekly, Shipments: 5, QuantityPer: 40, Unit: "lbs", ScheduledDate: day(2025, 6, 2)},
			{Supplier: "Acme Foods", IngredientName: "egg", Frequency: domain.FrequencyWeekly, Shipments: 6, QuantityPer: 200, Unit: "count", ScheduledDate: day(2025, 6, 3)},
		},
		MenuMap: domain.MenuIngredientMap{
			"Pad Thai":   {"rice noodles", "egg", "tamarind"},
			"Beef Ramen": {"beef", "egg"},
		},
	}
}

func TestAggregatorBuildAssemblesSnapshot(t *testing.T) {
	agg := NewAggregator(nil, Config{}, nil)
	snap, err := agg.Build(context.Background(), fixtureTables())
	require.NoError(t, err)

	assert.NotEmpty(t, snap.ID)
	assert.False(t, snap.BuiltAt.IsZero())
	assert.Equal(t, []string{"May", "June"}, snap.Months)

	assert.Equal(t, 2, snap.KPIs.TotalMenuItems)
	assert.Equal(t, 3, snap.KPIs.TotalIngredients)
	assert.Equal(t, 11, snap.KPIs.WeeklyShipments)
	assert.Equal(t, len(snap.Alerts), snap.KPIs.AlertCount)

	// egg is used by both dishes: 250 + 80.
	require.Len(t, snap.Usage, 3)
	assert.Equal(t, "egg", snap.Usage[1].Ingredient)
	assert.Equal(t, 330.0, snap.Usage[1].Total)

	assert.Len(t, snap.TopDrivers, 3)
	assert.Len(t, snap.Forecast, 3)
	assert.Equal(t, []string{"Beef Ramen", "Pad Thai"}, snap.Overlap.Items)

	// The unmapped "tamarind" reference surfaces as a diagnostic, not a metric.
	assert.Equal(t, []string{"tamarind"}, snap.Diagnostics.UnknownIngredients)
}

func TestAggregatorBuildIsDeterministic(t *testing.T) {
	agg := NewAggregator(nil, Config{}, nil)

	a, err := agg.Build(context.Background(), fixtureTables())
	require.NoError(t, err)
	b, err := agg.Build(context.Background(), fixtureTables())
	require.NoError(t, err)

	// Identity fields differ per build; every metric must not.
	b.ID, b.BuiltAt = a.ID, a.BuiltAt
	assert.Equal(t, a, b)
}

func TestAggregatorDefaults(t *testing.T) {
	agg := NewAggregator(nil, Config{}, nil)
	assert.Equal(t, 5, agg.cfg.TopN)
	assert.Equal(t, []string{"egg"}, agg.cfg.CriticalIngredients)
	assert.Equal(t, "linear_trend", agg.forecaster.Name())
}

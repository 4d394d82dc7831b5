package metrics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msydash/pkg/contracts/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBuildCostBreakdownEstimates(t *testing.T) {
	usage := []domain.UsageTotal{
		{Ingredient: "beef", Total: 10},
		{Ingredient: "egg", Total: 100},
	}
	ingredients := []domain.Ingredient{
		{Name: "beef", UnitCost: dec("8.00")},
		{Name: "egg", UnitCost: dec("0.30")},
	}

	breakdown := BuildCostBreakdown(usage, ingredients, nil)
	require.Len(t, breakdown.Entries, 2)

	assert.Equal(t, "beef", breakdown.Entries[0].Ingredient)
	assert.True(t, breakdown.Entries[0].Total.Equal(dec("80")))
	assert.False(t, breakdown.Entries[0].Actual)
	assert.True(t, breakdown.Grand.Equal(dec("110")))

	sum := 0.0
	for _, e := range breakdown.Entries {
		sum += e.Share
	}
	assert.InDelta(t, 100.0, sum, 1e-6)
}

func TestBuildCostBreakdownPurchaseActualsWin(t *testing.T) {
	usage := []domain.UsageTotal{
		{Ingredient: "beef", Total: 10},
		{Ingredient: "egg", Total: 100},
	}
	ingredients := []domain.Ingredient{
		{Name: "beef", UnitCost: dec("8.00")},
		{Name: "egg", UnitCost: dec("0.30")},
	}
	day := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	purchases := []domain.PurchaseLogEntry{
		{Date: day, IngredientName: "beef", Quantity: 40, Price: dec("7.80")},
		{Date: day, IngredientName: "beef", Quantity: 35, Price: dec("8.10")},
		// No ingredient row joins this line; it must not contribute.
		{Date: day, IngredientName: "truffle", Quantity: 1, Price: dec("90")},
	}

	breakdown := BuildCostBreakdown(usage, ingredients, purchases)
	require.Len(t, breakdown.Entries, 2)

	beef := breakdown.Entries[0]
	assert.Equal(t, "beef", beef.Ingredient)
	assert.True(t, beef.Actual)
	// 40*7.80 + 35*8.10, not the usage estimate.
	assert.True(t, beef.Total.Equal(dec("595.5")), "got %s", beef.Total)

	egg := breakdown.Entries[1]
	assert.False(t, egg.Actual)
	assert.True(t, egg.Total.Equal(dec("30")))
}

func TestBuildCostBreakdownZeroGrandLeavesSharesZero(t *testing.T) {
	usage := []domain.UsageTotal{{Ingredient: "beef", Total: 0}}
	ingredients := []domain.Ingredient{{Name: "beef", UnitCost: dec("8.00")}}

	breakdown := BuildCostBreakdown(usage, ingredients, nil)
	require.Len(t, breakdown.Entries, 1)
	assert.Equal(t, 0.0, breakdown.Entries[0].Share)
}

func TestTopDriversRankingAndTies(t *testing.T) {
	breakdown := domain.CostBreakdown{Entries: []domain.CostEntry{
		{Ingredient: "beef", Total: dec("100")},
		{Ingredient: "shrimp", Total: dec("300")},
		{Ingredient: "chicken", Total: dec("100")},
		{Ingredient: "egg", Total: dec("30")},
	}}

	top := TopDrivers(breakdown, 3)
	require.Len(t, top, 3)
	assert.Equal(t, "shrimp", top[0].Ingredient)
	// Tie on 100 breaks by name ascending.
	assert.Equal(t, "beef", top[1].Ingredient)
	assert.Equal(t, "chicken", top[2].Ingredient)
}

func TestTopDriversZeroMeansAll(t *testing.T) {
	breakdown := domain.CostBreakdown{Entries: []domain.CostEntry{
		{Ingredient: "beef", Total: dec("1")},
		{Ingredient: "egg", Total: dec("2")},
	}}
	assert.Len(t, TopDrivers(breakdown, 0), 2)
}

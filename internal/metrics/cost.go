package metrics

import (
	"sort"

	"github.com/shopspring/decimal"

	"msydash/pkg/contracts/domain"
)

var hundred = decimal.NewFromInt(100)

// BuildCostBreakdown computes per-ingredient total cost and its percentage
// share of overall spend. Purchase-log actuals take precedence over the
// usage * unit_cost estimate, per ingredient: an ingredient with at least one
// log line uses the summed line totals, everything else falls back to the
// estimate. Shares sum to 100 within floating-point tolerance whenever the
// grand total is nonzero.
func BuildCostBreakdown(usage []domain.UsageTotal, ingredients []domain.Ingredient, purchases []domain.PurchaseLogEntry) domain.CostBreakdown {
	unitCost := make(map[string]decimal.Decimal, len(ingredients))
	for _, ing := range ingredients {
		unitCost[ing.Name] = ing.UnitCost
	}

	actuals := make(map[string]decimal.Decimal)
	for _, p := range purchases {
		if _, known := unitCost[p.IngredientName]; !known {
			// Unjoinable log line: excluded from the cost metric only.
			continue
		}
		actuals[p.IngredientName] = actuals[p.IngredientName].Add(p.LineTotal())
	}

	entries := make([]domain.CostEntry, 0, len(usage))
	grand := decimal.Zero
	for _, u := range usage {
		total, actual := actuals[u.Ingredient]
		if !actual {
			total = unitCost[u.Ingredient].Mul(decimal.NewFromFloat(u.Total))
		}
		entries = append(entries, domain.CostEntry{
			Ingredient: u.Ingredient,
			Total:      total,
			Actual:     actual,
		})
		grand = grand.Add(total)
	}

	if !grand.IsZero() {
		grandF, _ := grand.Float64()
		for i := range entries {
			totalF, _ := entries[i].Total.Float64()
			entries[i].Share = totalF / grandF * 100
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Ingredient < entries[j].Ingredient })
	return domain.CostBreakdown{Entries: entries, Grand: grand}
}

// TopDrivers returns the n most expensive ingredients, ranked by total cost
// descending with ties broken by ingredient name ascending for determinism.
func TopDrivers(breakdown domain.CostBreakdown, n int) []domain.CostEntry {
	ranked := make([]domain.CostEntry, len(breakdown.Entries))
	copy(ranked, breakdown.Entries)
	sort.Slice(ranked, func(i, j int) bool {
		cmp := ranked[i].Total.Cmp(ranked[j].Total)
		if cmp != 0 {
			return cmp > 0
		}
		return ranked[i].Ingredient < ranked[j].Ingredient
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

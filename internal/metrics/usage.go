package metrics

import (
	"sort"

	"msydash/pkg/contracts/domain"
)

// UsageTotals sums the quantity consumed per ingredient across all sales
// records via the menu mapping. Every ingredient in the reference table gets
// an entry; ones with no mapped sales report zero rather than being absent.
// Ingredients referenced by the mapping but missing from the reference table
// are excluded and returned so the caller can surface them as diagnostics.
func UsageTotals(sales []domain.SalesRecord, menuMap domain.MenuIngredientMap, ingredients []domain.Ingredient) ([]domain.UsageTotal, []string) {
	known := make(map[string]bool, len(ingredients))
	for _, ing := range ingredients {
		known[ing.Name] = true
	}

	totals := make(map[string]float64, len(ingredients))
	byMonth := make(map[string]map[string]float64, len(ingredients))
	unknownSet := make(map[string]bool)

	for _, rec := range sales {
		for _, ingredient := range menuMap[rec.MenuItemName] {
			if !known[ingredient] {
				unknownSet[ingredient] = true
				continue
			}
			totals[ingredient] += rec.QuantitySold
			if byMonth[ingredient] == nil {
				byMonth[ingredient] = make(map[string]float64)
			}
			byMonth[ingredient][rec.Month] += rec.QuantitySold
		}
	}

	out := make([]domain.UsageTotal, 0, len(ingredients))
	for _, ing := range ingredients {
		out = append(out, domain.UsageTotal{
			Ingredient: ing.Name,
			Total:      totals[ing.Name],
			ByMonth:    byMonth[ing.Name],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ingredient < out[j].Ingredient })

	unknown := make([]string, 0, len(unknownSet))
	for name := range unknownSet {
		unknown = append(unknown, name)
	}
	sort.Strings(unknown)
	return out, unknown
}

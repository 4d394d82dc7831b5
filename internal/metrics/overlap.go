package metrics

import (
	"sort"

	"msydash/pkg/contracts/domain"
)

// BuildOverlap computes the symmetric shared-ingredient matrix over menu
// items. Cell (i,j) counts ingredients common to items i and j; the diagonal
// is each item's own ingredient count. Items are ordered by name so repeated
// builds over the same mapping are identical.
func BuildOverlap(menuMap domain.MenuIngredientMap) domain.OverlapMatrix {
	items := menuMap.Items()
	sort.Strings(items)

	sets := make([]map[string]bool, len(items))
	for i, item := range items {
		set := make(map[string]bool, len(menuMap[item]))
		for _, ing := range menuMap[item] {
			set[ing] = true
		}
		sets[i] = set
	}

	counts := make([][]int, len(items))
	for i := range items {
		counts[i] = make([]int, len(items))
		counts[i][i] = len(sets[i])
		for j := 0; j < i; j++ {
			shared := 0
			for ing := range sets[j] {
				if sets[i][ing] {
					shared++
				}
			}
			counts[i][j] = shared
			counts[j][i] = shared
		}
	}
	return domain.OverlapMatrix{Items: items, Counts: counts}
}

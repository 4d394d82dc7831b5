package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msydash/pkg/contracts/domain"
)

func TestBuildOverlap(t *testing.T) {
	menuMap := domain.MenuIngredientMap{
		"Pad Thai":   {"rice noodles", "egg", "green onion"},
		"Beef Ramen": {"ramen noodles", "beef", "egg", "green onion"},
		"Fried Rice": {"rice", "egg"},
	}

	m := BuildOverlap(menuMap)
	require.Equal(t, []string{"Beef Ramen", "Fried Rice", "Pad Thai"}, m.Items)

	// Items index the matrix: 0=Beef Ramen, 1=Fried Rice, 2=Pad Thai.
	// Diagonal is each item's own ingredient count.
	assert.Equal(t, 4, m.At(0, 0))
	assert.Equal(t, 2, m.At(1, 1))
	assert.Equal(t, 3, m.At(2, 2))

	// Shared counts are symmetric.
	assert.Equal(t, 2, m.At(2, 0))
	assert.Equal(t, 2, m.At(0, 2))
	assert.Equal(t, 1, m.At(1, 0))
	assert.Equal(t, 1, m.At(2, 1))
}

func TestBuildOverlapEmpty(t *testing.T) {
	m := BuildOverlap(domain.MenuIngredientMap{})
	assert.Empty(t, m.Items)
	assert.Empty(t, m.Counts)
}

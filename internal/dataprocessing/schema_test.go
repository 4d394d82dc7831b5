package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveToleratesHeaderVariants(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		field  string
		want   int
	}{
		{
			name:   "exact canonical",
			header: []string{"ingredient_name", "category"},
			field:  FieldIngredient,
			want:   0,
		},
		{
			name:   "title case with spaces",
			header: []string{"Category", "Ingredient Name"},
			field:  FieldIngredient,
			want:   1,
		},
		{
			name:   "padded whitespace",
			header: []string{"  Ingredient   Name  ", "Unit Cost"},
			field:  FieldIngredient,
			want:   0,
		},
		{
			name:   "unit suffix stripped",
			header: []string{"Ingredient(g)", "cost"},
			field:  FieldIngredient,
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, err := IngredientSchema.Resolve(tt.header)
			require.NoError(t, err)
			got, ok := cols[tt.field]
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveMissingRequiredColumn(t *testing.T) {
	_, err := IngredientSchema.Resolve([]string{"category", "unit"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingredient_name")
}

func TestResolveOptionalColumnsAbsent(t *testing.T) {
	cols, err := SalesSchema.Resolve([]string{"Item Name"})
	require.NoError(t, err)
	assert.True(t, cols.Has(FieldMenuItem))
	assert.False(t, cols.Has(FieldQuantity))
	assert.False(t, cols.Has(FieldRevenue))
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		raw      string
		fallback float64
		want     float64
		wantErr  bool
	}{
		{raw: "", fallback: 1, want: 1},
		{raw: "42", want: 42},
		{raw: "1,250.5", want: 1250.5},
		{raw: "$12.50", want: 12.5},
		{raw: "abc", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseFloat(tt.raw, tt.fallback)
		if tt.wantErr {
			assert.Error(t, err, "raw=%q", tt.raw)
			continue
		}
		require.NoError(t, err, "raw=%q", tt.raw)
		assert.Equal(t, tt.want, got, "raw=%q", tt.raw)
	}
}

func TestParseDecimal(t *testing.T) {
	d, err := parseDecimal("$1,299.99")
	require.NoError(t, err)
	assert.Equal(t, "1299.99", d.String())

	_, err = parseDecimal("n/a")
	assert.Error(t, err)

	zero, err := parseDecimal("")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())
}

func TestParseFrequency(t *testing.T) {
	assert.Equal(t, "weekly", parseFrequency("Weekly"))
	assert.Equal(t, "biweekly", parseFrequency("bi-weekly"))
	assert.Equal(t, "biweekly", parseFrequency("BIWEEKLY"))
	assert.Equal(t, "monthly", parseFrequency(" monthly "))
	assert.Equal(t, "unknown", parseFrequency("whenever"))
}

func TestParseDateLayouts(t *testing.T) {
	for _, raw := range []string{"2025-06-02", "2025/06/02", "06/02/2025", "Jun 2, 2025"} {
		d, err := parseDate(raw)
		require.NoError(t, err, "raw=%q", raw)
		assert.Equal(t, 2025, d.Year(), "raw=%q", raw)
	}

	_, err := parseDate("next tuesday")
	assert.Error(t, err)
}

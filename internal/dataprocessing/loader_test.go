package dataprocessing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeSalesWorkbook builds a minimal monthly sales workbook.
func writeSalesWorkbook(t *testing.T, dir, month string, rows [][]interface{}) {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, val := range row {
			col, err := excelize.ColumnNumberToName(j + 1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, col+itoa(i+1), val))
		}
	}
	require.NoError(t, f.SaveAs(filepath.Join(dir, month+".xlsx")))
}

func itoa(i int) string {
	return string(rune('0' + i))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// fixtureDir lays down a complete, well-formed data directory.
func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeSalesWorkbook(t, dir, "May", [][]interface{}{
		{"Item Name", "Quantity Sold", "Revenue"},
		{"Pad Thai", 100, 1200},
		{"Beef Ramen", 80, 1040},
		{"Pad Thai", 20, 240}, // second row for the same item folds in
	})
	writeSalesWorkbook(t, dir, "June", [][]interface{}{
		{"Item Name", "Quantity Sold", "Revenue"},
		{"Pad Thai", 150, 1800},
	})

	writeFile(t, dir, IngredientFile,
		"Ingredient Name,Category,Unit Cost,Unit\n"+
			"rice noodles,carbs,2.50,lbs\n"+
			"beef,protein,8.00,lbs\n"+
			"egg,protein,0.30,count\n")

	writeFile(t, dir, ShipmentFile,
		"Supplier,Ingredient,frequency,Number of shipments,Quantity per shipment,Unit of shipment,Scheduled Date\n"+
			"Acme Foods,beef,weekly,5,40,lbs,2025-06-02\n"+
			"Acme Foods,egg,weekly,6,200,count,2025-06-03\n"+
			"Green Farm,rice noodles,monthly,1,120,lbs,2025-06-10\n")

	writeFile(t, dir, MenuMatrixFile,
		"Item name,rice noodles(g),beef(g),egg(count)\n"+
			"Pad Thai,200,,1\n"+
			"Beef Ramen,,150,1\n")

	return dir
}

func TestLoadFullFixture(t *testing.T) {
	dir := fixtureDir(t)
	loader := NewLoader(dir, []string{"May", "June"}, nil)

	tables, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"May", "June"}, tables.Months)

	// Two items in May (Pad Thai folded to one record), one in June.
	require.Len(t, tables.Sales, 3)
	assert.Equal(t, "May", tables.Sales[0].Month)
	padThai := tables.Sales[0]
	assert.Equal(t, "Pad Thai", padThai.MenuItemName)
	assert.Equal(t, 120.0, padThai.QuantitySold)
	assert.Equal(t, 1440.0, padThai.Revenue)

	require.Len(t, tables.Ingredients, 3)
	assert.Equal(t, "rice noodles", tables.Ingredients[0].Name)
	assert.Equal(t, "2.5", tables.Ingredients[0].UnitCost.String())

	require.Len(t, tables.Shipments, 3)
	assert.Equal(t, 5, tables.Shipments[0].Shipments)

	require.Len(t, tables.MenuMap, 2)
	assert.ElementsMatch(t, []string{"rice noodles", "egg"}, tables.MenuMap["Pad Thai"])
	assert.ElementsMatch(t, []string{"beef", "egg"}, tables.MenuMap["Beef Ramen"])

	assert.Equal(t, 0, tables.Diagnostics.MalformedRows)
	// Purchase log is optional and absent in this fixture.
	assert.Contains(t, tables.Diagnostics.MissingOptional, PurchaseLogFile)
}

func TestLoadSkipsMalformedRows(t *testing.T) {
	dir := fixtureDir(t)
	// A shipment row with a non-numeric count must be dropped and counted,
	// not fail the load.
	writeFile(t, dir, ShipmentFile,
		"Supplier,Ingredient,frequency,Number of shipments,Quantity per shipment,Unit of shipment,Scheduled Date\n"+
			"Acme Foods,beef,weekly,often,40,lbs,2025-06-02\n"+
			"Green Farm,rice noodles,monthly,1,120,lbs,2025-06-10\n")

	loader := NewLoader(dir, []string{"May", "June"}, nil)
	tables, err := loader.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, tables.Shipments, 1)
	assert.Equal(t, "Green Farm", tables.Shipments[0].Supplier)
	assert.Equal(t, 1, tables.Diagnostics.MalformedRows)
}

func TestLoadMissingRequiredTableIsFatal(t *testing.T) {
	dir := fixtureDir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, IngredientFile)))

	loader := NewLoader(dir, []string{"May", "June"}, nil)
	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingSource))
}

func TestLoadMissingMonthIsTolerated(t *testing.T) {
	dir := fixtureDir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "June.xlsx")))

	loader := NewLoader(dir, []string{"May", "June"}, nil)
	tables, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"May"}, tables.Months)
	assert.Contains(t, tables.Diagnostics.MissingOptional, "June.xlsx")
}

func TestLoadNoSalesAtAllIsFatal(t *testing.T) {
	dir := fixtureDir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "May.xlsx")))
	require.NoError(t, os.Remove(filepath.Join(dir, "June.xlsx")))

	loader := NewLoader(dir, []string{"May", "June"}, nil)
	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingSource))
}

func TestLoadRecipesOverrideWinsOverMenuMatrix(t *testing.T) {
	dir := fixtureDir(t)
	writeFile(t, dir, RecipesFile,
		"recipes:\n"+
			"  Pad Thai:\n"+
			"    - rice noodles\n")

	loader := NewLoader(dir, []string{"May", "June"}, nil)
	tables, err := loader.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, tables.MenuMap, 1)
	assert.Equal(t, []string{"rice noodles"}, tables.MenuMap["Pad Thai"])
}

func TestLoadPurchaseLog(t *testing.T) {
	dir := fixtureDir(t)
	writeFile(t, dir, PurchaseLogFile,
		"Date,Ingredient,Quantity,Price\n"+
			"2025-06-05,beef,40,7.80\n"+
			"2025-06-12,beef,35,8.10\n")

	loader := NewLoader(dir, []string{"May", "June"}, nil)
	tables, err := loader.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, tables.Purchases, 2)
	assert.Equal(t, "beef", tables.Purchases[0].IngredientName)
	assert.Equal(t, "7.8", tables.Purchases[0].Price.String())
	assert.NotContains(t, tables.Diagnostics.MissingOptional, PurchaseLogFile)
}

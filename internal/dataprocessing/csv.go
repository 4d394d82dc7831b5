package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"msydash/pkg/contracts/domain"
)

// readCSV loads a whole CSV file. Records may be ragged; callers index rows
// through a resolved ColumnMap which tolerates short rows.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r.ReadAll()
}

// loadIngredients reads the required ingredient reference table. Returns the
// parsed rows and the count of dropped malformed rows.
func (l *Loader) loadIngredients() ([]domain.Ingredient, int, error) {
	path := filepath.Join(l.dir, IngredientFile)
	rows, err := readCSV(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, fmt.Errorf("%w: %s", ErrMissingSource, IngredientFile)
		}
		return nil, 0, fmt.Errorf("read %s: %w", IngredientFile, err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("%w: %s is empty", ErrMissingSource, IngredientFile)
	}

	cols, err := IngredientSchema.Resolve(rows[0])
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", IngredientFile, err)
	}

	var out []domain.Ingredient
	seen := make(map[string]bool)
	dropped := 0
	for _, row := range rows[1:] {
		name := cols.cell(row, FieldIngredient)
		if name == "" {
			continue
		}
		// Ingredient names are the join key; the first occurrence wins.
		if seen[name] {
			continue
		}
		cost, err := parseDecimal(cols.cell(row, FieldUnitCost))
		if err != nil {
			l.logger.Warn("dropping malformed ingredient row",
				slog.String("ingredient", name), slog.String("error", err.Error()))
			dropped++
			continue
		}
		seen[name] = true
		out = append(out, domain.Ingredient{
			Name:     name,
			Category: cols.cell(row, FieldCategory),
			UnitCost: cost,
			Unit:     cols.cell(row, FieldUnit),
		})
	}
	return out, dropped, nil
}

// loadShipments reads the required shipment reference table.
func (l *Loader) loadShipments() ([]domain.Shipment, int, error) {
	path := filepath.Join(l.dir, ShipmentFile)
	rows, err := readCSV(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, fmt.Errorf("%w: %s", ErrMissingSource, ShipmentFile)
		}
		return nil, 0, fmt.Errorf("read %s: %w", ShipmentFile, err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("%w: %s is empty", ErrMissingSource, ShipmentFile)
	}

	cols, err := ShipmentSchema.Resolve(rows[0])
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", ShipmentFile, err)
	}

	var out []domain.Shipment
	dropped := 0
	for _, row := range rows[1:] {
		ingredient := cols.cell(row, FieldIngredient)
		if ingredient == "" {
			continue
		}
		count, err := parseInt(cols.cell(row, FieldShipments), 0)
		if err != nil {
			l.logger.Warn("dropping malformed shipment row",
				slog.String("ingredient", ingredient), slog.String("error", err.Error()))
			dropped++
			continue
		}
		qtyPer, err := parseFloat(cols.cell(row, FieldQuantityPer), 0)
		if err != nil {
			l.logger.Warn("dropping malformed shipment row",
				slog.String("ingredient", ingredient), slog.String("error", err.Error()))
			dropped++
			continue
		}
		date, err := parseDate(cols.cell(row, FieldDate))
		if err != nil {
			l.logger.Warn("dropping malformed shipment row",
				slog.String("ingredient", ingredient), slog.String("error", err.Error()))
			dropped++
			continue
		}
		out = append(out, domain.Shipment{
			Supplier:       cols.cell(row, FieldSupplier),
			IngredientName: ingredient,
			Frequency:      domain.ShipmentFrequency(parseFrequency(cols.cell(row, FieldFrequency))),
			Shipments:      count,
			QuantityPer:    qtyPer,
			Unit:           cols.cell(row, FieldUnit),
			ScheduledDate:  date,
		})
	}
	return out, dropped, nil
}

// loadPurchases reads the optional purchase log. Absence is not an error; the
// boolean reports whether the file was present.
func (l *Loader) loadPurchases() ([]domain.PurchaseLogEntry, int, bool, error) {
	path := filepath.Join(l.dir, PurchaseLogFile)
	rows, err := readCSV(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, false, nil
		}
		return nil, 0, true, fmt.Errorf("read %s: %w", PurchaseLogFile, err)
	}
	if len(rows) == 0 {
		return nil, 0, true, nil
	}

	cols, err := PurchaseSchema.Resolve(rows[0])
	if err != nil {
		return nil, 0, true, fmt.Errorf("%s: %w", PurchaseLogFile, err)
	}

	var out []domain.PurchaseLogEntry
	dropped := 0
	for _, row := range rows[1:] {
		ingredient := cols.cell(row, FieldIngredient)
		if ingredient == "" {
			continue
		}
		date, err := parseDate(cols.cell(row, FieldDate))
		if err != nil {
			l.logger.Warn("dropping malformed purchase row",
				slog.String("ingredient", ingredient), slog.String("error", err.Error()))
			dropped++
			continue
		}
		qty, err := parseFloat(cols.cell(row, FieldQuantity), 0)
		if err != nil {
			l.logger.Warn("dropping malformed purchase row",
				slog.String("ingredient", ingredient), slog.String("error", err.Error()))
			dropped++
			continue
		}
		price, err := parseDecimal(cols.cell(row, FieldPrice))
		if err != nil {
			l.logger.Warn("dropping malformed purchase row",
				slog.String("ingredient", ingredient), slog.String("error", err.Error()))
			dropped++
			continue
		}
		out = append(out, domain.PurchaseLogEntry{
			Date:           date,
			IngredientName: ingredient,
			Quantity:       qty,
			Price:          price,
		})
	}
	return out, dropped, true, nil
}

// recipesDoc is the shape of the optional recipes.yaml override.
type recipesDoc struct {
	Recipes map[string][]string `yaml:"recipes"`
}

// loadMenuMap builds the menu item to ingredient mapping. An explicit
// recipes.yaml wins; otherwise the mapping is derived from the menu matrix
// CSV, where each non-empty, non-zero ingredient column marks usage. With
// neither file present the mapping is empty and menu-dependent metrics
// degrade to zeros.
func (l *Loader) loadMenuMap() (domain.MenuIngredientMap, string, error) {
	if data, err := os.ReadFile(filepath.Join(l.dir, RecipesFile)); err == nil {
		var doc recipesDoc
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, "", fmt.Errorf("parse %s: %w", RecipesFile, err)
		}
		m := domain.MenuIngredientMap(doc.Recipes)
		if m == nil {
			m = domain.MenuIngredientMap{}
		}
		return m, RecipesFile, nil
	}

	rows, err := readCSV(filepath.Join(l.dir, MenuMatrixFile))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.MenuIngredientMap{}, "", nil
		}
		return nil, "", fmt.Errorf("read %s: %w", MenuMatrixFile, err)
	}
	if len(rows) < 2 {
		return domain.MenuIngredientMap{}, MenuMatrixFile, nil
	}

	// First column is the menu item; every other header is an ingredient
	// name, possibly carrying a unit suffix.
	header := rows[0]
	ingredients := make([]string, len(header))
	for i := 1; i < len(header); i++ {
		ingredients[i] = strings.TrimSpace(unitSuffixRe.ReplaceAllString(header[i], ""))
	}

	m := domain.MenuIngredientMap{}
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		item := strings.TrimSpace(row[0])
		if item == "" {
			continue
		}
		var used []string
		for i := 1; i < len(row) && i < len(header); i++ {
			cell := strings.TrimSpace(row[i])
			if cell == "" || cell == "0" {
				continue
			}
			used = append(used, ingredients[i])
		}
		m[item] = used
	}
	return m, MenuMatrixFile, nil
}

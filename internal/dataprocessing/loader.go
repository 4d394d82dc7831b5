package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"msydash/pkg/contracts/domain"
)

// ErrMissingSource marks a required source table that is entirely absent.
// This is the only fatal load error: malformed rows and missing optional
// files degrade to diagnostics instead.
var ErrMissingSource = errors.New("required source table missing")

// DefaultMonths is the fixed month sequence of the sales exports, in source
// order. Order is preserved through normalization and aggregation.
var DefaultMonths = []string{"May", "June", "July", "August", "September", "October"}

// Source file names inside the data directory.
const (
	IngredientFile  = "MSY Data - Ingredient.csv"
	ShipmentFile    = "MSY Data - Shipment.csv"
	PurchaseLogFile = "MSY Data - PurchaseLog.csv"
	MenuMatrixFile  = "MSY Data - Menu.csv"
	RecipesFile     = "recipes.yaml"
)

// Loader reads the monthly sales workbooks and the CSV reference tables from
// one data directory and produces the normalized tables for a single
// aggregation run.
type Loader struct {
	dir    string
	months []string
	logger *slog.Logger
}

// NewLoader creates a loader rooted at dir. months defaults to May–October
// when empty.
func NewLoader(dir string, months []string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if len(months) == 0 {
		months = DefaultMonths
	}
	return &Loader{
		dir:    dir,
		months: months,
		logger: logger.With(slog.String("component", "loader")),
	}
}

// Load reads every source, normalizes it, and returns the table bundle for
// the aggregator. It fails only when a required table (ingredients,
// shipments, or all monthly sales files at once) is absent.
func (l *Loader) Load(ctx context.Context) (*domain.NormalizedTables, error) {
	tables := &domain.NormalizedTables{}

	sales, months, diag, err := l.loadSales(ctx)
	if err != nil {
		return nil, err
	}
	tables.Sales = sales
	tables.Months = months
	tables.Diagnostics = diag

	ingredients, n, err := l.loadIngredients()
	if err != nil {
		return nil, err
	}
	tables.Ingredients = ingredients
	tables.Diagnostics.MalformedRows += n

	shipments, n, err := l.loadShipments()
	if err != nil {
		return nil, err
	}
	tables.Shipments = shipments
	tables.Diagnostics.MalformedRows += n

	purchases, n, ok, err := l.loadPurchases()
	if err != nil {
		return nil, err
	}
	if !ok {
		tables.Diagnostics.MissingOptional = append(tables.Diagnostics.MissingOptional, PurchaseLogFile)
	}
	tables.Purchases = purchases
	tables.Diagnostics.MalformedRows += n

	menuMap, source, err := l.loadMenuMap()
	if err != nil {
		return nil, err
	}
	if source == "" {
		tables.Diagnostics.MissingOptional = append(tables.Diagnostics.MissingOptional, MenuMatrixFile)
	}
	tables.MenuMap = menuMap

	l.logger.InfoContext(ctx, "load cycle complete",
		slog.Int("months", len(tables.Months)),
		slog.Int("sales_records", len(tables.Sales)),
		slog.Int("ingredients", len(tables.Ingredients)),
		slog.Int("shipments", len(tables.Shipments)),
		slog.Int("purchase_lines", len(tables.Purchases)),
		slog.Int("menu_items", len(tables.MenuMap)),
		slog.Int("malformed_rows", tables.Diagnostics.MalformedRows),
	)
	return tables, nil
}

// monthResult carries one workbook's outcome back from the parallel load.
type monthResult struct {
	month   string
	records []domain.SalesRecord
	dropped int
}

// loadSales reads every monthly workbook that exists. Missing months are
// tolerated; no months at all is fatal because the sales table is required.
func (l *Loader) loadSales(ctx context.Context) ([]domain.SalesRecord, []string, domain.LoadDiagnostics, error) {
	var (
		mu      sync.Mutex
		results []monthResult
		diag    domain.LoadDiagnostics
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, month := range l.months {
		path := filepath.Join(l.dir, month+".xlsx")
		if _, err := os.Stat(path); err != nil {
			mu.Lock()
			diag.MissingOptional = append(diag.MissingOptional, month+".xlsx")
			mu.Unlock()
			continue
		}
		month := month
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			records, dropped, err := l.parseSalesWorkbook(path, month)
			if err != nil {
				return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
			}
			mu.Lock()
			results = append(results, monthResult{month: month, records: records, dropped: dropped})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, diag, err
	}
	if len(results) == 0 {
		return nil, nil, diag, fmt.Errorf("%w: no monthly sales workbook found in %s", ErrMissingSource, l.dir)
	}

	// Restore source month order; the parallel load finishes out of order.
	order := make(map[string]int, len(l.months))
	for i, m := range l.months {
		order[m] = i
	}
	sort.Slice(results, func(i, j int) bool {
		return order[results[i].month] < order[results[j].month]
	})

	var sales []domain.SalesRecord
	var months []string
	for _, r := range results {
		months = append(months, r.month)
		sales = append(sales, r.records...)
		diag.MalformedRows += r.dropped
	}
	return sales, months, diag, nil
}

// parseSalesWorkbook extracts one month's sales from a workbook. The first
// sheet that yields a header matching the sales schema wins; the month comes
// from the file identity, never from a column. Rows for the same menu item
// are folded into one record per item per month.
func (l *Loader) parseSalesWorkbook(path, month string) ([]domain.SalesRecord, int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var rows [][]string
	var headerIdx int
	var cols ColumnMap
	for _, sheet := range f.GetSheetList() {
		sheetRows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		// The header is not always row one; exports sometimes carry a
		// title row above it.
		for i := 0; i < len(sheetRows) && i < 5; i++ {
			if resolved, err := SalesSchema.Resolve(sheetRows[i]); err == nil {
				rows, headerIdx, cols = sheetRows, i, resolved
				break
			}
		}
		if rows != nil {
			break
		}
	}
	if rows == nil {
		return nil, 0, fmt.Errorf("no sheet matches the sales schema")
	}

	type agg struct {
		qty     float64
		revenue float64
	}
	totals := make(map[string]*agg)
	var order []string
	dropped := 0

	for _, row := range rows[headerIdx+1:] {
		item := cols.cell(row, FieldMenuItem)
		if item == "" {
			continue
		}
		qty, err := parseFloat(cols.cell(row, FieldQuantity), 1)
		if err != nil {
			l.logger.Warn("dropping malformed sales row",
				slog.String("month", month), slog.String("item", item), slog.String("error", err.Error()))
			dropped++
			continue
		}
		revenue, err := parseFloat(cols.cell(row, FieldRevenue), 0)
		if err != nil {
			l.logger.Warn("dropping malformed sales row",
				slog.String("month", month), slog.String("item", item), slog.String("error", err.Error()))
			dropped++
			continue
		}
		t, ok := totals[item]
		if !ok {
			t = &agg{}
			totals[item] = t
			order = append(order, item)
		}
		t.qty += qty
		t.revenue += revenue
	}

	records := make([]domain.SalesRecord, 0, len(order))
	for _, item := range order {
		records = append(records, domain.SalesRecord{
			Month:        month,
			MenuItemName: item,
			QuantitySold: totals[item].qty,
			Revenue:      totals[item].revenue,
		})
	}
	return records, dropped, nil
}

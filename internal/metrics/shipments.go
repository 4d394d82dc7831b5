package metrics

import (
	"sort"
	"time"

	"msydash/pkg/contracts/domain"
)

// WeekStart truncates a date to the Monday that starts its calendar week,
// dropping any time-of-day component.
func WeekStart(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

// ShipmentFrequency counts shipments per supplier per calendar week, grouping
// by scheduled date truncated to week start. Rows without a scheduled date
// cannot be placed in a window and are excluded from this metric only.
func ShipmentFrequency(shipments []domain.Shipment) []domain.SupplierWeekCount {
	type key struct {
		supplier string
		week     time.Time
	}
	counts := make(map[key]int)
	for _, s := range shipments {
		if s.ScheduledDate.IsZero() {
			continue
		}
		counts[key{supplier: s.Supplier, week: WeekStart(s.ScheduledDate)}]++
	}

	out := make([]domain.SupplierWeekCount, 0, len(counts))
	for k, c := range counts {
		out = append(out, domain.SupplierWeekCount{Supplier: k.supplier, WeekStart: k.week, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Supplier != out[j].Supplier {
			return out[i].Supplier < out[j].Supplier
		}
		return out[i].WeekStart.Before(out[j].WeekStart)
	})
	return out
}

// BuildSchedule projects the shipment table into the per-supplier delivery
// view the dashboard renders.
func BuildSchedule(shipments []domain.Shipment) []domain.ScheduleEntry {
	out := make([]domain.ScheduleEntry, 0, len(shipments))
	for _, s := range shipments {
		out = append(out, domain.ScheduleEntry{
			Supplier:       s.Supplier,
			Ingredient:     s.IngredientName,
			Frequency:      s.Frequency,
			Shipments:      s.Shipments,
			WeeklyQuantity: s.WeeklyQuantity(),
			NextDate:       s.ScheduledDate,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Supplier != out[j].Supplier {
			return out[i].Supplier < out[j].Supplier
		}
		return out[i].Ingredient < out[j].Ingredient
	})
	return out
}

package metrics

import (
	"msydash/pkg/contracts/domain"
)

// Forecaster projects the next period's value from a monthly series. The
// method is pluggable: the source behavior only promises "suggestions", so
// the choice of model is configuration, not a hard-coded algorithm.
//
// Project returns nil when the series is too short to say anything — fewer
// than two observations must never produce an extrapolated guess.
type Forecaster interface {
	Name() string
	Project(series []float64) *float64
}

// LinearTrend fits an ordinary least-squares line through the series and
// evaluates it one step past the end.
type LinearTrend struct{}

func (LinearTrend) Name() string { return "linear_trend" }

func (LinearTrend) Project(series []float64) *float64 {
	n := len(series)
	if n < 2 {
		return nil
	}
	// Closed-form least squares over x = 0..n-1.
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range series {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return nil
	}
	slope := (fn*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / fn
	projected := slope*fn + intercept
	if projected < 0 {
		projected = 0
	}
	return &projected
}

// MovingAverage projects the mean of the trailing window.
type MovingAverage struct {
	Window int
}

func (MovingAverage) Name() string { return "moving_average" }

func (m MovingAverage) Project(series []float64) *float64 {
	if len(series) < 2 {
		return nil
	}
	window := m.Window
	if window <= 0 {
		window = 3
	}
	if window > len(series) {
		window = len(series)
	}
	var sum float64
	for _, y := range series[len(series)-window:] {
		sum += y
	}
	avg := sum / float64(window)
	return &avg
}

// ForecastUsage produces one projected next-period value per ingredient from
// its monthly usage series. The series is aligned to the loaded month order;
// months with no mapped sales contribute zero. Ingredients with fewer than
// two months of loaded data yield a nil projection.
func ForecastUsage(usage []domain.UsageTotal, months []string, f Forecaster) []domain.ForecastEntry {
	out := make([]domain.ForecastEntry, 0, len(usage))
	for _, u := range usage {
		series := make([]float64, len(months))
		for i, month := range months {
			series[i] = u.ByMonth[month]
		}
		out = append(out, domain.ForecastEntry{
			Ingredient: u.Ingredient,
			Projected:  f.Project(series),
			Method:     f.Name(),
		})
	}
	return out
}

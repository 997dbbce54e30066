package analytics

import (
	"math"
	"sort"

	"github.com/folioapp/folio/internal/models"
)

const daysPerYear = 365.25

// finitePtr returns a pointer to v, or nil when v is NaN or infinite.
// Ratio fields degrade to absent, never to a non-finite number.
func finitePtr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// sortedCopy returns the points ordered chronologically ascending.
func sortedCopy(points []models.ValuePoint) []models.ValuePoint {
	out := make([]models.ValuePoint, len(points))
	copy(out, points)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// periodicReturns computes v_i/v_{i-1}-1 for consecutive points,
// skipping pairs whose base value is non-positive.
func periodicReturns(points []models.ValuePoint) []float64 {
	out := make([]float64, 0, len(points))
	for i := 1; i < len(points); i++ {
		prev := points[i-1].Value
		if prev <= 0 {
			continue
		}
		out = append(out, points[i].Value/prev-1)
	}
	return out
}

// sampleStdDev returns the sample standard deviation (n-1 denominator).
func sampleStdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(n-1))
}

// maxDrawdown returns the largest peak-to-trough decline, absolute and
// as a percentage of the running peak.
func maxDrawdown(points []models.ValuePoint) (abs, pct float64) {
	peak := 0.0
	for _, p := range points {
		if p.Value > peak {
			peak = p.Value
		}
		if peak <= 0 {
			continue
		}
		dd := peak - p.Value
		if dd > abs {
			abs = dd
			pct = dd / peak * 100
		}
	}
	return abs, pct
}

// ApplySeriesMetrics fills the time-series fields of metrics from the
// recorded portfolio value history, including the first-vs-last total
// return. riskFreeRate is a fraction
// (0.04 = 4% annual). periodsPerYear declares the sampling frequency
// (252 for trading days, 365.25 for daily); zero infers it from the
// observed density, which is fragile against irregular sampling.
// Every ratio whose denominator is zero or whose series is too short
// stays nil.
func ApplySeriesMetrics(metrics *models.PortfolioMetrics, points []models.ValuePoint, riskFreeRate, periodsPerYear float64) {
	if len(points) < 2 {
		return
	}
	series := sortedCopy(points)

	metrics.MaxDrawdown, metrics.MaxDrawdownPct = maxDrawdown(series)

	first, last := series[0], series[len(series)-1]
	years := last.Timestamp.Sub(first.Timestamp).Hours() / 24 / daysPerYear

	metrics.TotalReturn = last.Value - first.Value
	if first.Value > 0 {
		metrics.TotalReturnPct = metrics.TotalReturn / first.Value * 100
	}

	if years > 0 && first.Value > 0 && last.Value > 0 {
		cagr := (math.Pow(last.Value/first.Value, 1/years) - 1) * 100
		metrics.CAGR = finitePtr(cagr)
	}

	returns := periodicReturns(series)
	if len(returns) == 0 {
		return
	}

	if years > 0 && len(returns) >= 2 {
		if periodsPerYear <= 0 {
			// No declared frequency: estimate from observed density so
			// daily and weekly recordings both come out in annual terms.
			periodsPerYear = float64(len(returns)) / years
		}
		vol := sampleStdDev(returns) * math.Sqrt(periodsPerYear) * 100
		metrics.Volatility = finitePtr(vol)

		if metrics.CAGR != nil && vol > 0 {
			metrics.SharpeRatio = finitePtr((*metrics.CAGR - riskFreeRate*100) / vol)
		}

		downside := make([]float64, 0, len(returns))
		for _, r := range returns {
			if r < 0 {
				downside = append(downside, r)
			}
		}
		downsideDev := downsideDeviation(returns) * math.Sqrt(periodsPerYear) * 100
		if metrics.CAGR != nil && len(downside) > 0 && downsideDev > 0 {
			metrics.SortinoRatio = finitePtr((*metrics.CAGR - riskFreeRate*100) / downsideDev)
		}
	}

	var wins, losses int
	var winSum, lossSum float64
	for _, r := range returns {
		switch {
		case r > 0:
			wins++
			winSum += r
		case r < 0:
			losses++
			lossSum += -r
		}
	}

	winRate := float64(wins) / float64(len(returns)) * 100
	metrics.WinRate = finitePtr(winRate)
	if wins > 0 {
		metrics.AverageWin = finitePtr(winSum / float64(wins) * 100)
	}
	if losses > 0 {
		metrics.AverageLoss = finitePtr(lossSum / float64(losses) * 100)
	}
	if lossSum > 0 {
		metrics.ProfitFactor = finitePtr(winSum / lossSum)
	}

	if metrics.CAGR != nil && metrics.MaxDrawdownPct > 0 {
		metrics.CalmarRatio = finitePtr(*metrics.CAGR / metrics.MaxDrawdownPct)
	}
}

// downsideDeviation is the root mean square of negative returns over
// the full observation count.
func downsideDeviation(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range returns {
		if r < 0 {
			sum += r * r
		}
	}
	return math.Sqrt(sum / float64(len(returns)))
}

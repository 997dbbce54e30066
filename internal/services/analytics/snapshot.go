// Package analytics derives portfolio performance and allocation metrics
// from current holdings and the recorded portfolio value history. All
// computations are stateless: metrics are recomputed fresh on every
// request and never persisted.
package analytics

import (
	"sort"

	"github.com/folioapp/folio/internal/models"
)

// Snapshot computes the point-in-time metrics that need no history:
// totals, capital gains, and dividend income. Percentage fields stay
// zero when their denominator is zero.
func Snapshot(holdings []models.Holding) (totalValue, costBasis float64, metrics models.PortfolioMetrics) {
	var dividends float64
	for _, h := range holdings {
		totalValue += h.MarketValue()
		costBasis += h.CostBasis()
		dividends += h.AnnualDividendIncome
	}

	metrics.CapitalGains = totalValue - costBasis
	metrics.DividendIncome = dividends
	metrics.TotalReturn = metrics.CapitalGains + dividends

	if costBasis > 0 {
		metrics.CapitalGainsPct = metrics.CapitalGains / costBasis * 100
		metrics.TotalReturnPct = metrics.TotalReturn / costBasis * 100
	}
	if totalValue > 0 {
		metrics.DividendYield = dividends / totalValue * 100
	}
	return totalValue, costBasis, metrics
}

// Allocation computes per-holding weights and concentration. Holdings
// with a non-positive market value carry no weight. Returns nil when the
// portfolio has no positive value at all.
func Allocation(holdings []models.Holding) *models.AllocationMetrics {
	var total float64
	for _, h := range holdings {
		if v := h.MarketValue(); v > 0 {
			total += v
		}
	}
	if total <= 0 {
		return nil
	}

	out := &models.AllocationMetrics{}
	for _, h := range holdings {
		v := h.MarketValue()
		if v <= 0 {
			continue
		}
		w := v / total
		out.HHI += w * w
		out.Weights = append(out.Weights, models.HoldingWeight{
			Symbol:    h.NormalizedSymbol(),
			Value:     v,
			WeightPct: w * 100,
		})
	}

	sort.Slice(out.Weights, func(i, j int) bool {
		return out.Weights[i].WeightPct > out.Weights[j].WeightPct
	})

	out.EffectiveHoldings = 1 / out.HHI
	out.TopHoldingWeight = out.Weights[0].WeightPct
	return out
}

// Package models defines data structures for Folio
package models

import (
	"strings"
	"time"
)

// Holding represents a portfolio position.
// CurrentPrice and ChangePct are refreshed on each resolution cycle;
// market value is always derived, never stored.
type Holding struct {
	Symbol               string  `json:"symbol"`
	Name                 string  `json:"name,omitempty"`
	Quantity             float64 `json:"quantity"`
	AveragePrice         float64 `json:"average_price"` // cost basis per unit
	CurrentPrice         float64 `json:"current_price"`
	ChangePct            float64 `json:"change_pct"`
	Currency             string  `json:"currency,omitempty"`
	AnnualDividendIncome float64 `json:"annual_dividend_income,omitempty"`
	DividendYield        float64 `json:"dividend_yield,omitempty"`

	// Live quote attached upstream (e.g. by a wallet or exchange sync).
	// Zero means absent — the resolver falls through to the next source.
	LivePrice     float64 `json:"live_price,omitempty"`
	LiveChangePct float64 `json:"live_change_pct,omitempty"`

	LastUpdated time.Time `json:"last_updated,omitempty"`
}

// MarketValue returns quantity × current price. Recomputed on every call
// so it can never go stale against CurrentPrice or Quantity.
func (h Holding) MarketValue() float64 {
	return h.Quantity * h.CurrentPrice
}

// CostBasis returns quantity × average price.
func (h Holding) CostBasis() float64 {
	return h.Quantity * h.AveragePrice
}

// NormalizedSymbol returns the upper-cased symbol used as the canonical key.
func (h Holding) NormalizedSymbol() string {
	return strings.ToUpper(strings.TrimSpace(h.Symbol))
}

// ValuePoint is a single point in the portfolio value time series.
type ValuePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// PortfolioMetrics is a derived, stateless snapshot of portfolio performance.
// Pointer fields are ratios that are undefined (not zero) when their
// denominator is zero or the series is too short — nil, never NaN/Inf.
type PortfolioMetrics struct {
	TotalReturn       float64 `json:"total_return"`
	TotalReturnPct    float64 `json:"total_return_pct"`
	CapitalGains      float64 `json:"capital_gains"`
	CapitalGainsPct   float64 `json:"capital_gains_pct"`
	DividendIncome    float64 `json:"dividend_income"`
	DividendYield     float64 `json:"dividend_yield"`
	MaxDrawdown       float64 `json:"max_drawdown"`
	MaxDrawdownPct    float64 `json:"max_drawdown_pct"`

	CAGR         *float64 `json:"cagr,omitempty"`
	Volatility   *float64 `json:"volatility,omitempty"`
	SharpeRatio  *float64 `json:"sharpe_ratio,omitempty"`
	SortinoRatio *float64 `json:"sortino_ratio,omitempty"`
	WinRate      *float64 `json:"win_rate,omitempty"`
	AverageWin   *float64 `json:"average_win,omitempty"`
	AverageLoss  *float64 `json:"average_loss,omitempty"`
	ProfitFactor *float64 `json:"profit_factor,omitempty"`
	CalmarRatio  *float64 `json:"calmar_ratio,omitempty"`
}

// HoldingWeight is a per-holding portfolio weight.
type HoldingWeight struct {
	Symbol    string  `json:"symbol"`
	Value     float64 `json:"value"`
	WeightPct float64 `json:"weight_pct"`
}

// AllocationMetrics captures portfolio concentration.
// HHI is the Herfindahl-Hirschman Index over fractional weights
// (range 0–1, 1 = single holding); EffectiveHoldings = 1/HHI.
type AllocationMetrics struct {
	Weights           []HoldingWeight `json:"weights"`
	HHI               float64         `json:"hhi"`
	EffectiveHoldings float64         `json:"effective_holdings"`
	TopHoldingWeight  float64         `json:"top_holding_weight"`
}

// PortfolioReport is the full analytics response: refreshed holdings,
// snapshot and time-series metrics, and allocation breakdown.
// Recomputed fresh on every request; never persisted.
type PortfolioReport struct {
	GeneratedAt time.Time          `json:"generated_at"`
	TotalValue  float64            `json:"total_value"`
	CostBasis   float64            `json:"cost_basis"`
	Holdings    []Holding          `json:"holdings"`
	Metrics     PortfolioMetrics   `json:"metrics"`
	Allocation  *AllocationMetrics `json:"allocation,omitempty"`
	History     []ValuePoint       `json:"history,omitempty"`
}

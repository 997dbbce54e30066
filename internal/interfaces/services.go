// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"

	"github.com/folioapp/folio/internal/models"
)

// PriceService resolves authoritative prices through the layered
// source hierarchy and refreshes holdings concurrently.
type PriceService interface {
	// ResolveHolding resolves price and 24h change for a single holding,
	// consulting live sources, the cache, and the fallback table in order.
	ResolveHolding(ctx context.Context, holding models.Holding) models.ResolvedQuote

	// ResolveSymbol resolves a bare symbol with no attached live quote.
	ResolveSymbol(ctx context.Context, symbol string) models.ResolvedQuote

	// RefreshHoldings resolves all holdings concurrently and returns them
	// with CurrentPrice/ChangePct updated. Per-symbol failures are
	// isolated — a failed fetch leaves that holding on its fallback price.
	RefreshHoldings(ctx context.Context, holdings []models.Holding) []models.Holding
}

// IndicatorService computes latest-bar technical indicators for a symbol.
type IndicatorService interface {
	ComputeIndicators(ctx context.Context, symbol, rangeSpec string) (*models.TechnicalIndicators, error)
}

// AnalyticsService computes portfolio metrics from current holdings and
// the recorded portfolio value history.
type AnalyticsService interface {
	// Report refreshes holdings and computes the full analytics report.
	Report(ctx context.Context) (*models.PortfolioReport, error)

	// RecordValue appends the current total portfolio value to the
	// persisted history series.
	RecordValue(ctx context.Context) error

	// RenderChart renders the portfolio value history as a PNG.
	RenderChart(ctx context.Context) ([]byte, error)
}

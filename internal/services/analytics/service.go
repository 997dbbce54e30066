package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/folioapp/folio/internal/common"
	"github.com/folioapp/folio/internal/interfaces"
	"github.com/folioapp/folio/internal/models"
)

// Service wires holdings, the price resolver, and the value history into
// the full analytics report.
type Service struct {
	holdings      interfaces.HoldingsProvider
	prices        interfaces.PriceService
	history       *History
	logger        *common.Logger
	riskFreeRate  float64
	annualPeriods float64
	now           func() time.Time
}

var _ interfaces.AnalyticsService = (*Service)(nil)

// Option configures the service.
type Option func(*Service)

// WithRiskFreeRate sets the annual risk-free rate as a fraction
// (0.04 = 4%). Used by the Sharpe and Sortino ratios.
func WithRiskFreeRate(rate float64) Option {
	return func(s *Service) {
		s.riskFreeRate = rate
	}
}

// WithAnnualPeriods declares the sampling frequency of the value
// history (e.g. 252, 365.25). Zero lets the calculator infer it from
// the observed density.
func WithAnnualPeriods(periods float64) Option {
	return func(s *Service) {
		s.annualPeriods = periods
	}
}

// WithClock injects a clock for testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates the analytics service.
func NewService(holdings interfaces.HoldingsProvider, prices interfaces.PriceService, history *History, logger *common.Logger, opts ...Option) *Service {
	s := &Service{
		holdings: holdings,
		prices:   prices,
		history:  history,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// refreshed loads the holdings and resolves current prices for them.
func (s *Service) refreshed(ctx context.Context) ([]models.Holding, error) {
	holdings, err := s.holdings.Holdings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}
	return s.prices.RefreshHoldings(ctx, holdings), nil
}

// Report refreshes holdings and computes the full analytics report.
func (s *Service) Report(ctx context.Context) (*models.PortfolioReport, error) {
	holdings, err := s.refreshed(ctx)
	if err != nil {
		return nil, err
	}

	totalValue, costBasis, metrics := Snapshot(holdings)

	history := s.history.Load(ctx)
	// The cost-basis return from current holdings is authoritative in
	// the combined report; the series first-vs-last return only stands
	// when the calculator runs on its own.
	snapReturn, snapReturnPct := metrics.TotalReturn, metrics.TotalReturnPct
	ApplySeriesMetrics(&metrics, history, s.riskFreeRate, s.annualPeriods)
	metrics.TotalReturn, metrics.TotalReturnPct = snapReturn, snapReturnPct

	report := &models.PortfolioReport{
		GeneratedAt: s.now(),
		TotalValue:  totalValue,
		CostBasis:   costBasis,
		Holdings:    holdings,
		Metrics:     metrics,
		Allocation:  Allocation(holdings),
		History:     history,
	}

	s.logger.Debug().
		Int("holdings", len(holdings)).
		Int("history_points", len(history)).
		Float64("total_value", totalValue).
		Msg("Portfolio report generated")
	return report, nil
}

// RecordValue appends the current total portfolio value to the
// persisted history series.
func (s *Service) RecordValue(ctx context.Context) error {
	holdings, err := s.refreshed(ctx)
	if err != nil {
		return err
	}

	totalValue, _, _ := Snapshot(holdings)
	point := models.ValuePoint{Timestamp: s.now(), Value: totalValue}
	if err := s.history.Append(ctx, point); err != nil {
		return err
	}

	s.logger.Debug().Float64("value", totalValue).Msg("Portfolio value recorded")
	return nil
}

// RenderChart renders the portfolio value history as a PNG.
func (s *Service) RenderChart(ctx context.Context) ([]byte, error) {
	return RenderValueChart(s.history.Load(ctx))
}

// Package indicator exposes latest-bar technical indicator snapshots
// computed from historical series fetched on demand.
package indicator

import (
	"context"
	"fmt"
	"strings"

	"github.com/folioapp/folio/internal/common"
	"github.com/folioapp/folio/internal/interfaces"
	"github.com/folioapp/folio/internal/models"
	"github.com/folioapp/folio/internal/signals"
)

// DefaultRange is the series range requested when the caller gives none.
const DefaultRange = "1y"

// Service fetches a symbol's history and runs the indicator computer
// over it.
type Service struct {
	client   interfaces.QuoteClient
	computer *signals.Computer
	logger   *common.Logger
}

var _ interfaces.IndicatorService = (*Service)(nil)

// NewService creates the indicator service.
func NewService(client interfaces.QuoteClient, logger *common.Logger) *Service {
	return &Service{
		client:   client,
		computer: signals.NewComputer(logger),
		logger:   logger,
	}
}

// ComputeIndicators fetches the series for a symbol and computes the
// latest-bar snapshot. Only the fetch can fail; a short series yields a
// snapshot with the affected indicators absent.
func (s *Service) ComputeIndicators(ctx context.Context, symbol, rangeSpec string) (*models.TechnicalIndicators, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if rangeSpec == "" {
		rangeSpec = DefaultRange
	}
	if s.client == nil {
		return nil, fmt.Errorf("no market-data client configured")
	}

	candles, err := s.client.FetchSeries(ctx, symbol, rangeSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch series for %s: %w", symbol, err)
	}

	ind := s.computer.Compute(candles, signals.ComputeOptions{})
	ind.Symbol = symbol

	s.logger.Debug().
		Str("symbol", symbol).
		Str("range", rangeSpec).
		Int("bars", ind.Bars).
		Msg("Indicators computed")
	return ind, nil
}

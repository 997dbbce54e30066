// Package holdings supplies the configured position list, either inline
// from configuration or imported from a JSON file.
package holdings

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/folioapp/folio/internal/common"
	"github.com/folioapp/folio/internal/interfaces"
	"github.com/folioapp/folio/internal/models"
)

// Provider reads the position list from configuration. The list is the
// engine's one required input: an unreadable or invalid definition is a
// configuration error, not something to degrade around.
type Provider struct {
	cfg    common.PortfolioConfig
	logger *common.Logger
}

var _ interfaces.HoldingsProvider = (*Provider)(nil)

// NewProvider creates a holdings provider from the portfolio config.
func NewProvider(cfg common.PortfolioConfig, logger *common.Logger) *Provider {
	return &Provider{cfg: cfg, logger: logger}
}

// Holdings returns the configured positions. A holdings file, when set,
// takes precedence over the inline definition.
func (p *Provider) Holdings(ctx context.Context) ([]models.Holding, error) {
	if p.cfg.HoldingsFile != "" {
		return p.fromFile(p.cfg.HoldingsFile)
	}
	return p.fromConfig()
}

func (p *Provider) fromFile(path string) ([]models.Holding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read holdings file %s: %w", path, err)
	}

	var holdings []models.Holding
	if err := json.Unmarshal(data, &holdings); err != nil {
		return nil, fmt.Errorf("failed to parse holdings file %s: %w", path, err)
	}

	if err := validate(holdings); err != nil {
		return nil, fmt.Errorf("holdings file %s: %w", path, err)
	}

	p.logger.Debug().Int("holdings", len(holdings)).Str("file", path).Msg("Holdings loaded from file")
	return holdings, nil
}

func (p *Provider) fromConfig() ([]models.Holding, error) {
	holdings := make([]models.Holding, 0, len(p.cfg.Holdings))
	for _, h := range p.cfg.Holdings {
		holdings = append(holdings, models.Holding{
			Symbol:               h.Symbol,
			Name:                 h.Name,
			Quantity:             h.Quantity,
			AveragePrice:         h.AveragePrice,
			Currency:             h.Currency,
			AnnualDividendIncome: h.AnnualDividendIncome,
			DividendYield:        h.DividendYield,
		})
	}

	if err := validate(holdings); err != nil {
		return nil, err
	}
	return holdings, nil
}

func validate(holdings []models.Holding) error {
	for i, h := range holdings {
		if h.NormalizedSymbol() == "" {
			return fmt.Errorf("holding %d has no symbol", i)
		}
		if h.Quantity < 0 {
			return fmt.Errorf("holding %s has negative quantity", h.NormalizedSymbol())
		}
	}
	return nil
}

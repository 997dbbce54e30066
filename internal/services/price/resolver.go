// Package price resolves authoritative prices through a layered source
// hierarchy: live holding quote, market-data quote, cached last-known-good
// price, then the static fallback table. Resolution never fails — an
// unknown symbol is reported, not errored.
package price

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/folioapp/folio/internal/common"
	"github.com/folioapp/folio/internal/interfaces"
	"github.com/folioapp/folio/internal/models"
	"github.com/folioapp/folio/internal/pricecache"
)

// Service implements the layered price resolver.
type Service struct {
	cache   *pricecache.Cache
	logger  *common.Logger
	sources []source
	now     func() time.Time
}

var _ interfaces.PriceService = (*Service)(nil)

// Option configures the service.
type Option func(*Service)

// WithClock injects a clock for testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a resolver. client may be nil (no market tier);
// cache may be nil (no cache tier, no write-through); fallback maps
// symbols to static last-resort prices and may be nil.
func NewService(client interfaces.QuoteClient, cache *pricecache.Cache, fallback map[string]float64, logger *common.Logger, opts ...Option) *Service {
	table := make(map[string]float64, len(fallback))
	for symbol, p := range fallback {
		table[strings.ToUpper(strings.TrimSpace(symbol))] = p
	}

	s := &Service{
		cache:  cache,
		logger: logger,
		now:    time.Now,
		sources: []source{
			holdingSource{},
			marketSource{client: client, logger: logger},
			cacheSource{cache: cache},
			fallbackSource{table: table},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// resolve walks the chain twice, once for price and once for change.
// The walks are independent: a holding with a live change but a stale
// price can still take its price from a lower tier.
func (s *Service) resolve(ctx context.Context, req *request) models.ResolvedQuote {
	out := models.ResolvedQuote{Symbol: req.symbol}

	for _, src := range s.sources {
		if p, ok := src.price(ctx, req); ok {
			out.Price = p
			out.PriceSource = src.name()
			out.Known = true
			break
		}
	}

	// Live prices become the next cycle's last-known-good value
	if out.Known && s.cache != nil && (out.PriceSource == SourceLive || out.PriceSource == SourceMarket) {
		s.cache.Save(ctx, req.symbol, out.Price)
	}

	for _, src := range s.sources {
		if c, ok := src.change(ctx, req); ok {
			out.ChangePct = c
			out.ChangeSource = src.name()
			break
		}
	}

	if !out.Known {
		s.logger.Debug().Str("symbol", req.symbol).Msg("No price source had symbol")
	}
	return out
}

// ResolveHolding resolves price and 24h change for a single holding.
func (s *Service) ResolveHolding(ctx context.Context, holding models.Holding) models.ResolvedQuote {
	return s.resolve(ctx, &request{
		symbol:  holding.NormalizedSymbol(),
		holding: &holding,
	})
}

// ResolveSymbol resolves a bare symbol with no attached live quote.
func (s *Service) ResolveSymbol(ctx context.Context, symbol string) models.ResolvedQuote {
	return s.resolve(ctx, &request{
		symbol: strings.ToUpper(strings.TrimSpace(symbol)),
	})
}

// RefreshHoldings resolves every holding concurrently and returns the
// list with CurrentPrice/ChangePct updated. Order is preserved. A symbol
// whose resolution finds nothing keeps its previous price.
func (s *Service) RefreshHoldings(ctx context.Context, holdings []models.Holding) []models.Holding {
	if len(holdings) == 0 {
		return holdings
	}

	out := make([]models.Holding, len(holdings))
	copy(out, holdings)

	var wg sync.WaitGroup
	for i := range out {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resolved := s.ResolveHolding(ctx, out[i])
			if !resolved.Known {
				return
			}
			out[i].CurrentPrice = resolved.Price
			out[i].ChangePct = resolved.ChangePct
			out[i].LastUpdated = s.now()
		}(i)
	}
	wg.Wait()

	s.logger.Debug().Int("holdings", len(out)).Msg("Holdings refreshed")
	return out
}

package price

import (
	"context"
	"math"

	"github.com/folioapp/folio/internal/common"
	"github.com/folioapp/folio/internal/interfaces"
	"github.com/folioapp/folio/internal/models"
	"github.com/folioapp/folio/internal/pricecache"
)

// Source names reported in ResolvedQuote.
const (
	SourceLive     = "live"
	SourceMarket   = "market"
	SourceCache    = "cache"
	SourceFallback = "fallback"
)

// request carries one resolution through the source chain. The market
// quote is fetched at most once and memoized so the price and change
// walks share it.
type request struct {
	symbol        string
	holding       *models.Holding
	market        *models.Quote
	marketFetched bool
}

// source is one tier of the resolution hierarchy. price and change
// report (value, ok); ok=false falls through to the next tier.
type source interface {
	name() string
	price(ctx context.Context, req *request) (float64, bool)
	change(ctx context.Context, req *request) (float64, bool)
}

// validPrice reports whether p is a usable quote. Zero means absent,
// never a worthless asset.
func validPrice(p float64) bool {
	return p > 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
}

// holdingSource serves the live quote attached to the holding itself,
// e.g. by an upstream wallet or exchange sync.
type holdingSource struct{}

func (holdingSource) name() string { return SourceLive }

func (holdingSource) price(_ context.Context, req *request) (float64, bool) {
	if req.holding == nil || !validPrice(req.holding.LivePrice) {
		return 0, false
	}
	return req.holding.LivePrice, true
}

func (holdingSource) change(_ context.Context, req *request) (float64, bool) {
	// The change is only trusted when the same sync delivered a price;
	// a bare zero change with no price is indistinguishable from absent.
	if req.holding == nil || !validPrice(req.holding.LivePrice) {
		return 0, false
	}
	return req.holding.LiveChangePct, true
}

// marketSource fetches a quote from the market-data client on demand.
type marketSource struct {
	client interfaces.QuoteClient
	logger *common.Logger
}

func (marketSource) name() string { return SourceMarket }

func (s marketSource) quote(ctx context.Context, req *request) *models.Quote {
	if !req.marketFetched {
		req.marketFetched = true
		if s.client == nil {
			return nil
		}
		q, err := s.client.FetchQuote(ctx, req.symbol)
		if err != nil {
			s.logger.Debug().Err(err).Str("symbol", req.symbol).Msg("Market quote fetch failed")
			return nil
		}
		req.market = q
	}
	return req.market
}

func (s marketSource) price(ctx context.Context, req *request) (float64, bool) {
	q := s.quote(ctx, req)
	if q == nil || !validPrice(q.Price) {
		return 0, false
	}
	return q.Price, true
}

func (s marketSource) change(ctx context.Context, req *request) (float64, bool) {
	q := s.quote(ctx, req)
	if q == nil || !validPrice(q.Price) {
		return 0, false
	}
	return q.ChangePct, true
}

// cacheSource serves the last-known-good price. The cache holds prices
// only, so it never answers for change.
type cacheSource struct {
	cache *pricecache.Cache
}

func (cacheSource) name() string { return SourceCache }

func (s cacheSource) price(ctx context.Context, req *request) (float64, bool) {
	if s.cache == nil {
		return 0, false
	}
	return s.cache.Get(ctx, req.symbol)
}

func (cacheSource) change(context.Context, *request) (float64, bool) {
	return 0, false
}

// fallbackSource serves the static price table. It is terminal for
// change: when no live tier answered, the change is reported as zero.
type fallbackSource struct {
	table map[string]float64
}

func (fallbackSource) name() string { return SourceFallback }

func (s fallbackSource) price(_ context.Context, req *request) (float64, bool) {
	p, ok := s.table[req.symbol]
	if !ok || !validPrice(p) {
		return 0, false
	}
	return p, true
}

func (fallbackSource) change(context.Context, *request) (float64, bool) {
	return 0, true
}

// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"

	"github.com/folioapp/folio/internal/models"
)

// QuoteClient fetches live quotes and historical series from a
// market-data provider. Implementations own the wire format; the core
// only consumes the normalized models.
type QuoteClient interface {
	// FetchQuote returns the current quote for a symbol.
	// A non-nil quote may still carry a zero or non-finite price —
	// the resolver treats those as failures, not the client.
	FetchQuote(ctx context.Context, symbol string) (*models.Quote, error)

	// FetchSeries returns an OHLC series for a symbol, chronological
	// ascending. rangeSpec is provider-defined (e.g. "1m", "1y").
	FetchSeries(ctx context.Context, symbol, rangeSpec string) ([]models.Candle, error)
}

// HoldingsProvider supplies the read-only position list.
// A missing/invalid provider is a configuration error — the one fatal
// condition in the engine.
type HoldingsProvider interface {
	Holdings(ctx context.Context) ([]models.Holding, error)
}

package analytics

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folioapp/folio/internal/common"
	"github.com/folioapp/folio/internal/models"
)

// memStore is an in-memory KVStore for tests.
type memStore struct {
	data map[string]string
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *memStore) Close() error { return nil }

// stubHoldings returns a fixed position list.
type stubHoldings struct {
	holdings []models.Holding
	err      error
}

func (s *stubHoldings) Holdings(context.Context) ([]models.Holding, error) {
	return s.holdings, s.err
}

// stubPrices applies a fixed price map in place of live resolution.
type stubPrices struct {
	prices map[string]float64
}

func (s *stubPrices) ResolveHolding(_ context.Context, h models.Holding) models.ResolvedQuote {
	p, ok := s.prices[h.NormalizedSymbol()]
	return models.ResolvedQuote{Symbol: h.NormalizedSymbol(), Price: p, Known: ok}
}

func (s *stubPrices) ResolveSymbol(_ context.Context, symbol string) models.ResolvedQuote {
	p, ok := s.prices[symbol]
	return models.ResolvedQuote{Symbol: symbol, Price: p, Known: ok}
}

func (s *stubPrices) RefreshHoldings(_ context.Context, holdings []models.Holding) []models.Holding {
	out := make([]models.Holding, len(holdings))
	copy(out, holdings)
	for i := range out {
		if p, ok := s.prices[out[i].NormalizedSymbol()]; ok {
			out[i].CurrentPrice = p
		}
	}
	return out
}

func newTestService(store *memStore, holdings []models.Holding, prices map[string]float64, opts ...Option) *Service {
	logger := common.NewSilentLogger()
	return NewService(
		&stubHoldings{holdings: holdings},
		&stubPrices{prices: prices},
		NewHistory(store, logger),
		logger,
		opts...,
	)
}

func TestService_Report(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemStore(),
		[]models.Holding{
			{Symbol: "BTC", Quantity: 0.5, AveragePrice: 40000},
			{Symbol: "ETH", Quantity: 10, AveragePrice: 2000},
		},
		map[string]float64{"BTC": 60000, "ETH": 3000},
	)

	report, err := svc.Report(ctx)
	require.NoError(t, err)

	assert.Equal(t, 60000.0, report.TotalValue) // 30000 + 30000
	assert.Equal(t, 40000.0, report.CostBasis)
	assert.Equal(t, 20000.0, report.Metrics.CapitalGains)
	require.NotNil(t, report.Allocation)
	assert.InDelta(t, 0.5, report.Allocation.HHI, 1e-9)
	assert.Len(t, report.Holdings, 2)
	assert.Empty(t, report.History)
	// No recorded history yet, so time-series ratios are undefined
	assert.Nil(t, report.Metrics.CAGR)
}

func TestService_HoldingsErrorPropagates(t *testing.T) {
	logger := common.NewSilentLogger()
	svc := NewService(
		&stubHoldings{err: errors.New("file missing")},
		&stubPrices{},
		NewHistory(newMemStore(), logger),
		logger,
	)

	_, err := svc.Report(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load holdings")

	assert.Error(t, svc.RecordValue(context.Background()))
}

func TestService_RecordValueBuildsHistory(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	current := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := newTestService(store,
		[]models.Holding{{Symbol: "BTC", Quantity: 1, AveragePrice: 50000}},
		map[string]float64{"BTC": 60000},
		WithClock(func() time.Time { return current }),
	)

	require.NoError(t, svc.RecordValue(ctx))
	current = current.Add(24 * time.Hour)
	require.NoError(t, svc.RecordValue(ctx))

	report, err := svc.Report(ctx)
	require.NoError(t, err)
	require.Len(t, report.History, 2)
	assert.Equal(t, 60000.0, report.History[0].Value)

	// A flat two-point history yields a defined, zero CAGR
	require.NotNil(t, report.Metrics.CAGR)
	assert.InDelta(t, 0.0, *report.Metrics.CAGR, 1e-9)

	// The cost-basis return survives the flat series (which alone would
	// report zero)
	assert.Equal(t, 10000.0, report.Metrics.TotalReturn)
	assert.InDelta(t, 20.0, report.Metrics.TotalReturnPct, 1e-9)
}

func TestService_RenderChart(t *testing.T) {
	ctx := context.Background()
	logger := common.NewSilentLogger()
	current := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	prices := &stubPrices{prices: map[string]float64{"BTC": 60000}}
	svc := NewService(
		&stubHoldings{holdings: []models.Holding{{Symbol: "BTC", Quantity: 1, AveragePrice: 50000}}},
		prices,
		NewHistory(newMemStore(), logger),
		logger,
		WithClock(func() time.Time { return current }),
	)

	// Too little history to chart
	_, err := svc.RenderChart(ctx)
	require.Error(t, err)

	require.NoError(t, svc.RecordValue(ctx))
	current = current.Add(24 * time.Hour)
	prices.prices["BTC"] = 63000
	require.NoError(t, svc.RecordValue(ctx))
	current = current.Add(24 * time.Hour)
	prices.prices["BTC"] = 58000
	require.NoError(t, svc.RecordValue(ctx))

	png, err := svc.RenderChart(ctx)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

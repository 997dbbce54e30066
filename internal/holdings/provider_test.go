package holdings

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folioapp/folio/internal/common"
)

func TestProvider_InlineConfig(t *testing.T) {
	p := NewProvider(common.PortfolioConfig{
		Holdings: []common.HoldingConfig{
			{Symbol: "BTC", Quantity: 0.5, AveragePrice: 40000},
			{Symbol: "VAS", Quantity: 100, AveragePrice: 90, AnnualDividendIncome: 400},
		},
	}, common.NewSilentLogger())

	holdings, err := p.Holdings(context.Background())
	require.NoError(t, err)
	require.Len(t, holdings, 2)
	assert.Equal(t, "BTC", holdings[0].Symbol)
	assert.Equal(t, 400.0, holdings[1].AnnualDividendIncome)
}

func TestProvider_FileOverridesInline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holdings.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"symbol":"ETH","quantity":10,"average_price":2000}
	]`), 0o644))

	p := NewProvider(common.PortfolioConfig{
		HoldingsFile: path,
		Holdings:     []common.HoldingConfig{{Symbol: "BTC", Quantity: 1}},
	}, common.NewSilentLogger())

	holdings, err := p.Holdings(context.Background())
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "ETH", holdings[0].Symbol)
}

func TestProvider_MissingFileIsFatal(t *testing.T) {
	p := NewProvider(common.PortfolioConfig{HoldingsFile: "/nonexistent/holdings.json"}, common.NewSilentLogger())
	_, err := p.Holdings(context.Background())
	require.Error(t, err)
}

func TestProvider_InvalidJSONIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holdings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	p := NewProvider(common.PortfolioConfig{HoldingsFile: path}, common.NewSilentLogger())
	_, err := p.Holdings(context.Background())
	require.Error(t, err)
}

func TestProvider_RejectsSymbollessHolding(t *testing.T) {
	p := NewProvider(common.PortfolioConfig{
		Holdings: []common.HoldingConfig{{Symbol: "  ", Quantity: 1}},
	}, common.NewSilentLogger())

	_, err := p.Holdings(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no symbol")
}

func TestProvider_EmptyConfigYieldsEmptyList(t *testing.T) {
	p := NewProvider(common.PortfolioConfig{}, common.NewSilentLogger())
	holdings, err := p.Holdings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, holdings)
}

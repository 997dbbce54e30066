package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote/BTC", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_token"))
		w.Write([]byte(`{"symbol":"BTC","price":"60123.45","change_pct":2.1,"currency":"USD","timestamp":1767225600}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	q, err := c.FetchQuote(context.Background(), "btc")
	require.NoError(t, err)

	assert.Equal(t, "BTC", q.Symbol)
	// String-encoded numbers parse the same as bare ones
	assert.Equal(t, 60123.45, q.Price)
	assert.Equal(t, 2.1, q.ChangePct)
	assert.Equal(t, "USD", q.Currency)
	assert.Equal(t, 2026, q.Timestamp.Year())
}

func TestFetchQuote_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := c.FetchQuote(context.Background(), "BTC")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestFetchQuote_EmptySymbol(t *testing.T) {
	c := NewClient("test-key")
	_, err := c.FetchQuote(context.Background(), "  ")
	require.Error(t, err)
}

func TestFetchSeries_SortsAscendingAndSkipsBadDates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/history/ETH", r.URL.Path)
		assert.Equal(t, "1m", r.URL.Query().Get("range"))
		w.Write([]byte(`[
			{"date":"2026-01-03","open":105,"high":106,"low":104,"close":105.5,"volume":900},
			{"date":"2026-01-01","open":100,"high":101,"low":99,"close":100.5,"volume":1000},
			{"date":"not-a-date","close":999},
			{"date":"2026-01-02","open":102,"high":103,"low":101,"close":"102.5","volume":1100}
		]`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	candles, err := c.FetchSeries(context.Background(), "eth", "1m")
	require.NoError(t, err)

	require.Len(t, candles, 3)
	assert.Equal(t, 100.5, candles[0].Close)
	assert.Equal(t, 102.5, candles[1].Close)
	assert.Equal(t, 105.5, candles[2].Close)
	assert.True(t, candles[0].Timestamp.Before(candles[1].Timestamp))
}

func TestFetchSeries_ContextCancelled(t *testing.T) {
	c := NewClient("test-key", WithBaseURL("http://127.0.0.1:0"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchSeries(ctx, "BTC", "1y")
	require.Error(t, err)
}

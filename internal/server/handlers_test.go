package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folioapp/folio/internal/app"
	"github.com/folioapp/folio/internal/common"
	"github.com/folioapp/folio/internal/models"
)

type stubPriceService struct {
	resolved models.ResolvedQuote
}

func (s *stubPriceService) ResolveHolding(_ context.Context, h models.Holding) models.ResolvedQuote {
	return s.resolved
}

func (s *stubPriceService) ResolveSymbol(_ context.Context, symbol string) models.ResolvedQuote {
	out := s.resolved
	out.Symbol = symbol
	return out
}

func (s *stubPriceService) RefreshHoldings(_ context.Context, holdings []models.Holding) []models.Holding {
	return holdings
}

type stubIndicatorService struct {
	ind *models.TechnicalIndicators
	err error
}

func (s *stubIndicatorService) ComputeIndicators(context.Context, string, string) (*models.TechnicalIndicators, error) {
	return s.ind, s.err
}

type stubAnalyticsService struct {
	report *models.PortfolioReport
	png    []byte
	err    error
}

func (s *stubAnalyticsService) Report(context.Context) (*models.PortfolioReport, error) {
	return s.report, s.err
}

func (s *stubAnalyticsService) RecordValue(context.Context) error { return s.err }

func (s *stubAnalyticsService) RenderChart(context.Context) ([]byte, error) {
	return s.png, s.err
}

func newTestServer(prices *stubPriceService, indicators *stubIndicatorService, analytics *stubAnalyticsService) *Server {
	a := &app.App{
		Config:           common.NewDefaultConfig(),
		Logger:           common.NewSilentLogger(),
		PriceService:     prices,
		IndicatorService: indicators,
		AnalyticsService: analytics,
	}
	return NewServer(a)
}

func doRequest(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(&stubPriceService{}, &stubIndicatorService{}, &stubAnalyticsService{})

	rec := doRequest(t, s, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
}

func TestHandleVersion(t *testing.T) {
	s := newTestServer(&stubPriceService{}, &stubIndicatorService{}, &stubAnalyticsService{})

	rec := doRequest(t, s, http.MethodGet, "/api/version")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "version")
}

func TestHandleQuote(t *testing.T) {
	s := newTestServer(&stubPriceService{resolved: models.ResolvedQuote{
		Price:       60000,
		PriceSource: "market",
		Known:       true,
	}}, &stubIndicatorService{}, &stubAnalyticsService{})

	rec := doRequest(t, s, http.MethodGet, "/api/quote/BTC")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resolved models.ResolvedQuote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resolved))
	assert.Equal(t, "BTC", resolved.Symbol)
	assert.Equal(t, 60000.0, resolved.Price)
	assert.True(t, resolved.Known)
}

func TestHandleQuote_UnknownSymbolStillOK(t *testing.T) {
	s := newTestServer(&stubPriceService{resolved: models.ResolvedQuote{Known: false}}, &stubIndicatorService{}, &stubAnalyticsService{})

	rec := doRequest(t, s, http.MethodGet, "/api/quote/NOPE")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"known":false`)
}

func TestHandleQuote_MissingSymbol(t *testing.T) {
	s := newTestServer(&stubPriceService{}, &stubIndicatorService{}, &stubAnalyticsService{})
	rec := doRequest(t, s, http.MethodGet, "/api/quote/")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleQuote_MethodNotAllowed(t *testing.T) {
	s := newTestServer(&stubPriceService{}, &stubIndicatorService{}, &stubAnalyticsService{})
	rec := doRequest(t, s, http.MethodPost, "/api/quote/BTC")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleIndicators(t *testing.T) {
	rsi := 65.0
	s := newTestServer(&stubPriceService{}, &stubIndicatorService{ind: &models.TechnicalIndicators{
		Symbol: "AAPL",
		Bars:   250,
		RSI:    &rsi,
	}}, &stubAnalyticsService{})

	rec := doRequest(t, s, http.MethodGet, "/api/indicators/AAPL?range=1y")
	assert.Equal(t, http.StatusOK, rec.Code)

	var ind models.TechnicalIndicators
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ind))
	assert.Equal(t, 250, ind.Bars)
	require.NotNil(t, ind.RSI)
	assert.Equal(t, 65.0, *ind.RSI)
}

func TestHandleIndicators_UpstreamError(t *testing.T) {
	s := newTestServer(&stubPriceService{}, &stubIndicatorService{err: errors.New("upstream down")}, &stubAnalyticsService{})

	rec := doRequest(t, s, http.MethodGet, "/api/indicators/AAPL")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandlePortfolioReport(t *testing.T) {
	s := newTestServer(&stubPriceService{}, &stubIndicatorService{}, &stubAnalyticsService{report: &models.PortfolioReport{
		GeneratedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		TotalValue:  60000,
	}})

	rec := doRequest(t, s, http.MethodGet, "/api/portfolio/report")
	assert.Equal(t, http.StatusOK, rec.Code)

	var report models.PortfolioReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 60000.0, report.TotalValue)
}

func TestHandlePortfolioReport_Error(t *testing.T) {
	s := newTestServer(&stubPriceService{}, &stubIndicatorService{}, &stubAnalyticsService{err: errors.New("holdings missing")})

	rec := doRequest(t, s, http.MethodGet, "/api/portfolio/report")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandlePortfolioChart(t *testing.T) {
	s := newTestServer(&stubPriceService{}, &stubIndicatorService{}, &stubAnalyticsService{png: []byte("\x89PNGfake")})

	rec := doRequest(t, s, http.MethodGet, "/api/portfolio/chart.png")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
}

func TestHandlePortfolioChart_TooLittleHistory(t *testing.T) {
	s := newTestServer(&stubPriceService{}, &stubIndicatorService{}, &stubAnalyticsService{err: errors.New("need at least 2 data points")})

	rec := doRequest(t, s, http.MethodGet, "/api/portfolio/chart.png")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	s := newTestServer(&stubPriceService{}, &stubIndicatorService{}, &stubAnalyticsService{})

	rec := doRequest(t, s, http.MethodOptions, "/api/health")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

// Package marketdata provides the HTTP client for the market-data API.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/folioapp/folio/internal/common"
	"github.com/folioapp/folio/internal/interfaces"
	"github.com/folioapp/folio/internal/models"
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

const (
	DefaultBaseURL   = "https://api.folio.dev/v1"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// Client is a rate-limited market-data API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

var _ interfaces.QuoteClient = (*Client)(nil)

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a market-data client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an upstream API error.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("market API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Market API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// quoteResponse is the wire format of /quote/{symbol}.
type quoteResponse struct {
	Symbol    string      `json:"symbol"`
	Price     flexFloat64 `json:"price"`
	ChangePct flexFloat64 `json:"change_pct"`
	Currency  string      `json:"currency"`
	Timestamp int64       `json:"timestamp"` // epoch seconds
}

// FetchQuote returns the current quote for a symbol.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	var resp quoteResponse
	if err := c.get(ctx, "/quote/"+url.PathEscape(symbol), nil, &resp); err != nil {
		return nil, err
	}

	ts := time.Now().UTC()
	if resp.Timestamp > 0 {
		ts = time.Unix(resp.Timestamp, 0).UTC()
	}

	return &models.Quote{
		Symbol:    symbol,
		Price:     float64(resp.Price),
		ChangePct: float64(resp.ChangePct),
		Currency:  resp.Currency,
		Timestamp: ts,
		Source:    "market",
	}, nil
}

// barResponse is the wire format of one /history bar.
type barResponse struct {
	Date   string      `json:"date"` // YYYY-MM-DD
	Open   flexFloat64 `json:"open"`
	High   flexFloat64 `json:"high"`
	Low    flexFloat64 `json:"low"`
	Close  flexFloat64 `json:"close"`
	Volume int64       `json:"volume"`
}

// FetchSeries returns an OHLC series for a symbol, chronological
// ascending regardless of the order the API delivered it in.
func (c *Client) FetchSeries(ctx context.Context, symbol, rangeSpec string) ([]models.Candle, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	params := url.Values{}
	if rangeSpec != "" {
		params.Set("range", rangeSpec)
	}

	var resp []barResponse
	if err := c.get(ctx, "/history/"+url.PathEscape(symbol), params, &resp); err != nil {
		return nil, err
	}

	candles := make([]models.Candle, 0, len(resp))
	for _, bar := range resp {
		ts, err := time.Parse("2006-01-02", bar.Date)
		if err != nil {
			c.logger.Debug().Str("symbol", symbol).Str("date", bar.Date).Msg("Skipping bar with unparseable date")
			continue
		}
		candles = append(candles, models.Candle{
			Timestamp: ts,
			Open:      float64(bar.Open),
			High:      float64(bar.High),
			Low:       float64(bar.Low),
			Close:     float64(bar.Close),
			Volume:    bar.Volume,
		})
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})
	return candles, nil
}

// Package schwab provides a client for the Schwab market-data and trader APIs
package schwab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/omercanyy/investrack/internal/common"
	"github.com/omercanyy/investrack/internal/interfaces"
	"github.com/omercanyy/investrack/internal/models"
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
	DefaultBaseURL   = "https://api.schwabapi.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// TokenSource supplies a bearer token for API requests. Token acquisition
// and refresh live behind this contract; Invalidate discards any cached
// token so the next Token call fetches a fresh one.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}

// EnvTokenSource resolves the token from the environment on every call.
type EnvTokenSource struct{}

func (EnvTokenSource) Token(_ context.Context) (string, error) {
	return common.ResolveAccessToken()
}

func (EnvTokenSource) Invalidate() {}

// Client implements the MarketDataClient interface against the Schwab API.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
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

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new Schwab client with the given token source.
func NewClient(tokens TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		tokens:  tokens,
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

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Schwab API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request. A 401 invalidates the cached
// token and retries once with a fresh one.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := c.doGet(ctx, path, params)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		c.tokens.Invalidate()
		c.logger.Debug().Str("endpoint", path).Msg("Schwab token rejected, retrying with fresh token")
		resp, err = c.doGet(ctx, path, params)
		if err != nil {
			return err
		}
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

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func (c *Client) doGet(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve access token: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Schwab API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	return resp, nil
}

// quoteResponse represents one symbol's entry in the quotes response.
type quoteResponse struct {
	Quote struct {
		LastPrice         float64 `json:"lastPrice"`
		LastPriceInDouble float64 `json:"lastPriceInDouble"`
	} `json:"quote"`
	Extended struct {
		ExtendedHours bool    `json:"extendedHours"`
		LastPrice     float64 `json:"lastPrice"`
	} `json:"extended"`
}

// GetQuotes retrieves last-trade prices for the given tickers. During
// extended hours the extended-session price wins over the regular close.
func (c *Client) GetQuotes(ctx context.Context, tickers []string) (map[string]float64, error) {
	prices := make(map[string]float64)
	if len(tickers) == 0 {
		return prices, nil
	}

	params := url.Values{}
	params.Set("symbols", strings.Join(tickers, ","))
	params.Set("fields", "quote,extended")

	var resp map[string]quoteResponse
	if err := c.get(ctx, "/marketdata/v1/quotes", params, &resp); err != nil {
		return nil, err
	}

	for ticker, q := range resp {
		price := q.Quote.LastPrice
		if price == 0 {
			price = q.Quote.LastPriceInDouble
		}
		if q.Extended.ExtendedHours && q.Extended.LastPrice != 0 {
			price = q.Extended.LastPrice
		}
		if price != 0 {
			prices[ticker] = price
		}
	}

	c.logger.Debug().Int("requested", len(tickers)).Int("quoted", len(prices)).Msg("Schwab quotes fetched")
	return prices, nil
}

// instrumentsResponse represents the fundamental-projection instruments response.
type instrumentsResponse struct {
	Instruments []struct {
		Symbol      string `json:"symbol"`
		Fundamental struct {
			Beta flexFloat64 `json:"beta"`
		} `json:"fundamental"`
	} `json:"instruments"`
}

// GetBetas retrieves betas for the given tickers. Tickers the feed has no
// fundamental data for are absent from the result.
func (c *Client) GetBetas(ctx context.Context, tickers []string) (map[string]float64, error) {
	betas := make(map[string]float64)
	if len(tickers) == 0 {
		return betas, nil
	}

	params := url.Values{}
	params.Set("symbol", strings.Join(tickers, ","))
	params.Set("projection", "fundamental")

	var resp instrumentsResponse
	if err := c.get(ctx, "/marketdata/v1/instruments", params, &resp); err != nil {
		return nil, err
	}

	for _, inst := range resp.Instruments {
		if inst.Symbol == "" {
			continue
		}
		betas[inst.Symbol] = float64(inst.Fundamental.Beta)
	}

	return betas, nil
}

// accountResponse represents one entry of the trader accounts response.
type accountResponse struct {
	SecuritiesAccount struct {
		AccountNumber   string `json:"accountNumber"`
		CurrentBalances struct {
			CashAvailableForTrading flexFloat64 `json:"cashAvailableForTrading"`
		} `json:"currentBalances"`
	} `json:"securitiesAccount"`
}

// GetAvailableCash returns cash available for trading keyed by account number.
func (c *Client) GetAvailableCash(ctx context.Context) (map[string]float64, error) {
	var resp []accountResponse
	if err := c.get(ctx, "/trader/v1/accounts", nil, &resp); err != nil {
		return nil, err
	}

	cash := make(map[string]float64)
	for _, acct := range resp {
		num := acct.SecuritiesAccount.AccountNumber
		if num == "" {
			continue
		}
		cash[num] = float64(acct.SecuritiesAccount.CurrentBalances.CashAvailableForTrading)
	}

	return cash, nil
}

// priceHistoryResponse represents the pricehistory response.
type priceHistoryResponse struct {
	Symbol  string `json:"symbol"`
	Empty   bool   `json:"empty"`
	Candles []struct {
		Datetime int64   `json:"datetime"` // epoch milliseconds
		Close    float64 `json:"close"`
	} `json:"candles"`
}

// GetPriceHistory retrieves daily candles for ticker from the given start
// date through today, ascending by date.
func (c *Client) GetPriceHistory(ctx context.Context, ticker string, from time.Time) ([]models.Candle, error) {
	params := url.Values{}
	params.Set("symbol", ticker)
	params.Set("periodType", "year")
	params.Set("frequencyType", "daily")
	params.Set("frequency", "1")
	params.Set("startDate", strconv.FormatInt(from.UnixMilli(), 10))
	params.Set("endDate", strconv.FormatInt(time.Now().UnixMilli(), 10))

	var resp priceHistoryResponse
	if err := c.get(ctx, "/marketdata/v1/pricehistory", params, &resp); err != nil {
		return nil, err
	}

	if resp.Empty {
		return nil, nil
	}

	candles := make([]models.Candle, len(resp.Candles))
	for i, bar := range resp.Candles {
		candles[i] = models.Candle{
			Datetime: time.UnixMilli(bar.Datetime).UTC(),
			Close:    bar.Close,
		}
	}

	c.logger.Debug().Str("ticker", ticker).Int("candles", len(candles)).Msg("Schwab price history fetched")
	return candles, nil
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)

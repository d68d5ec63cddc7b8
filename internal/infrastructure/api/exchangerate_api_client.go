// Package api implements the ExchangeRate-API adapter used as the rate source
// and currency repository
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/damon-houk/money-calculator/internal/domain/entity"
	"github.com/damon-houk/money-calculator/internal/domain/repository"
	"github.com/damon-houk/money-calculator/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
)

const (
	// DefaultBaseURL is the public ExchangeRate-API endpoint
	DefaultBaseURL = "https://v6.exchangerate-api.com"

	apiVersion        = "v6"
	resultSuccess     = "success"
	defaultTimeout    = 10 * time.Second
	defaultMaxRetries = 3
)

// ErrInvalidClientConfig is returned for a missing base URL or API key
var ErrInvalidClientConfig = errors.New("invalid exchange rate api configuration")

var (
	_ repository.ExchangeRateProvider = (*ExchangeRateAPIClient)(nil)
	_ repository.CurrencyRepository   = (*ExchangeRateAPIClient)(nil)
)

// ClientConfig configures the ExchangeRate-API client
type ClientConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	// RetryBackoff returns the wait before the given retry attempt;
	// nil means attempt*attempt seconds.
	RetryBackoff func(attempt int) time.Duration
	HTTPClient   *http.Client
}

// ExchangeRateAPIClient talks to the ExchangeRate-API v6 REST endpoints
type ExchangeRateAPIClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	backoff    func(attempt int) time.Duration
	logger     logger.Logger

	currenciesMu sync.RWMutex
	currencies   []entity.Currency
}

type pairResponse struct {
	Result             string              `json:"result"`
	ErrorType          string              `json:"error-type"`
	TimeLastUpdateUnix int64               `json:"time_last_update_unix"`
	BaseCode           string              `json:"base_code"`
	TargetCode         string              `json:"target_code"`
	ConversionRate     decimal.NullDecimal `json:"conversion_rate"`
}

type codesResponse struct {
	Result         string     `json:"result"`
	ErrorType      string     `json:"error-type"`
	SupportedCodes [][]string `json:"supported_codes"`
}

// NewExchangeRateAPIClient creates a new ExchangeRate-API client
func NewExchangeRateAPIClient(cfg ClientConfig, log logger.Logger) (*ExchangeRateAPIClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: base URL cannot be empty", ErrInvalidClientConfig)
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key cannot be empty", ErrInvalidClientConfig)
	}

	if log == nil {
		log = logger.GetDefaultLogger()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	backoff := cfg.RetryBackoff
	if backoff == nil {
		backoff = func(attempt int) time.Duration {
			return time.Duration(attempt*attempt) * time.Second
		}
	}

	return &ExchangeRateAPIClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		maxRetries: maxRetries,
		backoff:    backoff,
		logger:     log.WithField("component", "exchangerate_api"),
	}, nil
}

// GetRate fetches the latest conversion rate for the pair. Every failure
// wraps entity.ErrRateUnavailable.
func (c *ExchangeRateAPIClient) GetRate(ctx context.Context, from, to entity.Currency) (*entity.ExchangeRate, error) {
	path := fmt.Sprintf("pair/%s/%s", url.PathEscape(from.Code), url.PathEscape(to.Code))

	body, status, err := c.get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrRateUnavailable, err)
	}

	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: API request failed with status: %d", entity.ErrRateUnavailable, status)
	}

	var resp pairResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", entity.ErrRateUnavailable, err)
	}

	if resp.Result != resultSuccess {
		return nil, fmt.Errorf("%w: API returned unsuccessful result: %s (%s)",
			entity.ErrRateUnavailable, resp.Result, resp.ErrorType)
	}

	if !resp.ConversionRate.Valid {
		return nil, fmt.Errorf("%w: API response missing conversion_rate field", entity.ErrRateUnavailable)
	}

	rate, err := entity.NewExchangeRate(rateDate(resp.TimeLastUpdateUnix, time.Now()), from, to, resp.ConversionRate.Decimal)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrRateUnavailable, err)
	}

	c.logger.Debug("Exchange rate fetched", map[string]interface{}{
		"from": from.Code,
		"to":   to.Code,
		"rate": rate.Rate.String(),
		"date": rate.Date.Format("2006-01-02"),
	})

	return rate, nil
}

// rateDate returns the UTC calendar date of the upstream update, never
// later than today. A missing timestamp means today.
func rateDate(unix int64, now time.Time) time.Time {
	today := now.UTC().Truncate(24 * time.Hour)
	if unix <= 0 {
		return today
	}

	date := time.Unix(unix, 0).UTC().Truncate(24 * time.Hour)
	if date.After(today) {
		return today
	}
	return date
}

// FindAll returns the supported currencies. The list is fetched once and
// reused for the lifetime of the client; the fetch runs outside the lock
// so lookups are not queued behind a slow upstream.
func (c *ExchangeRateAPIClient) FindAll(ctx context.Context) ([]entity.Currency, error) {
	if cached := c.cachedCurrencies(); cached != nil {
		return cached, nil
	}

	currencies, err := c.fetchCurrencies(ctx)
	if err != nil {
		return nil, err
	}

	c.currenciesMu.Lock()
	if c.currencies == nil {
		c.currencies = currencies
	}
	c.currenciesMu.Unlock()

	return c.cachedCurrencies(), nil
}

func (c *ExchangeRateAPIClient) cachedCurrencies() []entity.Currency {
	c.currenciesMu.RLock()
	defer c.currenciesMu.RUnlock()

	if c.currencies == nil {
		return nil
	}

	out := make([]entity.Currency, len(c.currencies))
	copy(out, c.currencies)
	return out
}

// FindByCode looks up a supported currency by its ISO code
func (c *ExchangeRateAPIClient) FindByCode(ctx context.Context, code string) (*entity.Currency, error) {
	normalized, err := entity.NormalizeCode(code)
	if err != nil {
		return nil, err
	}

	currencies, err := c.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	for i := range currencies {
		if currencies[i].Code == normalized {
			return &currencies[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %s", entity.ErrCurrencyNotFound, normalized)
}

func (c *ExchangeRateAPIClient) fetchCurrencies(ctx context.Context) ([]entity.Currency, error) {
	body, status, err := c.get(ctx, "codes")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrCurrencyListFailed, err)
	}

	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: failed to fetch currencies, status: %d", entity.ErrCurrencyListFailed, status)
	}

	var resp codesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", entity.ErrCurrencyListFailed, err)
	}

	if resp.Result != resultSuccess {
		return nil, fmt.Errorf("%w: API returned unsuccessful result: %s (%s)",
			entity.ErrCurrencyListFailed, resp.Result, resp.ErrorType)
	}

	if resp.SupportedCodes == nil {
		return nil, fmt.Errorf("%w: API response missing supported_codes field", entity.ErrCurrencyListFailed)
	}

	currencies := make([]entity.Currency, 0, len(resp.SupportedCodes))
	for _, pair := range resp.SupportedCodes {
		if len(pair) < 2 {
			continue
		}

		currency, err := entity.NewCurrency(pair[0], pair[1])
		if err != nil {
			c.logger.Warn("Skipping invalid currency", map[string]interface{}{
				"code":  pair[0],
				"error": err.Error(),
			})
			continue
		}
		currencies = append(currencies, currency)
	}

	c.logger.Info("Currencies loaded", map[string]interface{}{
		"count": len(currencies),
	})

	return currencies, nil
}

// get performs a GET against {base}/v6/{key}/{path}, retrying transport
// errors with backoff. The request URL embeds the API key, so it never
// appears in returned errors or logs.
func (c *ExchangeRateAPIClient) get(ctx context.Context, path string) ([]byte, int, error) {
	reqURL := fmt.Sprintf("%s/%s/%s/%s", c.baseURL, apiVersion, url.PathEscape(c.apiKey), path)

	var (
		resp *http.Response
		err  error
	)

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		var req *http.Request
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to create request: %w", redactURL(err))
		}
		req.Header.Add("Accept", "application/json")

		resp, err = c.httpClient.Do(req)
		if err == nil {
			break
		}
		err = redactURL(err)

		if attempt == c.maxRetries || ctx.Err() != nil {
			break
		}

		wait := c.backoff(attempt)
		c.logger.Warn("Request failed, retrying", map[string]interface{}{
			"path":        path,
			"attempt":     attempt,
			"max_retries": c.maxRetries,
			"retry_in":    wait.String(),
			"error":       err.Error(),
		})

		select {
		case <-ctx.Done():
			return nil, 0, fmt.Errorf("request cancelled: %w", ctx.Err())
		case <-time.After(wait):
		}
	}

	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute request after retries: %w", err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Error closing response body", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("ExchangeRate-API response", map[string]interface{}{
		"path":   path,
		"status": resp.StatusCode,
	})

	return body, resp.StatusCode, nil
}

// redactURL drops the request URL, which carries the API key, from a
// transport error while keeping its cause for errors.Is
func redactURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s request failed: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

package privatbank

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"rates_go/internal/domain"
	"rates_go/internal/infra"
)

const maxBodyBytes = 4 << 20

// Client fetches archived PrivatBank exchange rates, one date per request.
// A single Client (and its http.Client) is shared by all concurrent fetches.
type Client struct {
	apiURL     string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	logger     *slog.Logger
}

// NewClient creates a client for the public archive endpoint
func NewClient() *Client {
	// Optimize HTTP Transport: one burst of up to MaxDays requests to a single host
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 100
	transport.MaxIdleConnsPerHost = domain.MaxDays
	transport.IdleConnTimeout = 30 * time.Second

	return &Client{
		apiURL: infra.DefaultPrivatBankURL,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		maxRetries: 2,
		baseDelay:  infra.DefaultBaseDelay,
		maxDelay:   infra.DefaultMaxDelay,
		logger:     slog.Default().With("module", "privatbank"),
	}
}

// NewClientWithConfig creates a client with custom configuration
func NewClientWithConfig(apiURL string, maxRetries int) *Client {
	client := NewClient()
	if apiURL != "" {
		client.apiURL = apiURL
	}
	if maxRetries >= 0 {
		client.maxRetries = maxRetries
	}
	return client
}

// FetchDay returns every quote PrivatBank published for date.
// Transport failures, 429 and 5xx are retried with exponential backoff.
func (c *Client) FetchDay(ctx context.Context, date domain.DateKey) ([]domain.QuotedRate, error) {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			delay := infra.CalculateBackoff(i-1, c.baseDelay, c.maxDelay)
			c.logger.Info("Retrying rate fetch",
				slog.String("date", date.String()),
				slog.Int("attempt", i),
				slog.Duration("delay", delay),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		quotes, err := c.doFetch(ctx, date)
		if err == nil {
			return quotes, nil
		}
		lastErr = err
		if !domain.IsRetriable(err) || ctx.Err() != nil {
			break
		}
		c.logger.Warn("Rate fetch attempt failed",
			slog.String("date", date.String()),
			slog.Int("attempt", i+1),
			slog.Any("error", err),
		)
	}
	return nil, lastErr
}

func (c *Client) doFetch(ctx context.Context, date domain.DateKey) ([]domain.QuotedRate, error) {
	reqURL, err := c.requestURL(date)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", infra.DefaultUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, domain.NewFatalNetworkError("fetch "+date.String(), err)
		}
		return nil, domain.NewNetworkError("fetch "+date.String(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// drain so the connection can be reused
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &domain.RemoteError{Date: date, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, domain.NewNetworkError("read "+date.String(), err)
	}

	var data archiveResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode rates for %s: %w", date, err)
	}
	if data.ExchangeRate == nil {
		return nil, fmt.Errorf("%s: %w", date, domain.ErrEmptyResponse)
	}

	return data.toQuotes(), nil
}

// requestURL appends ?json&date=DD.MM.YYYY to the configured endpoint.
func (c *Client) requestURL(date domain.DateKey) (string, error) {
	u, err := url.Parse(c.apiURL)
	if err != nil {
		return "", fmt.Errorf("invalid rate provider URL: %w", err)
	}
	q := u.Query()
	q.Set("json", "")
	q.Set("date", date.String())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

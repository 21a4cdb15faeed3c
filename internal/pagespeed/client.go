package pagespeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/nao1215/seoaudit/internal/model"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the PageSpeed Insights v5 endpoint.
const DefaultBaseURL = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"

var (
	// ErrMissingAPIKey is returned when the client is used without a key.
	ErrMissingAPIKey = errors.New("pagespeed API key is not set")

	// ErrAPI is returned when the API responds with a non-2xx status.
	ErrAPI = errors.New("pagespeed API error")
)

// Client queries PageSpeed Insights. Requests share one rate limiter, so a
// Client may be used from several goroutines.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client. Lighthouse runs are slow, so the
// default client waits up to 90 seconds.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(cl *Client) {
		cl.baseURL = u
	}
}

// WithRateLimit sets how many requests per second are sent.
func WithRateLimit(perSecond float64) Option {
	return func(cl *Client) {
		if perSecond > 0 {
			cl.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// New creates a Client. The default rate is 4 requests per second.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 90 * time.Second},
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Every(250*time.Millisecond), 1),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run measures a page with the given strategy.
func (c *Client) Run(ctx context.Context, pageURL string, strategy model.Strategy) (*model.CoreWebVitals, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if strategy == "" {
		strategy = model.StrategyMobile
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	q := url.Values{}
	q.Set("url", pageURL)
	q.Set("strategy", string(strategy))
	q.Set("category", "performance")
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The transport error includes the request URL and its key.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("pagespeed request for %s failed: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s", ErrAPI, apiErrorMessage(resp))
	}

	var result response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode pagespeed response: %w", err)
	}

	vitals := result.vitals(strategy)
	c.logger.Debug("pagespeed measured",
		"url", pageURL,
		"strategy", strategy,
		"field_data", vitals.FieldData,
		"elapsed", time.Since(start),
	)
	return vitals, nil
}

func apiErrorMessage(resp *http.Response) string {
	var body struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024)) //nolint:errcheck
	if err := json.Unmarshal(data, &body); err == nil && body.Error.Message != "" {
		return fmt.Sprintf("%d %s", resp.StatusCode, body.Error.Message)
	}
	return resp.Status
}

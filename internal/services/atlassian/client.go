package atlassian

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

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/ternarybob/ticketctx/internal/common"
	"github.com/ternarybob/ticketctx/internal/metrics"
	"github.com/ternarybob/ticketctx/internal/models"
)

const (
	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5

	serviceConfluence = "confluence"
	serviceJira       = "jira"
)

// Client is an authenticated Atlassian REST client shared by the Confluence
// and Jira services.
type Client struct {
	baseURL    string
	jiraURL    string
	username   string
	apiToken   string
	authType   string
	userAgent  string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
	metrics    *metrics.Metrics
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout of the default client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithMetrics records request counts and latency.
func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient validates the credentials and creates a client. Invalid credentials
// are reported as a configuration error before any request is made.
func NewClient(creds *models.Credentials, opts ...ClientOption) (*Client, error) {
	if creds == nil {
		return nil, common.Errorf(common.KindConfiguration, "atlassian.client", "credentials are required")
	}
	resolved := *creds
	if resolved.AuthType == "" {
		resolved.AuthType = "basic"
	}
	if err := validator.New().Struct(&resolved); err != nil {
		return nil, common.NewError(common.KindConfiguration, "atlassian.client", err)
	}

	c := &Client{
		baseURL:  normalizeSiteURL(resolved.BaseURL),
		jiraURL:  normalizeSiteURL(resolved.JiraURL),
		username: resolved.Username,
		apiToken: resolved.APIToken,
		authType: resolved.AuthType,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}
	if c.jiraURL == "" {
		c.jiraURL = c.baseURL
	}

	for _, opt := range opts {
		opt(c)
	}

	// Bearer tokens ride on an oauth2 transport; basic auth is set per request
	if c.authType == "bearer" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.httpClient)
		c.httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: c.apiToken,
			TokenType:   "Bearer",
		}))
	}

	return c, nil
}

// BaseURL returns the Confluence site URL without a trailing /wiki
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError represents a non-2xx response from an Atlassian API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("atlassian API error: %s (status %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs an authenticated GET and decodes the JSON response into result.
// Failures are returned as *common.Error: 404 is KindNotFound, everything else KindTransport.
func (c *Client) get(ctx context.Context, service, endpoint, rawURL string, params url.Values, result interface{}) error {
	op := service + "." + endpoint

	if err := c.limiter.Wait(ctx); err != nil {
		return common.Errorf(common.KindTransport, op, "rate limit wait: %w", err)
	}

	reqURL := rawURL
	if len(params) > 0 {
		reqURL = rawURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return common.Errorf(common.KindTransport, op, "failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.authType == "basic" {
		req.SetBasicAuth(c.username, c.apiToken)
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("service", service).
			Str("url", rawURL).
			Msg("Atlassian API request")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordAPIRequest(service, endpoint, "error", time.Since(start))
		return common.Errorf(common.KindTransport, op, "failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	c.metrics.RecordAPIRequest(service, endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   endpoint,
		}
		if resp.StatusCode == http.StatusNotFound {
			return common.NewError(common.KindNotFound, op, apiErr)
		}
		return common.NewError(common.KindTransport, op, apiErr)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return common.Errorf(common.KindTransport, op, "failed to decode response: %w", err)
	}

	return nil
}

// normalizeSiteURL trims trailing slashes and a trailing /wiki so API paths can be appended
func normalizeSiteURL(raw string) string {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	return strings.TrimSuffix(u, "/wiki")
}

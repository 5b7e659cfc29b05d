// Package crossref provides a client for the Crossref REST API work lookup.
package crossref

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/matsen/doibadge/internal/logging"
	"github.com/matsen/doibadge/internal/paper"
)

const (
	// BaseURL is the Crossref REST API base URL.
	BaseURL = "https://api.crossref.org"

	// DefaultTimeout bounds a single work lookup.
	DefaultTimeout = 10 * time.Second

	// RateLimit keeps us well inside the Crossref polite pool.
	RateLimit = 5.0

	// DefaultUserAgent is the product token sent before the contact address.
	DefaultUserAgent = "doibadge/1.0"
)

// Client is a rate-limited HTTP client for Crossref work lookups.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	mailto     string
	userAgent  string
	timeout    time.Duration
	log        *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithMailto sets the contact email sent in the User-Agent (Crossref polite pool).
func WithMailto(email string) ClientOption {
	return func(c *Client) {
		c.mailto = email
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRateLimit sets requests per second. Zero or less disables limiting.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithUserAgent sets the product token of the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a new Crossref client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
		userAgent:  DefaultUserAgent,
		timeout:    DefaultTimeout,
		log:        logging.Discard(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// userAgentHeader builds "product (mailto:email)".
func (c *Client) userAgentHeader() string {
	if c.mailto == "" {
		return c.userAgent
	}
	return fmt.Sprintf("%s (mailto:%s)", c.userAgent, c.mailto)
}

// FetchMetadata looks up a DOI and returns its bibliographic metadata.
//
// A non-success status or a body without a work record returns a *FetchError.
// Transport failures, including the request deadline, wrap both ErrNetworkError
// and the underlying error.
func (c *Client) FetchMetadata(ctx context.Context, doi string) (paper.Metadata, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return paper.Metadata{}, fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := c.baseURL + "/works/" + url.PathEscape(doi)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return paper.Metadata{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgentHeader())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return paper.Metadata{}, fmt.Errorf("%w: %w", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return paper.Metadata{}, &FetchError{DOI: doi, StatusCode: resp.StatusCode}
	}

	var body workResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return paper.Metadata{}, &FetchError{
			DOI:        doi,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decoding response: %w", err),
		}
	}
	if body.Message == nil {
		return paper.Metadata{}, &FetchError{DOI: doi, StatusCode: resp.StatusCode, Err: ErrNoWorkRecord}
	}

	meta := mapWork(*body.Message)
	c.log.Info("metadata.fetched", "doi", doi, "title", meta.Title)
	return meta, nil
}

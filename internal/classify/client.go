// Package classify submits papers to the credit-metered classification service.
package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/matsen/doibadge/internal/logging"
	"github.com/matsen/doibadge/internal/paper"
)

const (
	// DefaultTimeout bounds a single classification call.
	DefaultTimeout = 30 * time.Second

	// DefaultCreditLimit is used when no limit is configured.
	DefaultCreditLimit = 100

	// APIKeyHeader carries the API key.
	APIKeyHeader = "X-API-Key"
)

// CreditLedger tracks spent credits. SpendCredit must persist before returning.
type CreditLedger interface {
	CreditsUsed() int
	SpendCredit()
}

// Client calls the classification endpoint, one credit per successful call.
type Client struct {
	httpClient  *http.Client
	ledger      CreditLedger
	endpoint    string
	apiKey      string
	mailto      string
	creditLimit int
	timeout     time.Duration
	log         *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the API key sent in the X-API-Key header.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithEndpoint sets the classification endpoint URL.
func WithEndpoint(u string) ClientOption {
	return func(c *Client) {
		c.endpoint = u
	}
}

// WithCreditLimit sets the total number of credits that may be spent.
func WithCreditLimit(n int) ClientOption {
	return func(c *Client) {
		c.creditLimit = n
	}
}

// WithMailto sets the contact email included in the request payload.
func WithMailto(email string) ClientOption {
	return func(c *Client) {
		c.mailto = email
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

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a classification client that spends credits from ledger.
func NewClient(ledger CreditLedger, opts ...ClientOption) *Client {
	c := &Client{
		httpClient:  &http.Client{},
		ledger:      ledger,
		creditLimit: DefaultCreditLimit,
		timeout:     DefaultTimeout,
		log:         logging.Discard(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// request is the JSON payload posted to the classifier.
type request struct {
	Title  string `json:"title"`
	PDFURL string `json:"pdf_url"`
	Email  string `json:"email"`
}

// response is the classifier's JSON answer.
type response struct {
	Classification string   `json:"classification"`
	Confidence     *float64 `json:"confidence"`
}

// CreditsRemaining returns how many classifications the budget still allows.
func (c *Client) CreditsRemaining() int {
	left := c.creditLimit - c.ledger.CreditsUsed()
	if left < 0 {
		return 0
	}
	return left
}

// Classify submits a title and optional PDF URL and returns the label verbatim.
//
// The budget and API key are checked before any request. Once the service
// answers with a success status the credit is spent (and persisted by the
// ledger) before Classify returns.
func (c *Client) Classify(ctx context.Context, title, pdfURL string) (paper.Classification, error) {
	if c.ledger.CreditsUsed() >= c.creditLimit {
		return paper.Classification{}, fmt.Errorf("%w: %d of %d used", ErrCreditLimitExceeded, c.ledger.CreditsUsed(), c.creditLimit)
	}
	if c.apiKey == "" {
		return paper.Classification{}, ErrNotConfigured
	}

	body, err := json.Marshal(request{Title: title, PDFURL: pdfURL, Email: c.mailto})
	if err != nil {
		return paper.Classification{}, fmt.Errorf("marshaling request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return paper.Classification{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(APIKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return paper.Classification{}, fmt.Errorf("%w: %w", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return paper.Classification{}, &FetchError{StatusCode: resp.StatusCode}
	}

	// Any success status costs a credit, readable body or not.
	c.ledger.SpendCredit()

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return paper.Classification{}, &FetchError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decoding response: %w", err),
		}
	}

	c.log.Info("classify.done",
		"label", out.Classification,
		"credits_used", c.ledger.CreditsUsed(),
		"credit_limit", c.creditLimit)

	return paper.Classification{Label: out.Classification, Confidence: out.Confidence}, nil
}

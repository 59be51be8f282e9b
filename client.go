package eansearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"
)

// Version is the client library version, sent in the User-Agent header.
const Version = "1.2.0"

const (
	// DefaultBaseURL is the production EAN-Search API endpoint.
	DefaultBaseURL = "https://api.ean-search.org/api"

	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 180 * time.Second

	// CreditsUnknown is reported by CreditsRemaining before any response
	// has carried the credits header.
	CreditsUnknown = -1

	defaultMaxAttempts = 3
	defaultRetryWait   = time.Second

	creditsHeader = "X-Credits-Remaining"
)

// Operation codes of the query-string protocol.
const (
	opBarcodeLookup       = "barcode-lookup"
	opUPCLookup           = "upc-lookup"
	opISBNLookup          = "isbn-lookup"
	opBarcodePrefixSearch = "barcode-prefix-search"
	opProductSearch       = "product-search"
	opSimilarSearch       = "similar-product-search"
	opCategorySearch      = "category-search"
	opBarcodeImage        = "barcode-image"
	opVerifyChecksum      = "verify-checksum"
	opIssuingCountry      = "issuing-country"
)

// Client talks to the EAN-Search API. Create one with New.
type Client struct {
	token       string
	baseURL     string
	client      *http.Client
	userAgent   string
	maxAttempts int
	retryWait   time.Duration
	rateLimiter *RateLimiter

	credits atomic.Int64
}

// New creates a Client for the given API token.
func New(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	c := &Client{
		token:       token,
		baseURL:     DefaultBaseURL,
		client:      &http.Client{Timeout: DefaultTimeout},
		userAgent:   "eansearch-go/" + Version,
		maxAttempts: defaultMaxAttempts,
		retryWait:   defaultRetryWait,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.credits.Store(CreditsUnknown)
	return c, nil
}

// SetTimeout changes the per-request timeout for subsequent calls.
func (c *Client) SetTimeout(d time.Duration) {
	c.client.Timeout = d
}

// CreditsRemaining reports the request credits left on the account as of
// the most recent response, or CreditsUnknown before the first call.
func (c *Client) CreditsRemaining() int64 {
	return c.credits.Load()
}

// fetch dispatches one API operation and returns the raw response body.
//
// Rate-limited responses (HTTP 429) are retried with a fixed pause, capped
// at maxAttempts total attempts; the final attempt's body is returned
// as-is so the caller's decoder sees whatever the service last sent.
// Rejected requests (HTTP 400) short-circuit to ErrInvalidQuery without
// reading meaning into the body. On every other status the credits header
// updates the instance counter.
func (c *Client) fetch(ctx context.Context, op string, params url.Values) ([]byte, error) {
	params.Set("format", "json")
	params.Set("token", c.token)
	params.Set("op", op)
	u := c.baseURL + "?" + params.Encode()

	for attempt := 1; ; attempt++ {
		if c.rateLimiter != nil {
			if err := c.rateLimiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limit: %w", err)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("creating HTTP request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("executing API request: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response body: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < c.maxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryWait):
			}
			continue
		}

		if resp.StatusCode == http.StatusBadRequest {
			return nil, ErrInvalidQuery
		}

		if v := resp.Header.Get(creditsHeader); v != "" {
			if n, parseErr := strconv.ParseInt(v, 10, 64); parseErr == nil {
				c.credits.Store(n)
			}
		}

		return body, nil
	}
}

// lookupList dispatches a lookup-family operation and decodes its
// array-shaped response.
func (c *Client) lookupList(ctx context.Context, op string, params url.Values) ([]lookupRecord, error) {
	body, err := c.fetch(ctx, op, params)
	if err != nil {
		return nil, err
	}

	var records []lookupRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", op, err)
	}
	return records, nil
}

// searchList dispatches a search-family operation and unwraps the product
// list from its object-shaped response. A rejected request decodes to an
// empty list: for searches, malformed input and no matches look the same.
func (c *Client) searchList(ctx context.Context, op string, params url.Values) ([]Product, error) {
	body, err := c.fetch(ctx, op, params)
	if err != nil {
		if errors.Is(err, ErrInvalidQuery) {
			return []Product{}, nil
		}
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", op, err)
	}
	if resp.ProductList == nil {
		return []Product{}, nil
	}
	return resp.ProductList, nil
}

// defaultLanguage substitutes the service default for the zero value.
func defaultLanguage(language int) int {
	if language <= 0 {
		return 1
	}
	return language
}

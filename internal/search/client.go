// Package search is a client for the Naver keyword-search Open API.
package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the search API root; the kind is appended as a path segment.
const DefaultBaseURL = "https://openapi.naver.com/v1/search"

// Client calls the search API with static header credentials.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	http         *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a search client for the given credentials.
func NewClient(clientID, clientSecret string, opts ...Option) *Client {
	c := &Client{
		baseURL:      DefaultBaseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		http:         &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is returned when the API answers with a non-200 status.
// Callers treat it as "no result" for that search.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("search API returned status %d: %s", e.Code, e.Body)
}

// URL builds the request URL for req.
func (c *Client) URL(req Request) string {
	q := url.Values{}
	q.Set("query", req.Query)
	if req.Display > 0 {
		q.Set("display", strconv.Itoa(req.Display))
	}
	if req.Start > 0 {
		q.Set("start", strconv.Itoa(req.Start))
	}
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}
	return c.baseURL + "/" + string(req.Kind) + "?" + q.Encode()
}

// Search runs a keyword search and returns the parsed response.
func (c *Client) Search(ctx context.Context, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	endpoint := c.URL(req)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	httpReq.Header.Set("X-Naver-Client-Id", c.clientID)
	httpReq.Header.Set("X-Naver-Client-Secret", c.clientSecret)

	log.Debug().Str("kind", string(req.Kind)).Str("query", req.Query).Int("display", req.Display).Msg("search request")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	parsed, err := ParseResponse(body)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("items", len(parsed.Items)).Int("total", parsed.Total).Msg("search response")
	return parsed, nil
}

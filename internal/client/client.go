// Package client talks to the places backend: it fetches suggestion batches
// and resolves refinements (e.g. a street plus a house number).
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

var (
	// ErrSourceUnavailable is returned on transport failures, timeouts,
	// undecodable bodies and unexpected statuses. Callers treat it as
	// "no suggestions this round".
	ErrSourceUnavailable = errors.New("place source unavailable")

	// ErrRefinementNotFound is returned when the backend has no match for a
	// refinement, e.g. an unknown house number.
	ErrRefinementNotFound = errors.New("refinement not found")
)

// Options configure a Client.
type Options struct {
	BaseURL        string
	RequestTimeout time.Duration
	RetryMax       int
	Logger         zerolog.Logger
}

// Client is the HTTP transport shared by Source and Resolver.
type Client struct {
	baseURL    *url.URL
	httpClient *retryablehttp.Client
	timeout    time.Duration
	log        zerolog.Logger
}

// New creates a client for the places backend at opts.BaseURL.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: invalid base url %q: %w", opts.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("client: base url %q needs scheme and host", opts.BaseURL)
	}

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		baseURL: base,
		httpClient: &retryablehttp.Client{
			RetryMax:     opts.RetryMax,
			RetryWaitMin: 10 * time.Millisecond,
			RetryWaitMax: 200 * time.Millisecond,
			HTTPClient: &http.Client{
				Timeout: timeout,
			},
			CheckRetry: retryablehttp.DefaultRetryPolicy,
			Backoff:    retryablehttp.DefaultBackoff,
		},
		timeout: timeout,
		log:     opts.Logger,
	}, nil
}

// get issues a GET for path and query and returns status and body. Any
// transport level problem is reported as ErrSourceUnavailable.
func (c *Client) get(ctx context.Context, path string, query url.Values) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := *c.baseURL
	u.Path = u.Path + path
	u.RawQuery = query.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, nil, fmt.Errorf("client: cannot create request for %s: %w", u.String(), err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("url", u.String()).Msg("places request failed")
		return 0, nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		c.log.Warn().Err(err).Str("url", u.String()).Msg("reading places response failed")
		return 0, nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return res.StatusCode, body, nil
}

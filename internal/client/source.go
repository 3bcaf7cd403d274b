package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"place-lookup/internal/disambiguate"
	"place-lookup/internal/models"
)

// Source fetches suggestion batches from GET /api/complete.
type Source struct {
	client *Client
}

// NewSource creates a suggestion source on top of c.
func NewSource(c *Client) *Source {
	return &Source{client: c}
}

// Query returns the disambiguated suggestions for text. Deciding on a minimum
// text length is up to the caller.
func (s *Source) Query(ctx context.Context, text string) (models.Batch, error) {
	status, body, err := s.client.get(ctx, "/api/complete", url.Values{"text": {text}})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		s.client.log.Warn().Int("status", status).Str("text", text).Msg("completion request rejected")
		return nil, fmt.Errorf("%w: unexpected status %d", ErrSourceUnavailable, status)
	}

	batch, ok := decodeBatch(body)
	if !ok {
		return nil, fmt.Errorf("%w: malformed completion payload", ErrSourceUnavailable)
	}

	return disambiguate.Batch(batch), nil
}

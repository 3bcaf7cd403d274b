package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"place-lookup/internal/models"
)

// Resolver resolves a committed place plus a free text suffix through
// GET /api/place/{id}?houseNumber=.
type Resolver struct {
	client *Client
}

// NewResolver creates a refinement resolver on top of c.
func NewResolver(c *Client) *Resolver {
	return &Resolver{client: c}
}

// Refine looks up the place baseID refined by suffix.
func (r *Resolver) Refine(ctx context.Context, baseID, suffix string) (*models.Place, error) {
	query := url.Values{}
	if suffix != "" {
		query.Set("houseNumber", suffix)
	}

	status, body, err := r.client.get(ctx, "/api/place/"+url.PathEscape(baseID), query)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusNotFound:
		return nil, fmt.Errorf("%w: place %s, house number %q", ErrRefinementNotFound, baseID, suffix)
	case status != http.StatusOK:
		r.client.log.Warn().Int("status", status).Str("id", baseID).Msg("place request rejected")
		return nil, fmt.Errorf("%w: unexpected status %d", ErrSourceUnavailable, status)
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: malformed place payload", ErrSourceUnavailable)
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: malformed place payload", ErrSourceUnavailable)
	}
	return decodePlace(root), nil
}

package session

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"place-lookup/internal/models"
)

// SuggestionSource returns the disambiguated suggestions for a text.
type SuggestionSource interface {
	Query(ctx context.Context, text string) (models.Batch, error)
}

// RefinementResolver resolves a committed place refined by a suffix.
type RefinementResolver interface {
	Refine(ctx context.Context, baseID, suffix string) (*models.Place, error)
}

// ControllerOptions tune a Controller.
type ControllerOptions struct {
	// MinQueryLength is the number of runes below which no query is issued.
	MinQueryLength int
	// RateLimitWait is the minimum gap between two backend calls of the
	// session. Zero disables pacing.
	RateLimitWait time.Duration
	Logger        zerolog.Logger
}

// Controller drives one Session against the places backend. Network calls run
// outside the session lock, so a slow reply never blocks newer input; replies
// overtaken by newer input are dropped.
type Controller struct {
	session        *Session
	source         SuggestionSource
	resolver       RefinementResolver
	minQueryLength int
	limiter        *rate.Limiter
	log            zerolog.Logger
}

// NewController creates a controller for s. Each controller paces its own
// backend calls; the source and resolver may be shared between sessions.
func NewController(s *Session, source SuggestionSource, resolver RefinementResolver, opts ControllerOptions) *Controller {
	limit := rate.Inf
	if opts.RateLimitWait > 0 {
		limit = rate.Every(opts.RateLimitWait)
	}
	return &Controller{
		session:        s,
		source:         source,
		resolver:       resolver,
		minQueryLength: opts.MinQueryLength,
		limiter:        rate.NewLimiter(limit, 1),
		log:            opts.Logger,
	}
}

// Session returns the controlled session.
func (c *Controller) Session() *Session {
	return c.session
}

// SuggestionTextChanged queries suggestions for text. A source failure is
// returned but leaves an empty list in place; ErrStaleResponse means a newer
// keystroke won the race and the result was dropped.
func (c *Controller) SuggestionTextChanged(ctx context.Context, text string) error {
	seq, err := c.session.SuggestionTextChanged(text)
	if err != nil {
		return err
	}
	return c.query(ctx, seq, text)
}

func (c *Controller) query(ctx context.Context, seq uint64, text string) error {
	if utf8.RuneCountInString(text) < c.minQueryLength {
		return c.session.ApplySuggestions(seq, models.Batch{})
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("session: pacing suggestions for %q: %w", text, err)
	}
	// a keystroke that arrived while waiting makes this query pointless
	if !c.session.SuggestionsCurrent(seq) {
		return ErrStaleResponse
	}

	batch, err := c.source.Query(ctx, text)
	if err != nil {
		c.log.Debug().Err(err).Uint64("seq", seq).Str("text", text).Msg("no suggestions this round")
		if applyErr := c.session.ApplySuggestions(seq, models.Batch{}); errors.Is(applyErr, ErrStaleResponse) {
			return applyErr
		}
		return fmt.Errorf("session: suggestions for %q: %w", text, err)
	}

	if err := c.session.ApplySuggestions(seq, batch); err != nil {
		c.log.Debug().Uint64("seq", seq).Str("text", text).Msg("dropping stale suggestions")
		return err
	}
	return nil
}

// CommitSuggestion commits the i-th suggestion of the current batch.
func (c *Controller) CommitSuggestion(i int) (*models.Place, error) {
	return c.session.CommitSuggestionAt(i)
}

// RefinementTextChanged applies an edit of the refinement input. When the
// edit reverts the session to Suggesting, the remaining text is queried.
func (c *Controller) RefinementTextChanged(ctx context.Context, text string) error {
	reverted, seq, err := c.session.RefinementTextChanged(text)
	if err != nil || !reverted {
		return err
	}
	return c.query(ctx, seq, text)
}

// RefinementCommit resolves the refinement text. On failure the displayed
// value stays the last good one and the error is returned for display. Text
// shorter than the committed name reverts the session and is queried instead.
func (c *Controller) RefinementCommit(ctx context.Context, text string) error {
	ticket, err := c.session.RefinementCommit(text)
	if err != nil {
		return err
	}
	if ticket.Reverted {
		return c.query(ctx, ticket.seq, text)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("session: pacing refinement of %s: %w", ticket.BaseID, err)
	}

	place, err := c.resolver.Refine(ctx, ticket.BaseID, ticket.Suffix)
	if err != nil {
		c.log.Debug().Err(err).Str("id", ticket.BaseID).Str("suffix", ticket.Suffix).Msg("refinement failed")
		return fmt.Errorf("session: refining %s with %q: %w", ticket.BaseID, ticket.Suffix, err)
	}

	if err := c.session.ApplyRefinement(ticket, place); err != nil {
		c.log.Debug().Str("id", ticket.BaseID).Msg("dropping stale refinement")
		return err
	}
	return nil
}

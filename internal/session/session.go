// Package session implements the two-surface input state machine: a
// suggestion input that queries the places backend as the user types, and a
// refinement input that completes a committed place (e.g. a street) with
// free text (e.g. a house number).
package session

import (
	"errors"
	"strings"
	"sync"

	"place-lookup/internal/models"
)

var (
	// ErrStaleResponse marks a reply that was overtaken by newer input. It is
	// dropped, never shown.
	ErrStaleResponse = errors.New("stale response")

	// ErrWrongMode is returned for a transition that is not valid in the
	// current mode. The session is left unchanged.
	ErrWrongMode = errors.New("transition not valid in current mode")

	// ErrNoSuchSuggestion is returned when committing an index outside the
	// current suggestion batch.
	ErrNoSuchSuggestion = errors.New("no such suggestion")
)

// Mode is the active input surface.
type Mode int

const (
	// Suggesting is the initial mode: keystrokes go to the suggestion input.
	Suggesting Mode = iota
	// Refining is entered after committing a place that needs more input.
	Refining
)

// String implements the stringer interface for Mode.
func (m Mode) String() string {
	switch m {
	case Suggesting:
		return "suggesting"
	case Refining:
		return "refining"
	default:
		return "unknown"
	}
}

// MarshalText lets Mode appear as a string in JSON.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Ticket identifies a pending refinement lookup. A ticket goes stale as soon
// as the refinement text changes or the session leaves Refining.
//
// A commit of text shorter than the committed name reverts the session like
// a backspace would; Reverted is then set and there is nothing to resolve.
type Ticket struct {
	BaseID   string
	Suffix   string
	Reverted bool
	gen      uint64
	seq      uint64
}

// Session holds the state of one user's lookup. All methods are safe for
// concurrent use; none of them blocks on I/O.
type Session struct {
	mu sync.Mutex

	refinable map[string]bool

	mode      Mode
	completed *models.Place
	selected  *models.Place

	suggestionText string
	refinementText string
	suggestions    models.Batch

	// seq is the sequence number of the latest suggestion query issued.
	seq uint64
	// gen is bumped on every refinement input change.
	gen uint64
}

// New creates a session in Suggesting mode. Places whose class is one of
// refinableClasses switch the session to Refining when committed.
func New(refinableClasses ...string) *Session {
	refinable := make(map[string]bool, len(refinableClasses))
	for _, c := range refinableClasses {
		refinable[c] = true
	}
	return &Session{refinable: refinable}
}

// Mode returns the active input surface.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SuggestionTextChanged records the suggestion input and returns the
// sequence number the resulting query must be applied with.
func (s *Session) SuggestionTextChanged(text string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != Suggesting {
		return 0, ErrWrongMode
	}
	// editing the input after a final commit discards that commit
	if s.completed != nil && text != s.suggestionText {
		s.completed = nil
		s.selected = nil
	}
	s.suggestionText = text
	s.seq++
	return s.seq, nil
}

// SuggestionsCurrent reports whether seq is still the latest suggestion query.
func (s *Session) SuggestionsCurrent(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return seq == s.seq && s.mode == Suggesting
}

// ApplySuggestions stores the batch fetched for query seq. Replies for any
// query but the latest are rejected with ErrStaleResponse.
func (s *Session) ApplySuggestions(seq uint64, batch models.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq || s.mode != Suggesting {
		return ErrStaleResponse
	}
	s.suggestions = batch
	return nil
}

// CommitSuggestion makes place the committed value. Refinable places switch
// the session to Refining with the place name as initial refinement text.
func (s *Session) CommitSuggestion(place *models.Place) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(place)
}

// CommitSuggestionAt commits the i-th place of the current suggestion batch.
func (s *Session) CommitSuggestionAt(i int) (*models.Place, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.suggestions) || s.suggestions[i] == nil {
		return nil, ErrNoSuchSuggestion
	}
	place := s.suggestions[i]
	if err := s.commit(place); err != nil {
		return nil, err
	}
	return place, nil
}

func (s *Session) commit(place *models.Place) error {
	if s.mode != Suggesting || place == nil {
		return ErrWrongMode
	}

	s.completed = place
	s.selected = place
	s.suggestionText = place.Name
	if s.refinable[place.Class] {
		s.mode = Refining
		s.refinementText = place.Name
		s.suggestions = nil
		s.gen++
	}
	return nil
}

// RefinementTextChanged handles an edit of the refinement input. Backspacing
// into the committed name reverts the session to Suggesting, handing the
// remaining text back to the suggestion input; reverted reports that case and
// seq is then the sequence number for the follow-up suggestion query.
func (s *Session) RefinementTextChanged(text string) (reverted bool, seq uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != Refining {
		return false, 0, ErrWrongMode
	}
	s.gen++

	if runeLen(text) < runeLen(s.completed.Name) {
		return true, s.revert(text), nil
	}

	s.refinementText = text
	if s.selected != s.completed {
		s.selected = s.completed
	}
	return false, 0, nil
}

// RefinementCommit handles the confirm key in the refinement input. The
// returned ticket carries what to resolve: the committed place id and the
// text typed after the committed name.
func (s *Session) RefinementCommit(text string) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != Refining {
		return Ticket{}, ErrWrongMode
	}
	if runeLen(text) < runeLen(s.completed.Name) {
		s.gen++
		return Ticket{Reverted: true, seq: s.revert(text)}, nil
	}
	if text != s.refinementText {
		s.refinementText = text
		s.selected = s.completed
		s.gen++
	}

	suffix := ""
	if runes := []rune(text); len(runes) > runeLen(s.completed.Name) {
		suffix = strings.TrimSpace(string(runes[runeLen(s.completed.Name):]))
	}
	return Ticket{BaseID: s.completed.ID, Suffix: suffix, gen: s.gen}, nil
}

// revert leaves Refining, hands text back to the suggestion input and returns
// the sequence number of the follow-up suggestion query.
func (s *Session) revert(text string) uint64 {
	s.completed = nil
	s.selected = nil
	s.mode = Suggesting
	s.refinementText = ""
	s.suggestionText = text
	s.suggestions = nil
	s.seq++
	return s.seq
}

// ApplyRefinement makes place the selected value if t is still current.
func (s *Session) ApplyRefinement(t Ticket, place *models.Place) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != Refining || t.Reverted || t.gen != s.gen || place == nil {
		return ErrStaleResponse
	}
	s.selected = place
	return nil
}

// Display renders the current value, or "" when nothing is committed.
func (s *Session) Display() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.display()
}

func (s *Session) display() string {
	if s.selected != nil {
		return Display(s.selected)
	}
	return Display(s.completed)
}

// Snapshot is a copy of the session state.
type Snapshot struct {
	Mode           Mode          `json:"mode"`
	SuggestionText string        `json:"suggestionText"`
	RefinementText string        `json:"refinementText,omitempty"`
	Suggestions    models.Batch  `json:"suggestions"`
	Completed      *models.Place `json:"completed,omitempty"`
	Selected       *models.Place `json:"selected,omitempty"`
	Display        string        `json:"display"`
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	suggestions := make(models.Batch, len(s.suggestions))
	copy(suggestions, s.suggestions)

	return Snapshot{
		Mode:           s.mode,
		SuggestionText: s.suggestionText,
		RefinementText: s.refinementText,
		Suggestions:    suggestions,
		Completed:      s.completed,
		Selected:       s.selected,
		Display:        s.display(),
	}
}

func runeLen(s string) int {
	return len([]rune(s))
}

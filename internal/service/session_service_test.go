package service

import (
	"context"
	"testing"
	"time"

	"place-lookup/internal/client"
	"place-lookup/internal/models"
	"place-lookup/internal/session"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSource is a mock implementation of the session.SuggestionSource interface
type MockSource struct {
	mock.Mock
}

func (m *MockSource) Query(ctx context.Context, text string) (models.Batch, error) {
	args := m.Called(ctx, text)
	batch, _ := args.Get(0).(models.Batch)
	return batch, args.Error(1)
}

// MockResolver is a mock implementation of the session.RefinementResolver interface
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Refine(ctx context.Context, baseID, suffix string) (*models.Place, error) {
	args := m.Called(ctx, baseID, suffix)
	place, _ := args.Get(0).(*models.Place)
	return place, args.Error(1)
}

func newSessionService(source *MockSource, resolver *MockResolver) *SessionService {
	return NewSessionService(func() *session.Controller {
		return session.NewController(session.New(models.ClassStreet), source, resolver, session.ControllerOptions{
			MinQueryLength: 1,
			Logger:         zerolog.Nop(),
		})
	}, time.Minute)
}

func TestSessionService_Lifecycle(t *testing.T) {
	street := &models.Place{ID: "17", Class: models.ClassStreet, Name: "Elm St", Postcode: "111", District: "A"}
	house := &models.Place{ID: "4", Class: models.ClassHouseNumber, Street: "Elm St", HouseNumber: "12", Postcode: "111", District: "A"}

	source := new(MockSource)
	resolver := new(MockResolver)
	source.On("Query", mock.Anything, "Elm").Return(models.Batch{street}, nil)
	resolver.On("Refine", mock.Anything, "17", "12").Return(house, nil)
	resolver.On("Refine", mock.Anything, "17", "999").Return(nil, client.ErrRefinementNotFound)
	svc := newSessionService(source, resolver)
	ctx := context.Background()

	id, snap := svc.Create()
	require.NotEmpty(t, id)
	assert.Equal(t, session.Suggesting, snap.Mode)

	snap, err := svc.SuggestionText(ctx, id, "Elm")
	require.NoError(t, err)
	assert.Equal(t, models.Batch{street}, snap.Suggestions)

	snap, err = svc.Commit(id, 0)
	require.NoError(t, err)
	assert.Equal(t, session.Refining, snap.Mode)
	assert.Equal(t, "Elm St, 111, A", snap.Display)

	snap, err = svc.RefinementCommit(ctx, id, "Elm St 999")
	assert.ErrorIs(t, err, client.ErrRefinementNotFound)
	assert.Equal(t, "Elm St, 111, A", snap.Display)

	snap, err = svc.RefinementCommit(ctx, id, "Elm St 12")
	require.NoError(t, err)
	assert.Equal(t, "Elm St 12, 111, A", snap.Display)

	require.NoError(t, svc.Delete(id))
	_, err = svc.Get(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_UnknownSession(t *testing.T) {
	svc := newSessionService(new(MockSource), new(MockResolver))

	_, err := svc.SuggestionText(context.Background(), "missing", "Elm")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, svc.Delete("missing"), ErrSessionNotFound)
}

func TestSessionService_WrongMode(t *testing.T) {
	svc := newSessionService(new(MockSource), new(MockResolver))
	id, _ := svc.Create()

	_, err := svc.RefinementText(context.Background(), id, "Elm")

	assert.ErrorIs(t, err, session.ErrWrongMode)
}

func TestSessionService_EvictIdle(t *testing.T) {
	svc := newSessionService(new(MockSource), new(MockResolver))
	now := time.Now()
	svc.now = func() time.Time { return now }

	stale, _ := svc.Create()
	now = now.Add(2 * time.Minute)
	fresh, _ := svc.Create()

	assert.Equal(t, 1, svc.EvictIdle())
	_, err := svc.Get(stale)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Get(fresh)
	assert.NoError(t, err)
}

package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"place-lookup/internal/client"
	"place-lookup/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSource is a mock implementation of the SuggestionSource interface
type MockSource struct {
	mock.Mock
}

func (m *MockSource) Query(ctx context.Context, text string) (models.Batch, error) {
	args := m.Called(ctx, text)
	batch, _ := args.Get(0).(models.Batch)
	return batch, args.Error(1)
}

// MockResolver is a mock implementation of the RefinementResolver interface
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Refine(ctx context.Context, baseID, suffix string) (*models.Place, error) {
	args := m.Called(ctx, baseID, suffix)
	place, _ := args.Get(0).(*models.Place)
	return place, args.Error(1)
}

func newController(source *MockSource, resolver *MockResolver) *Controller {
	return NewController(New(models.ClassStreet), source, resolver, ControllerOptions{MinQueryLength: 1, Logger: zerolog.Nop()})
}

func TestController_SuggestionTextChanged(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		mockBatch     models.Batch
		mockError     error
		expected      models.Batch
		expectQuery   bool
		expectedError error
	}{
		{
			name:        "below minimum length clears suggestions",
			text:        "",
			expected:    models.Batch{},
			expectQuery: false,
		},
		{
			name:        "suggestions are stored",
			text:        "elm",
			mockBatch:   models.Batch{elmStreet, museum},
			expected:    models.Batch{elmStreet, museum},
			expectQuery: true,
		},
		{
			name:          "source failure leaves no suggestions",
			text:          "elm",
			mockError:     client.ErrSourceUnavailable,
			expected:      models.Batch{},
			expectQuery:   true,
			expectedError: client.ErrSourceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := new(MockSource)
			c := newController(source, new(MockResolver))
			if tt.expectQuery {
				source.On("Query", mock.Anything, tt.text).Return(tt.mockBatch, tt.mockError)
			}

			err := c.SuggestionTextChanged(context.Background(), tt.text)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, c.Session().Snapshot().Suggestions)
			source.AssertExpectations(t)
		})
	}
}

func TestController_OutOfOrderReplies(t *testing.T) {
	source := new(MockSource)
	c := newController(source, new(MockResolver))

	slowStarted := make(chan struct{})
	releaseSlow := make(chan struct{})
	source.On("Query", mock.Anything, "e").
		Run(func(mock.Arguments) {
			close(slowStarted)
			<-releaseSlow
		}).
		Return(models.Batch{museum}, nil)
	source.On("Query", mock.Anything, "elm").Return(models.Batch{elmStreet}, nil)

	slowErr := make(chan error, 1)
	go func() {
		slowErr <- c.SuggestionTextChanged(context.Background(), "e")
	}()
	<-slowStarted

	require.NoError(t, c.SuggestionTextChanged(context.Background(), "elm"))
	close(releaseSlow)

	assert.ErrorIs(t, <-slowErr, ErrStaleResponse)
	assert.Equal(t, models.Batch{elmStreet}, c.Session().Snapshot().Suggestions)
}

func TestController_RefinementFlow(t *testing.T) {
	source := new(MockSource)
	resolver := new(MockResolver)
	c := newController(source, resolver)
	source.On("Query", mock.Anything, "Elm").Return(models.Batch{elmStreet}, nil)
	resolver.On("Refine", mock.Anything, "17", "12").Return(elm12, nil)

	require.NoError(t, c.SuggestionTextChanged(context.Background(), "Elm"))
	place, err := c.CommitSuggestion(0)
	require.NoError(t, err)
	require.Same(t, elmStreet, place)
	require.Equal(t, Refining, c.Session().Mode())

	require.NoError(t, c.RefinementTextChanged(context.Background(), "Elm St 12"))
	require.NoError(t, c.RefinementCommit(context.Background(), "Elm St 12"))

	assert.Equal(t, "Elm St 12, 111, A", c.Session().Display())
	resolver.AssertExpectations(t)
}

func TestController_RefinementNotFound(t *testing.T) {
	resolver := new(MockResolver)
	c := newController(new(MockSource), resolver)
	require.NoError(t, c.Session().CommitSuggestion(elmStreet))
	resolver.On("Refine", mock.Anything, "17", "999").Return(nil, client.ErrRefinementNotFound)

	err := c.RefinementCommit(context.Background(), "Elm St 999")

	assert.ErrorIs(t, err, client.ErrRefinementNotFound)
	assert.Equal(t, Refining, c.Session().Mode())
	assert.Equal(t, "Elm St, 111, A", c.Session().Display())
}

func TestController_RevertQueriesRemainingText(t *testing.T) {
	source := new(MockSource)
	c := newController(source, new(MockResolver))
	require.NoError(t, c.Session().CommitSuggestion(elmStreet))
	source.On("Query", mock.Anything, "Elm").Return(models.Batch{elmStreet}, nil)

	require.NoError(t, c.RefinementTextChanged(context.Background(), "Elm"))

	snap := c.Session().Snapshot()
	assert.Equal(t, Suggesting, snap.Mode)
	assert.Equal(t, models.Batch{elmStreet}, snap.Suggestions)
	source.AssertExpectations(t)
}

func TestController_RefinementCommit_ShortTextReverts(t *testing.T) {
	source := new(MockSource)
	resolver := new(MockResolver)
	c := newController(source, resolver)
	require.NoError(t, c.Session().CommitSuggestion(elmStreet))
	source.On("Query", mock.Anything, "Elm").Return(models.Batch{elmStreet}, nil)

	require.NoError(t, c.RefinementCommit(context.Background(), "Elm"))

	snap := c.Session().Snapshot()
	assert.Equal(t, Suggesting, snap.Mode)
	assert.Nil(t, snap.Completed)
	assert.Equal(t, "Elm", snap.SuggestionText)
	assert.Equal(t, models.Batch{elmStreet}, snap.Suggestions)
	source.AssertExpectations(t)
	resolver.AssertNotCalled(t, "Refine", mock.Anything, mock.Anything, mock.Anything)
}

func TestController_SessionsPaceIndependently(t *testing.T) {
	source := new(MockSource)
	source.On("Query", mock.Anything, "elm").Return(models.Batch{elmStreet}, nil)

	const sessions = 20
	controllers := make([]*Controller, sessions)
	for i := range controllers {
		controllers[i] = NewController(New(models.ClassStreet), source, new(MockResolver), ControllerOptions{
			MinQueryLength: 1,
			RateLimitWait:  time.Hour,
			Logger:         zerolog.Nop(),
		})
	}

	errs := make([]error, sessions)
	var wg sync.WaitGroup
	for i, c := range controllers {
		wg.Add(1)
		go func(i int, c *Controller) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			errs[i] = c.SuggestionTextChanged(ctx, "elm")
		}(i, c)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "session %d", i)
		assert.Equal(t, models.Batch{elmStreet}, controllers[i].Session().Snapshot().Suggestions)
	}
	source.AssertNumberOfCalls(t, "Query", sessions)
}

func TestController_PacesItsOwnCalls(t *testing.T) {
	source := new(MockSource)
	source.On("Query", mock.Anything, "e").Return(models.Batch{museum}, nil)
	c := NewController(New(models.ClassStreet), source, new(MockResolver), ControllerOptions{
		MinQueryLength: 1,
		RateLimitWait:  time.Hour,
		Logger:         zerolog.Nop(),
	})

	require.NoError(t, c.SuggestionTextChanged(context.Background(), "e"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := c.SuggestionTextChanged(ctx, "el")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, client.ErrSourceUnavailable)
	source.AssertNumberOfCalls(t, "Query", 1)
}

package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := New(Options{
		BaseURL:        server.URL,
		RequestTimeout: time.Second,
		RetryMax:       0,
		Logger:         zerolog.Nop(),
	})
	require.NoError(t, err)
	return c
}

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := New(Options{BaseURL: "not a url"})
	assert.Error(t, err)
}

func TestSource_Query(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		expectedErr  error
		expectedIDs  []string
		expectedDisc []string
	}{
		{
			name:   "wrapped suggestions are disambiguated",
			status: http.StatusOK,
			body: `[
				{"distance":0,"place":{"id":1,"class":"street","name":"Main St","postcode":"111","district":"A"}},
				{"distance":0,"place":{"id":2,"class":"street","name":"Main St","postcode":"222","district":"A"}},
				{"distance":1,"place":{"id":"x3","class":"location","name":"Main Café","district":"B"}}
			]`,
			expectedIDs:  []string{"1", "2", "x3"},
			expectedDisc: []string{"111, A", "222, A", ""},
		},
		{
			name:         "bare places",
			status:       http.StatusOK,
			body:         `[{"id":7,"class":"street","name":"Elm St","district":"A"}]`,
			expectedIDs:  []string{"7"},
			expectedDisc: []string{""},
		},
		{
			name:         "empty list",
			status:       http.StatusOK,
			body:         `[]`,
			expectedIDs:  []string{},
			expectedDisc: []string{},
		},
		{
			name:        "bad request",
			status:      http.StatusBadRequest,
			body:        ``,
			expectedErr: ErrSourceUnavailable,
		},
		{
			name:        "malformed body",
			status:      http.StatusOK,
			body:        `{"not":"a list"}`,
			expectedErr: ErrSourceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/complete", r.URL.Path)
				assert.Equal(t, "main st", r.URL.Query().Get("text"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			batch, err := NewSource(c).Query(context.Background(), "main st")

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			ids := make([]string, len(batch))
			discs := make([]string, len(batch))
			for i, p := range batch {
				ids[i] = p.ID
				discs[i] = p.Disc
			}
			assert.Equal(t, tt.expectedIDs, ids)
			assert.Equal(t, tt.expectedDisc, discs)
		})
	}
}

func TestSource_Query_ServerDown(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c, err := New(Options{BaseURL: url, RequestTimeout: time.Second, Logger: zerolog.Nop()})
	require.NoError(t, err)

	_, err = NewSource(c).Query(context.Background(), "main")
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestSource_Query_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	c, err := New(Options{BaseURL: server.URL, RequestTimeout: 50 * time.Millisecond, Logger: zerolog.Nop()})
	require.NoError(t, err)

	_, err = NewSource(c).Query(context.Background(), "main")
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestSource_Query_ConcurrentCallers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	c, err := New(Options{BaseURL: server.URL, RequestTimeout: 500 * time.Millisecond, Logger: zerolog.Nop()})
	require.NoError(t, err)
	source := NewSource(c)

	const callers = 20
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = source.Query(context.Background(), "main")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "caller %d", i)
	}
}

func TestResolver_Refine(t *testing.T) {
	tests := []struct {
		name        string
		suffix      string
		status      int
		body        string
		expectedErr error
		expectedHN  string
	}{
		{
			name:       "resolved house number",
			suffix:     "12",
			status:     http.StatusOK,
			body:       `{"id":99,"class":"houseNumber","street":"Elm St","houseNumber":"12","postcode":"111","district":"A"}`,
			expectedHN: "12",
		},
		{
			name:        "unknown house number",
			suffix:      "999",
			status:      http.StatusNotFound,
			expectedErr: ErrRefinementNotFound,
		},
		{
			name:        "backend failure",
			suffix:      "12",
			status:      http.StatusInternalServerError,
			expectedErr: ErrSourceUnavailable,
		},
		{
			name:        "malformed body",
			suffix:      "12",
			status:      http.StatusOK,
			body:        `[]`,
			expectedErr: ErrSourceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/place/42", r.URL.Path)
				assert.Equal(t, tt.suffix, r.URL.Query().Get("houseNumber"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			place, err := NewResolver(c).Refine(context.Background(), "42", tt.suffix)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, place)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "99", place.ID)
			assert.Equal(t, tt.expectedHN, place.HouseNumber)
		})
	}
}

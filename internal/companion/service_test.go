package companion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/edcompanion/edcompanion/internal/config"
	"github.com/edcompanion/edcompanion/internal/frontier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRetriever struct {
	calls int32
	err   error
}

func (r *fakeRetriever) FetchLatest(ctx context.Context) error {
	atomic.AddInt32(&r.calls, 1)
	return r.err
}

const minimalProfile = `{"commander": {"id": 1, "name": "Jameson", "credits": 100, "debt": 0,
	"currentShipId": 0, "docked": true, "onfoot": false, "rank": {}}}`

func newClient(t *testing.T, handler http.HandlerFunc, loggedIn bool) *frontier.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tokens := frontier.NewTokenStore(frontier.NewMemorySettings())
	if loggedIn {
		require.NoError(t, tokens.SetCredentials("access", "refresh"))
	}
	cfg := &config.FrontierConfig{CAPIURL: server.URL, Timeout: 5 * time.Second}
	return frontier.NewClient(cfg, tokens)
}

func TestLoadAll(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(minimalProfile))
	}, true)
	retriever := &fakeRetriever{}
	service := NewService(client, retriever)

	require.NoError(t, service.LoadAll(context.Background()))

	profile := service.Profile()
	require.NotNil(t, profile)
	assert.Equal(t, "Jameson", profile.Commander.Name)
	assert.Equal(t, int32(1), atomic.LoadInt32(&retriever.calls))
}

func TestLoadAllAuthFailureSkipsJournal(t *testing.T) {
	var hits int32
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}, false)
	retriever := &fakeRetriever{}
	service := NewService(client, retriever)

	err := service.LoadAll(context.Background())
	require.ErrorIs(t, err, frontier.ErrAuthenticationRequired)
	assert.Zero(t, atomic.LoadInt32(&retriever.calls), "journal step must not run")
	assert.Zero(t, atomic.LoadInt32(&hits))
	assert.Nil(t, service.Profile())
}

func TestLoadAllSwallowsProfileErrors(t *testing.T) {
	// Profile endpoint is broken, journal must still be attempted
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, true)
	retriever := &fakeRetriever{}
	service := NewService(client, retriever)

	require.NoError(t, service.LoadAll(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&retriever.calls))
	assert.Nil(t, service.Profile())
}

func TestLoadAllPropagatesJournalAuthError(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(minimalProfile))
	}, true)
	retriever := &fakeRetriever{err: frontier.ErrAuthenticationRequired}
	service := NewService(client, retriever)

	err := service.LoadAll(context.Background())
	require.ErrorIs(t, err, frontier.ErrAuthenticationRequired)
}

func TestRefreshProfileReplacesSnapshot(t *testing.T) {
	var serving atomic.Value
	serving.Store(minimalProfile)
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(serving.Load().(string)))
	}, true)
	service := NewService(client, &fakeRetriever{})

	first, err := service.RefreshProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(100), first.Commander.Credits)

	serving.Store(`{"commander": {"id": 1, "name": "Jameson", "credits": 999, "debt": 0,
		"currentShipId": 0, "docked": false, "onfoot": true, "rank": {}}}`)

	second, err := service.RefreshProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(999), second.Commander.Credits)
	assert.Same(t, second, service.Profile())
}

func TestRefreshProfileErrorKeepsOldSnapshot(t *testing.T) {
	var fail atomic.Bool
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(minimalProfile))
	}, true)
	service := NewService(client, &fakeRetriever{})

	_, err := service.RefreshProfile(context.Background())
	require.NoError(t, err)

	fail.Store(true)
	_, err = service.RefreshProfile(context.Background())
	require.ErrorIs(t, err, frontier.ErrResourceUnavailable)
	assert.NotNil(t, service.Profile(), "failed fetch must leave the stale snapshot in place")
}

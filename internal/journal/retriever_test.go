package journal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/edcompanion/edcompanion/internal/config"
	"github.com/edcompanion/edcompanion/internal/frontier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedFetcher returns canned responses per path and records the order
// of requests.
type scriptedFetcher struct {
	mu       sync.Mutex
	requests []string
	respond  func(path string) ([]byte, error)
}

func (f *scriptedFetcher) Fetch(_ context.Context, path string) ([]byte, error) {
	f.mu.Lock()
	f.requests = append(f.requests, path)
	f.mu.Unlock()
	return f.respond(path)
}

func newTestRetriever(fetcher Fetcher, store Store, maxLookback int) *Retriever {
	r := NewRetriever(&config.JournalConfig{MaxLookbackDays: maxLookback}, fetcher, store)
	r.now = func() time.Time {
		return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	}
	return r
}

func dayKey(daysAgo int) string {
	base := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(-daysAgo) * 24 * time.Hour).Format("2006/01/02")
}

func TestFetchLatestScansBackward(t *testing.T) {
	// The five most recent days have no journal; day six has data.
	target := "/journal/" + dayKey(5)
	fetcher := &scriptedFetcher{
		respond: func(path string) ([]byte, error) {
			if path == target {
				return []byte(`{"event":"Fileheader"}` + "\r\n"), nil
			}
			return nil, frontier.ErrNotFound
		},
	}
	store := NewMemoryStore()
	retriever := newTestRetriever(fetcher, store, 365)

	require.NoError(t, retriever.FetchLatest(context.Background()))

	// Exactly six requests, in descending date order
	require.Len(t, fetcher.requests, 6)
	for i := 0; i < 6; i++ {
		assert.Equal(t, "/journal/"+dayKey(i), fetcher.requests[i])
	}

	// Exactly one record, keyed to the day that had data
	records := store.Records()
	require.Len(t, records, 1)
	record, ok := records[dayKey(5)]
	require.True(t, ok)
	assert.Equal(t, `{"event":"Fileheader"}`+"\r\n", record.Content)
}

func TestFetchLatestHaltsAtLookbackBound(t *testing.T) {
	fetcher := &scriptedFetcher{
		respond: func(string) ([]byte, error) { return nil, frontier.ErrNotFound },
	}
	store := NewMemoryStore()
	retriever := newTestRetriever(fetcher, store, 30)

	// A server that reports every day empty must not scan forever, raise,
	// or persist anything.
	require.NoError(t, retriever.FetchLatest(context.Background()))
	assert.Len(t, fetcher.requests, 30)
	assert.Empty(t, store.Records())
}

func TestFetchLatestAuthErrorPropagates(t *testing.T) {
	fetcher := &scriptedFetcher{
		respond: func(string) ([]byte, error) {
			return nil, fmt.Errorf("%w: no access token", frontier.ErrAuthenticationRequired)
		},
	}
	store := NewMemoryStore()
	retriever := newTestRetriever(fetcher, store, 365)

	err := retriever.FetchLatest(context.Background())
	require.ErrorIs(t, err, frontier.ErrAuthenticationRequired)
	assert.Len(t, fetcher.requests, 1)
	assert.Empty(t, store.Records())
}

func TestFetchLatestOtherErrorsAreSwallowed(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "resource unavailable", err: frontier.ErrResourceUnavailable},
		{name: "unhandled status", err: frontier.ErrUnhandledStatus},
		{name: "transport failure", err: errors.New("dial tcp: connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &scriptedFetcher{
				respond: func(string) ([]byte, error) { return nil, tt.err },
			}
			store := NewMemoryStore()
			retriever := newTestRetriever(fetcher, store, 365)

			// Non-auth failures stop the scan but are not fatal to the caller
			require.NoError(t, retriever.FetchLatest(context.Background()))
			assert.Len(t, fetcher.requests, 1)
			assert.Empty(t, store.Records())
		})
	}
}

func TestFetchLatestLenientNoDataStops(t *testing.T) {
	fetcher := &scriptedFetcher{
		respond: func(string) ([]byte, error) { return nil, nil },
	}
	store := NewMemoryStore()
	retriever := newTestRetriever(fetcher, store, 365)

	require.NoError(t, retriever.FetchLatest(context.Background()))
	assert.Len(t, fetcher.requests, 1)
	assert.Empty(t, store.Records())
}

func TestFetchLatestFirstDayHasData(t *testing.T) {
	fetcher := &scriptedFetcher{
		respond: func(string) ([]byte, error) { return []byte("journal"), nil },
	}
	store := NewMemoryStore()
	retriever := newTestRetriever(fetcher, store, 365)

	require.NoError(t, retriever.FetchLatest(context.Background()))
	require.Len(t, fetcher.requests, 1)
	assert.Equal(t, "/journal/"+dayKey(0), fetcher.requests[0])
	assert.Len(t, store.Records(), 1)
}

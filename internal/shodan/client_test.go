package shodan

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// searchHandler is a convenience that serves a fixed SearchResponse for
// every query hitting the fake provider.
func searchHandler(t *testing.T, resp SearchResponse) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shodan/host/search", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}
}

// newTestClient wires a Client against a fake provider with the
// inter-query delay disabled.
func newTestClient(t *testing.T, handler http.Handler, opts ...Option) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	opts = append([]Option{WithBaseURL(ts.URL), WithQueryDelay(0)}, opts...)
	return New("test-key", zerolog.Nop(), opts...)
}

func TestSearchSendsCredentialedQuery(t *testing.T) {
	var gotKey, gotQuery, gotLimit string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		gotQuery = r.URL.Query().Get("query")
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SearchResponse{Total: 1, Matches: []Result{{IP: "10.0.0.1", Port: 8080}}})
	}))

	resp, err := client.Search(context.Background(), `port:8080 "mjpeg"`, 5)
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, `port:8080 "mjpeg"`, gotQuery)
	assert.Equal(t, "5", gotLimit)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, int64(1), resp.Total)
}

func TestSearchErrorStatuses(t *testing.T) {
	t.Run("401 maps to ErrUnauthorized", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		_, err := client.Search(context.Background(), "anything", 0)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("429 maps to ErrRateLimited", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		_, err := client.Search(context.Background(), "anything", 0)
		require.ErrorIs(t, err, ErrRateLimited)
	})

	t.Run("other statuses map to APIError", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "upstream exploded", http.StatusBadGateway)
		}))
		_, err := client.Search(context.Background(), "anything", 0)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
		assert.Contains(t, apiErr.Body, "upstream exploded")
	})

	t.Run("missing key fails without a request", func(t *testing.T) {
		client := New("", zerolog.Nop())
		_, err := client.Search(context.Background(), "anything", 0)
		require.ErrorIs(t, err, ErrNoAPIKey)
	})
}

func TestSearchWebcamsQueryCap(t *testing.T) {
	var queries atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		queries.Add(1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SearchResponse{})
	}))

	_, err := client.SearchWebcams(context.Background(), 1000)
	require.NoError(t, err)

	assert.Equal(t, int32(3), queries.Load(), "discovery must never exceed 3 provider queries")
}

func TestSearchWebcamsDeduplicatesByIP(t *testing.T) {
	// The same address shows up in every query with different ports
	// and banners; discovery must collapse them to one record.
	client := newTestClient(t, searchHandler(t, SearchResponse{
		Matches: []Result{
			{IP: "203.0.113.7", Port: 8080, Data: "mjpeg stream"},
			{IP: "203.0.113.7", Port: 554, Data: "RTSP/1.0"},
			{IP: "198.51.100.2", Port: 80, Data: ""},
		},
	}))

	webcams, err := client.SearchWebcams(context.Background(), 0)
	require.NoError(t, err)

	require.Len(t, webcams, 2)
	assert.Equal(t, "198.51.100.2", webcams[0].IP)
	assert.Equal(t, "203.0.113.7", webcams[1].IP)
	// First occurrence in sorted order wins, so the MJPEG record survives.
	assert.Equal(t, AccessMJPEG, webcams[1].AccessType)
}

func TestSearchWebcamsPartialFailure(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SearchResponse{
			Matches: []Result{{IP: "192.0.2.1", Port: 8080, Data: "mjpeg"}},
		})
	}))

	webcams, err := client.SearchWebcams(context.Background(), 0)
	require.NoError(t, err, "one failing query must not abort discovery")
	assert.Len(t, webcams, 1)
}

func TestSearchWebcamsAllQueriesFail(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.SearchWebcams(context.Background(), 0)
	require.ErrorIs(t, err, ErrUnauthorized, "total failure surfaces the provider error kind")
}

func TestSearchWebcamsCancelledContext(t *testing.T) {
	client := newTestClient(t, searchHandler(t, SearchResponse{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.SearchWebcams(ctx, 0)
	require.ErrorIs(t, err, context.Canceled)
}

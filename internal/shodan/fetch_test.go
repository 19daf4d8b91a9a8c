package shodan

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchImageSuccess(t *testing.T) {
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/snapshot.jpg", r.URL.Path)
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(payload)
	}))
	defer ts.Close()

	client := New("test-key", zerolog.Nop())
	data, err := client.FetchImage(context.Background(), &RemoteWebcam{URL: ts.URL + "/snapshot.jpg"})
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestFetchImageHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "authentication required", http.StatusForbidden)
	}))
	defer ts.Close()

	client := New("test-key", zerolog.Nop())
	_, err := client.FetchImage(context.Background(), &RemoteWebcam{URL: ts.URL})

	require.ErrorIs(t, err, ErrFetch)
	assert.Contains(t, err.Error(), "403", "failure must carry the status for diagnostics")
}

func TestFetchImageTimeout(t *testing.T) {
	started := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		// Never respond within the client's fetch timeout.
		<-r.Context().Done()
	}))
	defer ts.Close()

	client := New("test-key", zerolog.Nop(), WithFetchTimeout(50*time.Millisecond))

	done := make(chan error, 1)
	go func() {
		_, err := client.FetchImage(context.Background(), &RemoteWebcam{URL: ts.URL})
		done <- err
	}()

	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrFetch, "timeout must surface as a fetch failure")
	case <-time.After(5 * time.Second):
		t.Fatal("fetch did not time out")
	}
	<-started
}

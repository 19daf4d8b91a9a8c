package shodan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// defaultFetchTimeout bounds a single remote-device fetch. Remote
// webcams are assumed unreliable; there are no retries, the caller
// picks a different device instead.
const defaultFetchTimeout = 10 * time.Second

// ErrFetch indicates a remote webcam payload could not be retrieved.
// Non-success statuses and timeouts all wrap it; the message carries
// the status or cause for diagnostics.
var ErrFetch = errors.New("shodan: fetch failed")

// FetchImage retrieves a single payload from a webcam's canonical URL
// under the fetch timeout.
func (c *Client) FetchImage(ctx context.Context, webcam *RemoteWebcam) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	c.log.Debug().Str("url", webcam.URL).Msg("fetching webcam image")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, webcam.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrFetch, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrFetch, err)
	}

	c.log.Info().Int("bytes", len(data)).Str("url", webcam.URL).Msg("fetched webcam image")
	return data, nil
}

package shodan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultBaseURL = "https://api.shodan.io"

var (
	// ErrNoAPIKey is returned when a client is constructed without a credential.
	ErrNoAPIKey = errors.New("shodan: API key not provided")

	// ErrUnauthorized maps the provider's HTTP 401: the key is missing or invalid.
	ErrUnauthorized = errors.New("shodan: unauthorized, check API key")

	// ErrRateLimited maps the provider's HTTP 429.
	ErrRateLimited = errors.New("shodan: rate limit exceeded")
)

// APIError reports a provider response that is neither success nor one
// of the recognized failure statuses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shodan: HTTP %d: %s", e.StatusCode, e.Body)
}

// webcamQueries are heuristic signatures for common camera server
// banners, ports, and paths, tried in order.
var webcamQueries = []string{
	"Server: SQ-WEBCAM",
	"Server: yawcam",
	"Server: webcamXP",
	`"Server: IP Webcam Server"`,
	`"200 OK" "Content-Type: multipart/x-mixed-replace"`,
	`port:8080 "mjpeg"`,
	`port:8081 "mjpeg"`,
	`port:554 "rtsp"`,
	`"axis video server"`,
	`"live view axis"`,
	`inurl:"view/view.shtml"`,
	`inurl:"ViewerFrame?Mode="`,
	`inurl:"MultiCameraFrame?Mode="`,
}

const (
	// webcamQueryCap bounds how many of the templates a single
	// discovery call issues, to stay under the provider's rate limits.
	webcamQueryCap = 3

	// defaultPerQueryLimit applies when the caller gives no limit.
	defaultPerQueryLimit = 10

	// queryDelay is the unconditional pause between successive queries.
	queryDelay = 500 * time.Millisecond
)

// Client is a credentialed client for the Shodan search API. Every
// method invocation is independent; the client holds no mutable state
// between calls and is safe for concurrent use.
type Client struct {
	http         *http.Client
	apiKey       string
	baseURL      string
	queryDelay   time.Duration
	fetchTimeout time.Duration
	log          zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the provider endpoint, for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithQueryDelay overrides the pause between discovery queries.
func WithQueryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.queryDelay = d
	}
}

// WithFetchTimeout overrides the remote-device fetch timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.fetchTimeout = d
	}
}

// New creates a Shodan client with the given API key.
func New(apiKey string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:       apiKey,
		baseURL:      defaultBaseURL,
		queryDelay:   queryDelay,
		fetchTimeout: defaultFetchTimeout,
		log:          log.With().Str("component", "shodan").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchWebcams runs the fixed webcam query templates against the
// provider and returns the classified, deduplicated hits. Only the
// first webcamQueryCap templates are issued per call; a failing query
// is logged and skipped, and an error is returned only when every
// query failed. The requested limit is spread evenly across all
// templates.
func (c *Client) SearchWebcams(ctx context.Context, limit int) ([]RemoteWebcam, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	perQuery := defaultPerQueryLimit
	if limit > 0 {
		perQuery = limit / len(webcamQueries)
	}

	c.log.Info().Int("limit", limit).Msg("searching for webcams")

	var (
		webcams []RemoteWebcam
		lastErr error
		failed  int
	)
	for i, query := range webcamQueries[:webcamQueryCap] {
		resp, err := c.Search(ctx, query, perQuery)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.log.Warn().Err(err).Str("query", query).Msg("webcam search query failed")
			lastErr = err
			failed++
		} else {
			webcams = append(webcams, classifyMatches(resp)...)
		}

		if i < webcamQueryCap-1 {
			if err := sleepContext(ctx, c.queryDelay); err != nil {
				return nil, err
			}
		}
	}

	if failed == webcamQueryCap {
		return nil, lastErr
	}

	webcams = dedupeByIP(webcams)
	c.log.Info().Int("count", len(webcams)).Msg("found unique webcams")
	return webcams, nil
}

// Search issues a single credentialed search query.
func (c *Client) Search(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	u, err := url.Parse(c.baseURL + "/shodan/host/search")
	if err != nil {
		return nil, fmt.Errorf("shodan: parse search URL: %w", err)
	}
	q := u.Query()
	q.Set("key", c.apiKey)
	q.Set("query", query)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("shodan: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug().Str("query", query).Msg("executing search")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shodan: search: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var sr SearchResponse
		if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
			return nil, fmt.Errorf("shodan: decode response: %w", err)
		}
		c.log.Debug().Int("matches", len(sr.Matches)).Msg("search returned results")
		return &sr, nil
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
}

// dedupeByIP sorts webcams by address and drops consecutive entries
// with the same address, keeping the first occurrence.
func dedupeByIP(webcams []RemoteWebcam) []RemoteWebcam {
	sort.SliceStable(webcams, func(i, j int) bool {
		return webcams[i].IP < webcams[j].IP
	})
	deduped := webcams[:0]
	for _, w := range webcams {
		if len(deduped) > 0 && deduped[len(deduped)-1].IP == w.IP {
			continue
		}
		deduped = append(deduped, w)
	}
	return deduped
}

// sleepContext pauses for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

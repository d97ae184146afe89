// Package reachability answers one question: does this URL currently accept
// connections. It backs the reachable-URL request validation and the
// background endpoint watcher.
package reachability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

var ErrUnsupportedScheme = errors.New("reachability: unsupported URL scheme")

// Result describes the outcome of a single probe.
type Result struct {
	Reachable  bool
	StatusCode int // 0 for websocket probes and transport failures
	Latency    time.Duration
}

// Checker probes http(s) URLs with HEAD (GET fallback) and ws(s) URLs with a
// websocket handshake. Probes share a token bucket so a burst of validation
// requests cannot turn the service into a port scanner.
type Checker struct {
	httpClient *http.Client
	dialer     *websocket.Dialer
	limiter    *rate.Limiter
}

func NewChecker() *Checker {
	return &Checker{
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			// Redirects are not followed: a listener that answers 3xx is reachable.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		dialer: &websocket.Dialer{
			HandshakeTimeout: 5 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
}

// Check probes rawURL once. The returned error covers caller mistakes
// (bad URL, unsupported scheme, cancelled context); an unreachable endpoint
// is not an error, it is Result{Reachable: false}.
func (c *Checker) Check(ctx context.Context, rawURL string) (Result, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return Result{}, fmt.Errorf("reachability: invalid URL: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return Result{}, err
	}

	start := time.Now()
	switch parsed.Scheme {
	case "http", "https":
		result := c.checkHTTP(ctx, rawURL)
		result.Latency = time.Since(start)
		return result, nil
	case "ws", "wss":
		result := c.checkWebsocket(ctx, rawURL)
		result.Latency = time.Since(start)
		return result, nil
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, parsed.Scheme)
	}
}

func (c *Checker) checkHTTP(ctx context.Context, rawURL string) Result {
	resp, err := c.do(ctx, http.MethodHead, rawURL)
	if err == nil && resp.StatusCode == http.StatusMethodNotAllowed {
		// Some servers reject HEAD outright; retry with GET before giving up.
		resp, err = c.do(ctx, http.MethodGet, rawURL)
	}
	if err != nil {
		return Result{Reachable: false}
	}

	// Any responsive HTTP listener below 500 counts as up; auth walls and
	// redirects still prove something is listening.
	return Result{
		Reachable:  resp.StatusCode < http.StatusInternalServerError,
		StatusCode: resp.StatusCode,
	}
}

func (c *Checker) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()
	return resp, nil
}

func (c *Checker) checkWebsocket(ctx context.Context, rawURL string) Result {
	conn, resp, err := c.dialer.DialContext(ctx, rawURL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return Result{Reachable: false}
	}
	conn.Close()
	return Result{Reachable: true, StatusCode: http.StatusSwitchingProtocols}
}

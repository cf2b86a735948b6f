package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/soundtouchd/soundtouch-cloud/internal/account"
)

// Hop-by-hop headers are never forwarded.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Client relays inbound requests to the legacy upstream host. The reconciler
// uses it on a snapshot cache miss; the original request's method, path,
// query and headers are preserved, and no body is sent.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new forwarding client for the given upstream base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			// Redirects are returned to the caller with their Location
			// rewritten, not followed.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Forward relays one request upstream and returns the raw response. The
// caller decides what a usable response is; this layer only transports.
func (c *Client) Forward(ctx context.Context, method, path string, query url.Values, header http.Header) (*account.ForwardResult, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}

	for key, values := range header {
		if isHopHeader(key) || strings.EqualFold(key, "Host") {
			continue
		}
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forward request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}

	respHeader := resp.Header.Clone()
	c.rewriteLocation(respHeader)

	return &account.ForwardResult{
		Status: resp.StatusCode,
		Header: respHeader,
		Body:   body,
	}, nil
}

// rewriteLocation strips the upstream base from redirect Location headers so
// clients follow redirects back through this service.
func (c *Client) rewriteLocation(header http.Header) {
	location := header.Get("Location")
	if location == "" {
		return
	}
	if strings.HasPrefix(location, c.baseURL) {
		header.Set("Location", strings.TrimPrefix(location, c.baseURL))
	}
}

func isHopHeader(key string) bool {
	for _, hop := range hopHeaders {
		if strings.EqualFold(key, hop) {
			return true
		}
	}
	return false
}

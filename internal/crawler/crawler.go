
package crawler

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrFetch marks every transport failure: bad URL, network error, non-2xx
// status or an unexpected content type.
var ErrFetch = errors.New("fetch failed")

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

type HTTPClient struct {
	client    *http.Client
	sizeCap   int64
	userAgent string
	limiter   *rate.Limiter
}

type Option func(*HTTPClient)

func WithUserAgent(ua string) Option {
	return func(h *HTTPClient) {
		if ua != "" {
			h.userAgent = ua
		}
	}
}

// WithRateLimit spaces out requests to at most rps per second. Zero or
// negative disables limiting.
func WithRateLimit(rps float64) Option {
	return func(h *HTTPClient) {
		if rps > 0 {
			h.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

func NewHTTPClient(timeout, dialTimeout time.Duration, sizeCap int64, opts ...Option) *HTTPClient {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	h := &HTTPClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		sizeCap:   sizeCap,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Fetch retrieves an HTML document. It returns the body capped at the
// client's size limit, the final URL after redirects, the content type and
// the time spent.
func (h *HTTPClient) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, string, string, time.Duration, error) {
	start := time.Now()
	resp, body, err := h.get(ctx, rawURL, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return nil, "", "", 0, err
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if !strings.Contains(mediaType, "text/html") && !strings.Contains(mediaType, "application/xhtml+xml") && mediaType != "" {
		// still allow if empty (some servers omit), otherwise reject non-html
		body.Close()
		return nil, "", "", 0, fmt.Errorf("%w: non-html content %q", ErrFetch, mediaType)
	}

	finalURL := resp.Request.URL.String()
	elapsed := time.Since(start)
	return body, finalURL, contentType, elapsed, nil
}

// Download copies a binary resource into w and returns the number of bytes written.
func (h *HTTPClient) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	_, body, err := h.get(ctx, rawURL, "image/avif,image/webp,image/*,*/*;q=0.8")
	if err != nil {
		return 0, err
	}
	defer body.Close()

	n, err := io.Copy(w, body)
	if errors.Is(err, ErrFetch) {
		return n, err
	}
	if err != nil {
		return n, fmt.Errorf("%w: read %s: %v", ErrFetch, rawURL, err)
	}
	return n, nil
}

func (h *HTTPClient) get(ctx context.Context, rawURL, accept string) (*http.Response, io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, nil, fmt.Errorf("%w: invalid url %q", ErrFetch, rawURL)
	}
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrFetch, err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, nil, fmt.Errorf("%w: http status %d", ErrFetch, resp.StatusCode)
	}

	var body io.ReadCloser = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, nil, fmt.Errorf("%w: %v", ErrFetch, err)
		}
		body = &gzipBody{Reader: gz, raw: resp.Body}
	}

	// enforce a size cap; one byte past it is enough to know the body is too large
	return resp, &cappedBody{Reader: io.LimitReader(body, h.sizeCap+1), closer: body, limit: h.sizeCap}, nil
}

type gzipBody struct {
	*gzip.Reader
	raw io.Closer
}

func (g *gzipBody) Close() error {
	g.Reader.Close()
	return g.raw.Close()
}

// cappedBody fails with ErrFetch once more than limit bytes arrive.
type cappedBody struct {
	io.Reader
	closer io.Closer
	limit  int64
	read   int64
}

func (c *cappedBody) Read(p []byte) (int, error) {
	n, err := c.Reader.Read(p)
	c.read += int64(n)
	if c.read > c.limit {
		return n - int(c.read-c.limit), fmt.Errorf("%w: body exceeds %d bytes", ErrFetch, c.limit)
	}
	return n, err
}

func (c *cappedBody) Close() error { return c.closer.Close() }

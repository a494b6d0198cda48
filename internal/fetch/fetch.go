// Package fetch downloads listing pages over HTTP with bounded retry,
// conditional revalidation against the page cache, and charset decoding.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"

	"github.com/hyperifyio/p2pscrape/internal/cache"
	"github.com/hyperifyio/p2pscrape/internal/robots"
)

// DefaultBaseURL is the platform's deal page prefix.
const DefaultBaseURL = "https://8percent.kr/deals/"

// utf8HTML is the content type recorded for bodies after decoding.
const utf8HTML = "text/html; charset=utf-8"

// ListingURL joins base and a listing id.
func ListingURL(base string, id int) string {
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimRight(base, "/") + "/" + fmt.Sprint(id)
}

// StatusError is a non-2xx, non-304 response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("get %s: unexpected status %d", e.URL, e.Code)
}

// Client wraps http.Client with timeouts, limited retry and an optional cache.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each attempt.
	PerRequestTimeout time.Duration
	// RetryBackoff is multiplied by the attempt number between retries.
	// Zero means 200ms.
	RetryBackoff time.Duration

	Cache *cache.PageCache
	// CacheMaxAge serves cached pages younger than this without a request.
	CacheMaxAge time.Duration
	// BypassCache always fetches unconditionally but still stores the result.
	BypassCache bool

	// RedirectMaxHops caps redirects. Zero means 5.
	RedirectMaxHops int
	// MaxConcurrent limits in-flight requests. Zero means unlimited.
	MaxConcurrent int
	// Robots, when set, is consulted before any network request.
	Robots *robots.Policy

	limiter     chan struct{}
	limiterOnce sync.Once
}

// Get returns the page at rawURL decoded to UTF-8.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	var etag, lastMod string
	if c.Cache != nil && !c.BypassCache {
		if c.Cache.Fresh(ctx, rawURL, c.CacheMaxAge) {
			if body, err := c.Cache.LoadBody(ctx, rawURL); err == nil {
				log.Debug().Str("url", rawURL).Msg("serving page from cache")
				return body, nil
			}
		}
		if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil {
			etag, lastMod = meta.ETag, meta.LastModified
		}
	}

	if c.Robots != nil {
		ok, err := c.Robots.Allowed(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("get %s: %w", rawURL, robots.ErrDisallowed)
		}
	}

	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	backoff := c.RetryBackoff
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		res, err := c.tryOnce(ctx, rawURL, etag, lastMod)
		if err == nil {
			return c.finish(ctx, rawURL, res)
		}
		lastErr = err
		if !isTransient(err) || i == attempts-1 {
			break
		}
		log.Debug().Err(err).Str("url", rawURL).Int("attempt", i+1).Msg("transient fetch error; retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(i+1) * backoff):
		}
	}
	return nil, lastErr
}

type response struct {
	status       int
	body         []byte
	etag         string
	lastModified string
}

func (c *Client) finish(ctx context.Context, rawURL string, res response) ([]byte, error) {
	if res.status == http.StatusNotModified {
		if c.Cache == nil {
			return nil, errors.New("304 without cache")
		}
		body, err := c.Cache.LoadBody(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("304 but cache miss: %w", err)
		}
		log.Debug().Str("url", rawURL).Msg("page not modified")
		return body, nil
	}
	if c.Cache != nil {
		entry := cache.Entry{URL: rawURL, ContentType: utf8HTML, ETag: res.etag, LastModified: res.lastModified}
		if err := c.Cache.Save(ctx, entry, res.body); err != nil {
			log.Warn().Err(err).Str("url", rawURL).Msg("cache save failed")
		}
	}
	return res.body, nil
}

func (c *Client) tryOnce(ctx context.Context, rawURL, etag, lastMod string) (response, error) {
	c.acquire()
	defer c.release()

	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PerRequestTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return response{}, fmt.Errorf("new request: %w", err)
	}
	if !isHTTPScheme(req.URL) {
		return response{}, fmt.Errorf("unsupported URL scheme: %q", req.URL.Scheme)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	res := response{status: resp.StatusCode, etag: resp.Header.Get("ETag"), lastModified: resp.Header.Get("Last-Modified")}
	if resp.StatusCode == http.StatusNotModified {
		return res, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return response{}, &StatusError{URL: rawURL, Code: resp.StatusCode}
	}
	contentType := resp.Header.Get("Content-Type")
	if !isAllowedHTMLContentType(contentType) {
		return response{}, fmt.Errorf("unsupported content type: %s", contentType)
	}
	r, err := charset.NewReader(resp.Body, contentType)
	if err != nil {
		return response{}, fmt.Errorf("decode charset: %w", err)
	}
	if res.body, err = io.ReadAll(r); err != nil {
		return response{}, fmt.Errorf("read body: %w", err)
	}
	return res, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirect
		return &base
	}
	return &http.Client{CheckRedirect: c.checkRedirect}
}

func (c *Client) checkRedirect(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	if len(via) >= max {
		return errors.New("too many redirects")
	}
	if !isHTTPScheme(req.URL) {
		return errors.New("redirect to unsupported scheme")
	}
	return nil
}

// isTransient treats 5xx responses and per-attempt deadlines as retryable.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.Code >= 500
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func isAllowedHTMLContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}

func (c *Client) acquire() {
	if c.MaxConcurrent <= 0 {
		return
	}
	c.limiterOnce.Do(func() {
		c.limiter = make(chan struct{}, c.MaxConcurrent)
	})
	c.limiter <- struct{}{}
}

func (c *Client) release() {
	if c.MaxConcurrent <= 0 || c.limiter == nil {
		return
	}
	<-c.limiter
}

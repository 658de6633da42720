// Package web provides the HTTP page fetcher.
// Bodies are decoded to UTF-8 from the declared or sniffed charset, and
// robots.txt can optionally be honoured per host.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/net/html/charset"

	"github.com/custodia-labs/essaycorpus/internal/core/domain"
	"github.com/custodia-labs/essaycorpus/internal/core/ports/driven"
	"github.com/custodia-labs/essaycorpus/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

const (
	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies the fetcher to the essay site.
	DefaultUserAgent = "essaycorpus"

	// maxBodyBytes caps a single page read.
	maxBodyBytes = 10 << 20
)

// Config holds configuration for the fetcher.
type Config struct {
	// UserAgent is sent with every request and matched against robots.txt groups.
	UserAgent string

	// Timeout is the per-request timeout. Defaults to DefaultTimeout.
	Timeout time.Duration

	// RespectRobots rejects URLs that the host's robots.txt disallows.
	RespectRobots bool

	// Client overrides the HTTP client. Timeout is ignored when set.
	Client *http.Client
}

// Fetcher retrieves pages over HTTP.
type Fetcher struct {
	client        *http.Client
	userAgent     string
	respectRobots bool

	mu     sync.Mutex
	robots map[string]*robotstxt.Group
}

// New creates a new HTTP fetcher.
func New(cfg Config) *Fetcher {
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Fetcher{
		client:        client,
		userAgent:     userAgent,
		respectRobots: cfg.RespectRobots,
		robots:        make(map[string]*robotstxt.Group),
	}
}

// Fetch returns the UTF-8 body of the page at rawURL.
// Any failure is returned as a *domain.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", &domain.FetchError{URL: rawURL, Err: fmt.Errorf("%w: invalid url", domain.ErrInvalidInput)}
	}

	if f.respectRobots && !f.allowed(ctx, u) {
		return "", &domain.FetchError{URL: rawURL, Err: domain.ErrDisallowed}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &domain.FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	logger.Debug("GET %s", rawURL)
	resp, err := f.client.Do(req)
	if err != nil {
		return "", &domain.FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return "", &domain.FetchError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	body := io.LimitReader(resp.Body, maxBodyBytes)
	utf8Reader, err := charset.NewReader(body, resp.Header.Get("Content-Type"))
	if err != nil {
		logger.Debug("charset detection failed for %s, reading raw: %v", rawURL, err)
		utf8Reader = body
	}

	data, err := io.ReadAll(utf8Reader)
	if err != nil {
		return "", &domain.FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	return string(data), nil
}

// allowed reports whether robots.txt for u's host permits u.
// An unreachable robots.txt allows everything.
func (f *Fetcher) allowed(ctx context.Context, u *url.URL) bool {
	group := f.robotsGroup(ctx, u)
	if group == nil {
		return true
	}
	return group.Test(u.EscapedPath())
}

func (f *Fetcher) robotsGroup(ctx context.Context, u *url.URL) *robotstxt.Group {
	key := u.Scheme + "://" + u.Host

	f.mu.Lock()
	group, ok := f.robots[key]
	f.mu.Unlock()
	if ok {
		return group
	}

	group = f.loadRobots(ctx, key+"/robots.txt")

	f.mu.Lock()
	f.robots[key] = group
	f.mu.Unlock()

	return group
}

func (f *Fetcher) loadRobots(ctx context.Context, robotsURL string) *robotstxt.Group {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		logger.Debug("robots.txt %s unavailable: %v", robotsURL, err)
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		logger.Debug("robots.txt %s unparseable: %v", robotsURL, err)
		return nil
	}

	logger.Debug("robots.txt loaded from %s", robotsURL)
	return data.FindGroup(f.userAgent)
}

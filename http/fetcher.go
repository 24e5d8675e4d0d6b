// Package http provides an HTTP-based implementation of pagelens.Fetcher
// with bounded retry and exponential backoff.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/fwojciec/pagelens"
)

// DefaultMaxRedirects is the number of redirects followed before a fetch fails.
const DefaultMaxRedirects = 10

var errTooManyRedirects = errors.New("too many redirects")

// Ensure Fetcher implements pagelens.Fetcher at compile time.
var _ pagelens.Fetcher = (*Fetcher)(nil)

// SleepFunc pauses between attempts. It returns early with an error only if
// ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Fetcher retrieves markup from URLs using HTTP GET requests.
//
// Transport failures and 5xx responses are retried according to the retry
// policy; 4xx responses, malformed URLs and redirect loops fail immediately.
// The timeout applies to each attempt, not to the whole Fetch call.
type Fetcher struct {
	client       *http.Client
	transport    http.RoundTripper
	timeout      time.Duration
	policy       pagelens.RetryPolicy
	userAgent    string
	proxy        *url.URL
	maxRedirects int
	logger       *slog.Logger
	sleep        SleepFunc
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-attempt timeout for HTTP requests.
// Defaults to pagelens.DefaultTimeout; a non-positive d keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithRetryPolicy sets the retry policy. Defaults to pagelens.DefaultRetryPolicy.
func WithRetryPolicy(p pagelens.RetryPolicy) Option {
	return func(f *Fetcher) {
		f.policy = p
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithProxy routes requests through the given proxy.
func WithProxy(u *url.URL) Option {
	return func(f *Fetcher) {
		f.proxy = u
	}
}

// WithTransport replaces the underlying round tripper. WithProxy is ignored
// when a transport is supplied.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *Fetcher) {
		f.transport = rt
	}
}

// WithMaxRedirects sets how many redirects are followed.
func WithMaxRedirects(n int) Option {
	return func(f *Fetcher) {
		f.maxRedirects = n
	}
}

// WithLogger sets the logger used for per-attempt log lines.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// WithSleep replaces the function used to wait between attempts.
func WithSleep(fn SleepFunc) Option {
	return func(f *Fetcher) {
		f.sleep = fn
	}
}

// NewFetcher creates a new HTTP-based Fetcher. Options are not validated;
// use NewFetcherFromConfig to fail fast on bad settings.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:      pagelens.DefaultTimeout,
		policy:       pagelens.DefaultRetryPolicy(),
		userAgent:    pagelens.DefaultUserAgent,
		maxRedirects: DefaultMaxRedirects,
		logger:       slog.New(slog.DiscardHandler),
		sleep:        sleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}

	transport := f.transport
	if transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		if f.proxy != nil {
			t.Proxy = http.ProxyURL(f.proxy)
		}
		transport = t
	}

	f.client = &http.Client{
		Transport: transport,
		Timeout:   f.timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > f.maxRedirects {
				return errTooManyRedirects
			}
			return nil
		},
	}

	return f
}

// NewFetcherFromConfig creates a Fetcher from process configuration.
// It fails fast on a non-positive timeout, negative retries or a bad proxy URL.
func NewFetcherFromConfig(cfg pagelens.Config, logger *slog.Logger) (*Fetcher, error) {
	if cfg.Timeout <= 0 {
		return nil, pagelens.Errorf(pagelens.EINVALID, "timeout must be positive")
	}
	policy := cfg.RetryPolicy()
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	opts := []Option{
		WithTimeout(cfg.Timeout),
		WithRetryPolicy(policy),
	}
	if cfg.UserAgent != "" {
		opts = append(opts, WithUserAgent(cfg.UserAgent))
	}
	if cfg.Proxy != "" {
		u, err := url.Parse(cfg.Proxy)
		if err != nil || u.Host == "" {
			return nil, pagelens.Errorf(pagelens.EINVALID, "invalid proxy URL %q", cfg.Proxy)
		}
		opts = append(opts, WithProxy(u))
	}
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}
	return NewFetcher(opts...), nil
}

// Fetch retrieves the markup at rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := pagelens.ValidateURL(rawURL)
	if err != nil {
		return "", err
	}
	target := u.String()

	attempts := f.policy.Attempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		body, retry, err := f.fetchOnce(ctx, target)
		if err == nil {
			f.logger.Info("fetch", "url", target, "attempt", attempt, "outcome", "ok", "bytes", len(body))
			return body, nil
		}
		lastErr = err
		f.logger.Info("fetch", "url", target, "attempt", attempt, "outcome", "failed", "err", err)

		if !retry || attempt == attempts {
			break
		}

		wait := f.policy.Wait(attempt)
		f.logger.Warn("retrying fetch", "url", target, "next_attempt", attempt+1, "wait", wait, "err", err)
		if err := f.sleep(ctx, wait); err != nil {
			break
		}
	}

	f.logger.Error("fetch failed", "url", target, "err", lastErr)
	return "", lastErr
}

// fetchOnce performs a single GET. The bool result reports whether the
// failure is worth another attempt.
func (f *Fetcher) fetchOnce(ctx context.Context, target string) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", false, pagelens.WrapError(pagelens.EFETCH, err, "fetch %s", target)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, errTooManyRedirects) {
			return "", false, pagelens.Errorf(pagelens.EFETCH, "fetch %s: stopped after %d redirects", target, f.maxRedirects)
		}
		return "", ctx.Err() == nil, pagelens.WrapError(pagelens.EFETCH, err, "fetch %s", target)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", resp.StatusCode >= 500, &pagelens.Error{
			Code:    pagelens.EFETCH,
			Message: fmt.Sprintf("HTTP %d for %s", resp.StatusCode, target),
			Status:  resp.StatusCode,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", ctx.Err() == nil, pagelens.WrapError(pagelens.EFETCH, err, "read body of %s", target)
	}

	return string(body), false, nil
}

// Close releases idle connections held by the underlying client.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Adda-Baaj/bangla-khobor/internal/logger"
	"github.com/Adda-Baaj/bangla-khobor/pkg/httpclient"
)

// Package fetch is the rate-limited, retrying HTTP layer. It knows nothing
// about the cache: callers decide when a fetch is needed.

// ErrorKind classifies a failed fetch.
type ErrorKind int

const (
	KindNetwork ErrorKind = iota
	KindTimeout
	KindHTTPStatus
	KindBadURL
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindHTTPStatus:
		return "http_status"
	case KindBadURL:
		return "bad_url"
	default:
		return "unknown"
	}
}

// Error is the typed failure a fetch surfaces after its retry budget is
// spent (or immediately, for non-retryable failures).
type Error struct {
	Kind     ErrorKind
	URL      string
	Status   int
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	if e.Kind == KindHTTPStatus {
		return fmt.Sprintf("fetch %s: status %d after %d attempt(s)", e.URL, e.Status, e.Attempts)
	}
	return fmt.Sprintf("fetch %s: %s after %d attempt(s): %v", e.URL, e.Kind, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Document is a successfully fetched page.
type Document struct {
	URL         string
	Body        []byte
	StatusCode  int
	ContentType string
	FetchedAt   time.Time
}

// Options tunes throttling and retry behavior.
type Options struct {
	// Delay is the minimum gap between the end of one network call and
	// the start of the next. It throttles; it does not schedule, so slow
	// responses do not stretch the total run time further.
	Delay       time.Duration
	MaxAttempts int
	Headers     map[string]string
}

// Fetcher issues throttled GET requests with bounded retries. It is not
// safe for concurrent use; the orchestrator is sequential by design.
type Fetcher struct {
	client  httpclient.Client
	opts    Options
	lastEnd time.Time

	// injectable for offline retry-policy tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewFetcher builds a fetcher over the given client.
func NewFetcher(client httpclient.Client, opts Options) *Fetcher {
	if client == nil {
		client = httpclient.NewRestyClient(15 * time.Second)
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	return &Fetcher{
		client: client,
		opts:   opts,
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

// attemptOutcome drives the retry state machine: an attempt either
// succeeds, fails retryably (next attempt after backoff), or fails fatally.
type attemptOutcome int

const (
	outcomeSuccess attemptOutcome = iota
	outcomeRetry
	outcomeFatal
)

// Fetch performs a GET against the URL, honoring the inter-request delay
// and retrying transient failures with linear backoff. The returned error
// is always a *Error when non-nil.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	if err := checkURL(rawURL); err != nil {
		return nil, &Error{Kind: KindBadURL, URL: rawURL, Attempts: 0, Err: err}
	}

	var lastErr *Error
	for attempt := 1; attempt <= f.opts.MaxAttempts; attempt++ {
		if err := f.throttle(ctx); err != nil {
			return nil, &Error{Kind: KindNetwork, URL: rawURL, Attempts: attempt - 1, Err: err}
		}

		doc, ferr, outcome := f.attempt(ctx, rawURL, attempt)
		f.lastEnd = f.now()

		switch outcome {
		case outcomeSuccess:
			logger.DebugObj("fetch succeeded", "fetch_attempt", map[string]any{
				"url":     rawURL,
				"attempt": attempt,
				"status":  doc.StatusCode,
			})
			return doc, nil
		case outcomeFatal:
			logger.WarnObj("fetch failed permanently", "fetch_attempt", map[string]any{
				"url":     rawURL,
				"attempt": attempt,
				"kind":    ferr.Kind.String(),
				"status":  ferr.Status,
			})
			return nil, ferr
		case outcomeRetry:
			lastErr = ferr
			logger.WarnObj("fetch attempt failed", "fetch_attempt", map[string]any{
				"url":     rawURL,
				"attempt": attempt,
				"kind":    ferr.Kind.String(),
				"status":  ferr.Status,
				"error":   ferr.Err,
			})
			if attempt < f.opts.MaxAttempts {
				// Linear backoff: delay grows with the attempt number.
				if err := f.sleep(ctx, f.opts.Delay*time.Duration(attempt)); err != nil {
					return nil, &Error{Kind: KindNetwork, URL: rawURL, Attempts: attempt, Err: err}
				}
			}
		}
	}

	lastErr.Attempts = f.opts.MaxAttempts
	logger.ErrorObj("fetch retries exhausted", "fetch_error", map[string]any{
		"url":      rawURL,
		"attempts": f.opts.MaxAttempts,
		"kind":     lastErr.Kind.String(),
	})
	return nil, lastErr
}

// attempt performs one network call and classifies the result.
func (f *Fetcher) attempt(ctx context.Context, rawURL string, attempt int) (*Document, *Error, attemptOutcome) {
	resp, err := f.client.Get(ctx, rawURL, f.opts.Headers)
	if err != nil {
		kind := KindNetwork
		if isTimeout(err) {
			kind = KindTimeout
		}
		return nil, &Error{Kind: kind, URL: rawURL, Attempts: attempt, Err: err}, outcomeRetry
	}

	status := resp.StatusCode()
	switch {
	case status >= 200 && status < 300:
		return &Document{
			URL:         rawURL,
			Body:        resp.Body(),
			StatusCode:  status,
			ContentType: resp.Header("Content-Type"),
			FetchedAt:   f.now(),
		}, nil, outcomeSuccess
	case retryableStatus(status):
		return nil, &Error{Kind: KindHTTPStatus, URL: rawURL, Status: status, Attempts: attempt}, outcomeRetry
	default:
		// Definitive client errors (404, 403, ...) surface immediately.
		return nil, &Error{Kind: KindHTTPStatus, URL: rawURL, Status: status, Attempts: attempt}, outcomeFatal
	}
}

// throttle waits out the remainder of the inter-request delay, measured
// from the end of the previous call.
func (f *Fetcher) throttle(ctx context.Context) error {
	if f.opts.Delay <= 0 || f.lastEnd.IsZero() {
		return nil
	}
	elapsed := f.now().Sub(f.lastEnd)
	if remaining := f.opts.Delay - elapsed; remaining > 0 {
		return f.sleep(ctx, remaining)
	}
	return nil
}

func retryableStatus(status int) bool {
	return status >= 500 || status == http.StatusRequestTimeout || status == http.StatusTooManyRequests
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func checkURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errors.New("url is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("url %q is not an absolute http(s) url", raw)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
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

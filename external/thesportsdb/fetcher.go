package thesportsdb

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/live-tracker/internal/platform/logging"
	"github.com/riskibarqy/live-tracker/internal/platform/resilience"
	"github.com/riskibarqy/live-tracker/internal/usecase"
)

// BrowserUserAgent is sent on every request; the provider throttles unknown clients harder.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var errTransient = errors.New("thesportsdb transient failure")

// Result is the outcome of one bounded fetch. Err is the last attempt's error.
type Result struct {
	Body     []byte
	Attempts int
	Err      error
}

func (r Result) OK() bool {
	return r.Err == nil
}

func (r Result) Exhausted() bool {
	return r.Err != nil
}

// IsTransient reports whether err came from a retried upstream failure.
func IsTransient(err error) bool {
	return errors.Is(err, errTransient)
}

type fetcher struct {
	transport   Transport
	timeout     time.Duration
	maxAttempts int
	retryDelay  time.Duration
	userAgent   string
	apiKey      string
	breaker     *resilience.CircuitBreaker
	logger      *logging.Logger
	now         func() time.Time
}

// Fetch requires a 200 response with a JSON body.
func (f *fetcher) Fetch(ctx context.Context, rawURL string) Result {
	return f.fetch(ctx, rawURL, func(body []byte) error {
		if !sonic.Valid(body) {
			return errors.New("response body is not json")
		}
		return nil
	})
}

// fetch retries until decode accepts a 200 body or attempts run out.
func (f *fetcher) fetch(ctx context.Context, rawURL string, decode func([]byte) error) Result {
	if err := f.breaker.Allow(); err != nil {
		f.logger.WarnContext(ctx, "thesportsdb circuit breaker rejected request",
			"url", f.redact(rawURL),
			"state", f.breaker.State(),
		)
		return Result{Err: errors.Mark(
			errors.Wrap(usecase.ErrDependencyUnavailable, "sport data provider is temporarily unavailable"),
			errTransient,
		)}
	}

	var (
		lastErr  error
		attempts int
	)
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		attempts = attempt
		body, err := f.attempt(ctx, rawURL, decode)
		if err == nil {
			f.breaker.Record(true)
			return Result{Body: body, Attempts: attempts}
		}
		lastErr = err
		f.logger.DebugContext(ctx, "thesportsdb attempt failed",
			"url", f.redact(rawURL),
			"attempt", attempt,
			"error", err,
		)

		if attempt == f.maxAttempts {
			break
		}
		timer := time.NewTimer(f.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			lastErr = errors.Mark(errors.Wrap(ctx.Err(), "wait for retry"), errTransient)
			f.breaker.Record(false)
			return Result{Attempts: attempts, Err: lastErr}
		case <-timer.C:
		}
	}

	f.breaker.Record(false)
	return Result{Attempts: attempts, Err: lastErr}
}

func (f *fetcher) attempt(ctx context.Context, rawURL string, decode func([]byte) error) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	header := http.Header{}
	header.Set("User-Agent", f.userAgent)
	header.Set("Accept", "application/json")

	status, body, err := f.transport.Get(attemptCtx, f.withCacheBuster(rawURL), header)
	if err != nil {
		return nil, errors.Mark(errors.Newf("send request: %s", f.sanitize(err.Error())), errTransient)
	}
	if status != http.StatusOK {
		return nil, errors.Mark(errors.Newf("provider status=%d body=%s", status, abbreviateBody(body)), errTransient)
	}
	if err := decode(body); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "decode provider payload body=%s", abbreviateBody(body)), errTransient)
	}
	return body, nil
}

func (f *fetcher) withCacheBuster(rawURL string) string {
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + "t=" + strconv.FormatInt(f.now().UnixMilli(), 10)
}

func (f *fetcher) redact(rawURL string) string {
	return f.sanitize(rawURL)
}

func (f *fetcher) sanitize(value string) string {
	value = strings.TrimSpace(value)
	if f.apiKey == "" || value == "" {
		return value
	}
	value = strings.ReplaceAll(value, "/"+url.PathEscape(f.apiKey)+"/", "/REDACTED/")
	return strings.ReplaceAll(value, f.apiKey, "REDACTED")
}

func abbreviateBody(raw []byte) string {
	const limit = 240
	text := strings.TrimSpace(string(raw))
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}

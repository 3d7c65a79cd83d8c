package github

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/stahnma/gh-search/internal/logging"
	"github.com/stahnma/gh-search/internal/metrics"
)

// retryStatuses are retried by the transport before the caller sees them.
var retryStatuses = map[int]bool{
	http.StatusForbidden:           true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// RetryConfig holds the transport retry schedule.
type RetryConfig struct {
	// MaxAttempts counts the initial request.
	MaxAttempts int
	// BaseDelay is the wait before the first retry; each retry doubles it.
	BaseDelay time.Duration
	// MaxDelay caps a single wait.
	MaxDelay time.Duration
}

// DefaultRetryConfig returns five attempts with waits of 1s, 2s, 4s, 8s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   1 * time.Second,
		MaxDelay:    2 * time.Minute,
	}
}

// RetryTransport retries transient HTTP statuses and transport errors with
// capped exponential backoff. When attempts run out the last response is
// returned untouched so the caller can classify it.
type RetryTransport struct {
	base   http.RoundTripper
	config RetryConfig
	log    zerolog.Logger
}

// NewRetryTransport wraps base. Zero fields of cfg take their defaults.
func NewRetryTransport(base http.RoundTripper, cfg RetryConfig) *RetryTransport {
	def := DefaultRetryConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = def.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	if base == nil {
		base = http.DefaultTransport
	}
	return &RetryTransport{base: base, config: cfg, log: logging.NewLogger("transport")}
}

func (t *RetryTransport) newBackOff() backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = t.config.BaseDelay
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxInterval = t.config.MaxDelay
	exp.MaxElapsedTime = 0
	b := backoff.WithMaxRetries(exp, uint64(t.config.MaxAttempts-1))
	b.Reset()
	return b
}

// RoundTrip implements http.RoundTripper.
func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	b := t.newBackOff()

	for attempt := 1; ; attempt++ {
		attemptReq, err := rewind(req, attempt)
		if err != nil {
			return nil, err
		}

		resp, err := t.base.RoundTrip(attemptReq)

		var reason string
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, err
			}
			reason = "network"
		case retryStatuses[resp.StatusCode]:
			metrics.Requests.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
			reason = strconv.Itoa(resp.StatusCode)
		default:
			metrics.Requests.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
			return resp, nil
		}

		wait := b.NextBackOff()
		if wait == backoff.Stop || (req.Body != nil && req.GetBody == nil) {
			t.log.Warn().
				Str("reason", reason).
				Int("attempts", attempt).
				Msg("Retry attempts exhausted")
			return resp, err
		}
		if resp != nil {
			if ra := retryAfter(resp); ra > wait {
				wait = min(ra, t.config.MaxDelay)
			}
			drainAndClose(resp.Body)
		}

		metrics.TransportRetries.WithLabelValues(reason).Inc()
		ev := t.log.Warn().
			Str("reason", reason).
			Int("attempt", attempt).
			Dur("backoff", wait)
		if err != nil {
			ev = ev.Err(err)
		}
		ev.Msg("Retrying request after backoff")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// rewind returns the request to send for attempt, replaying the body when needed.
func rewind(req *http.Request, attempt int) (*http.Request, error) {
	if attempt == 1 || req.Body == nil || req.GetBody == nil {
		return req, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	clone := req.Clone(req.Context())
	clone.Body = body
	return clone, nil
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(resp *http.Response) time.Duration {
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func drainAndClose(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 4096))
	_ = rc.Close()
}

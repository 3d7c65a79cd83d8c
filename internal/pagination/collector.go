// Package pagination walks search result pages one at a time until a target
// count is reached, the results run out or the API stops cooperating.
package pagination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/stahnma/gh-search/internal/github"
	"github.com/stahnma/gh-search/internal/logging"
	"github.com/stahnma/gh-search/internal/metrics"
	"github.com/stahnma/gh-search/internal/record"
)

// ErrRateLimitExhausted is returned, with the records gathered so far, when
// the API is still rate limiting after the configured number of cooldowns.
var ErrRateLimitExhausted = errors.New("rate limit cooldowns exhausted")

// WaitFunc blocks for d or until ctx is done, returning ctx.Err() in the
// latter case.
type WaitFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default WaitFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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

// PageFetcher fetches a single page of a search.
type PageFetcher interface {
	FetchPage(ctx context.Context, req github.SearchRequest, page int) (github.Page, error)
}

// Config holds pagination timing.
type Config struct {
	// PolitenessDelay separates successful page fetches.
	PolitenessDelay time.Duration
	// Cooldown is waited before retrying a rate-limited page.
	Cooldown time.Duration
	// MaxRateLimitRetries bounds the cooldowns in one Collect call.
	MaxRateLimitRetries int
	Wait                WaitFunc
}

// DefaultConfig returns a 1s politeness delay, a 60s cooldown and at most
// five cooldowns per run.
func DefaultConfig() Config {
	return Config{
		PolitenessDelay:     1 * time.Second,
		Cooldown:            60 * time.Second,
		MaxRateLimitRetries: 5,
		Wait:                Sleep,
	}
}

// Collector drives a PageFetcher.
type Collector struct {
	fetcher PageFetcher
	config  Config
	log     zerolog.Logger
}

// NewCollector creates a Collector. Zero durations and retry counts take
// their defaults.
func NewCollector(fetcher PageFetcher, config Config) *Collector {
	def := DefaultConfig()
	if config.PolitenessDelay <= 0 {
		config.PolitenessDelay = def.PolitenessDelay
	}
	if config.Cooldown <= 0 {
		config.Cooldown = def.Cooldown
	}
	if config.MaxRateLimitRetries <= 0 {
		config.MaxRateLimitRetries = def.MaxRateLimitRetries
	}
	if config.Wait == nil {
		config.Wait = def.Wait
	}
	return &Collector{fetcher: fetcher, config: config, log: logging.NewLogger("pagination")}
}

// Collect fetches pages starting at 1 and returns at most target records in
// upstream order.
//
// A terminal page failure ends collection with the partial results and a nil
// error. Cancellation returns the partial results with ctx.Err(). Running out
// of cooldowns returns the partial results with ErrRateLimitExhausted.
func (c *Collector) Collect(ctx context.Context, req github.SearchRequest, target int) (record.Collection, error) {
	out := make(record.Collection, 0, max(target, 0))
	if target <= 0 {
		return out, nil
	}

	page := 1
	cooldowns := 0
	for len(out) < target {
		if err := ctx.Err(); err != nil {
			return c.finish(out, target, err)
		}

		p, err := c.fetcher.FetchPage(ctx, req, page)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return c.finish(out, target, ctxErr)
			}
			if !github.IsRateLimited(err) {
				c.log.Warn().Err(err).Int("page", page).Int("collected", len(out)).
					Msg("Page fetch failed, returning partial results")
				return c.finish(out, target, nil)
			}
			if cooldowns >= c.config.MaxRateLimitRetries {
				c.log.Warn().Int("page", page).Int("cooldowns", cooldowns).
					Msg("Still rate limited after maximum cooldowns")
				return c.finish(out, target, fmt.Errorf("%w: %w", ErrRateLimitExhausted, err))
			}
			cooldowns++
			metrics.Cooldowns.Inc()
			c.log.Warn().Int("page", page).Dur("cooldown", c.config.Cooldown).
				Msg("Rate limit hit, waiting before retrying page")
			if err := c.config.Wait(ctx, c.config.Cooldown); err != nil {
				return c.finish(out, target, err)
			}
			continue
		}

		if p.Empty() {
			c.log.Debug().Int("page", page).Msg("No more results")
			break
		}
		out = append(out, p.Records...)
		c.log.Info().Int("page", page).Int("collected", len(out)).Int("target", target).Msg("Fetched page")
		if len(out) >= target {
			break
		}

		page++
		if err := c.config.Wait(ctx, c.config.PolitenessDelay); err != nil {
			return c.finish(out, target, err)
		}
	}
	return c.finish(out, target, nil)
}

func (c *Collector) finish(out record.Collection, target int, err error) (record.Collection, error) {
	out = out.Truncate(target)
	metrics.RecordsCollected.Set(float64(len(out)))
	return out, err
}

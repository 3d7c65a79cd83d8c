package enrich

import (
	"context"

	"github.com/stahnma/gh-search/internal/cache"
	"github.com/stahnma/gh-search/internal/metrics"
)

// CachedTranslator remembers successful translations.
type CachedTranslator struct {
	next  Translator
	cache *cache.Cache
}

// NewCachedTranslator wraps next. A nil cache disables caching.
func NewCachedTranslator(next Translator, c *cache.Cache) *CachedTranslator {
	return &CachedTranslator{next: next, cache: c}
}

// Translate implements Translator.
func (t *CachedTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	if t.cache == nil {
		return t.next.Translate(ctx, text, target)
	}
	key := cache.Key("translate", target, text)
	if out, ok := t.cache.GetString(key); ok {
		metrics.Translations.WithLabelValues("cached").Inc()
		return out, nil
	}
	out, err := t.next.Translate(ctx, text, target)
	if err != nil {
		return "", err
	}
	t.cache.Set(key, out)
	return out, nil
}

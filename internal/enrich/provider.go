// Package enrich detects the language of repository descriptions and
// translates the ones outside an accepted set.
package enrich

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/stahnma/gh-search/internal/logging"
	"github.com/stahnma/gh-search/internal/metrics"
)

// DefaultTag is reported when a language cannot be determined.
const DefaultTag = "en"

// Provider classifies and translates text. Implementations never fail: any
// problem degrades to DefaultTag or the original text.
type Provider interface {
	Classify(ctx context.Context, text string) string
	Translate(ctx context.Context, text, target string) string
}

// Passthrough is the Provider used when no detection or translation
// capability is available.
type Passthrough struct{}

// Classify always returns DefaultTag.
func (Passthrough) Classify(context.Context, string) string { return DefaultTag }

// Translate returns text unchanged.
func (Passthrough) Translate(_ context.Context, text, _ string) string { return text }

// Detector returns an ISO 639-1 tag for text, or "" when unsure.
type Detector interface {
	Detect(text string) string
}

// Translator translates text into the target language.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// Service is a Provider backed by a Detector and a Translator.
type Service struct {
	detector   Detector
	translator Translator
	log        zerolog.Logger
}

// NewService creates a Service. A nil detector classifies everything as
// DefaultTag; a nil translator returns text unchanged.
func NewService(d Detector, t Translator) *Service {
	return &Service{detector: d, translator: t, log: logging.NewLogger("enrich")}
}

// Classify implements Provider.
func (s *Service) Classify(_ context.Context, text string) string {
	if s.detector == nil {
		return DefaultTag
	}
	tag := s.detector.Detect(text)
	if tag == "" {
		s.log.Debug().Str("text", truncate(text, 40)).Msg("Language undetermined, assuming default")
		return DefaultTag
	}
	return tag
}

// Translate implements Provider.
func (s *Service) Translate(ctx context.Context, text, target string) string {
	if s.translator == nil {
		return text
	}
	out, err := s.translator.Translate(ctx, text, target)
	if err != nil {
		metrics.Translations.WithLabelValues("error").Inc()
		s.log.Warn().Err(err).Msg("Translation failed, keeping original text")
		return text
	}
	metrics.Translations.WithLabelValues("ok").Inc()
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

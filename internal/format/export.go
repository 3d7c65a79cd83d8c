package format

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/stahnma/gh-search/internal/enrich"
	"github.com/stahnma/gh-search/internal/logging"
	"github.com/stahnma/gh-search/internal/metrics"
	"github.com/stahnma/gh-search/internal/record"
)

// Spec describes one export.
type Spec struct {
	Format Format
	Path   string
	Enrich bool
}

// IOError reports a failure to write an export file.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Exporter enriches and renders collections.
type Exporter struct {
	provider enrich.Provider
	policy   enrich.Policy
	log      zerolog.Logger
}

// NewExporter creates an Exporter. A nil provider means enrichment runs as
// a passthrough.
func NewExporter(p enrich.Provider, pol enrich.Policy) *Exporter {
	if p == nil {
		p = enrich.Passthrough{}
	}
	return &Exporter{provider: p, policy: pol, log: logging.NewLogger("export")}
}

// Render writes recs to w in spec.Format, enriching first when spec.Enrich
// is set. recs is not modified.
func (e *Exporter) Render(ctx context.Context, w io.Writer, recs record.Collection, spec Spec) error {
	if spec.Enrich {
		recs = enrich.Apply(ctx, e.provider, e.policy, recs)
	}

	switch spec.Format {
	case JSON:
		return WriteJSON(w, recs)
	case CSV, TSV:
		return WriteDelimited(w, recs, spec.Format.Delimiter())
	case XML:
		return WriteXML(w, recs)
	}
	return fmt.Errorf("unknown format %q", spec.Format)
}

// Export renders recs into spec.Path. The file is only written once
// rendering succeeded; an empty delimited export writes no file and returns
// ErrEmptyCollection. Write failures are returned as *IOError.
func (e *Exporter) Export(ctx context.Context, recs record.Collection, spec Spec) error {
	var buf bytes.Buffer
	if err := e.Render(ctx, &buf, recs, spec); err != nil {
		if errors.Is(err, ErrEmptyCollection) {
			metrics.Exports.WithLabelValues(string(spec.Format), "empty").Inc()
			e.log.Warn().Str("format", string(spec.Format)).Msg("Nothing to export")
			return err
		}
		metrics.Exports.WithLabelValues(string(spec.Format), "error").Inc()
		return fmt.Errorf("rendering %s: %w", spec.Format, err)
	}

	if err := os.WriteFile(spec.Path, buf.Bytes(), 0o644); err != nil {
		metrics.Exports.WithLabelValues(string(spec.Format), "error").Inc()
		e.log.Error().Err(err).Str("path", spec.Path).Msg("Export failed")
		return &IOError{Path: spec.Path, Err: err}
	}

	metrics.Exports.WithLabelValues(string(spec.Format), "ok").Inc()
	e.log.Debug().Str("path", spec.Path).Int("records", len(recs)).Int("bytes", buf.Len()).Msg("Export written")
	return nil
}

package enrich

import (
	"context"

	"golang.org/x/text/language"

	"github.com/stahnma/gh-search/internal/record"
)

// Policy decides which descriptions get translated and into what.
type Policy struct {
	Target   language.Tag
	Accepted []language.Tag
}

// DefaultPolicy translates into English and leaves English and Arabic alone.
func DefaultPolicy() Policy {
	return Policy{
		Target:   language.English,
		Accepted: []language.Tag{language.English, language.Arabic},
	}
}

// Accepts reports whether text tagged tag is left untranslated. Tags are
// compared by base language, so "en-GB" matches English. Unparseable tags
// are not accepted.
func (p Policy) Accepts(tag string) bool {
	t, err := language.Parse(tag)
	if err != nil {
		return false
	}
	base, _ := t.Base()
	for _, a := range p.Accepted {
		if ab, _ := a.Base(); ab == base {
			return true
		}
	}
	return false
}

// Apply returns a copy of recs with the translation of every non-empty
// description decided. Descriptions in an accepted language get an
// explicitly empty translation; records without a description are left
// untouched and their translation stays unset.
func Apply(ctx context.Context, p Provider, pol Policy, recs record.Collection) record.Collection {
	if p == nil {
		p = Passthrough{}
	}
	target := pol.Target.String()

	out := make(record.Collection, len(recs))
	copy(out, recs)
	for i := range out {
		desc := out[i].Description()
		if desc == "" {
			continue
		}
		if pol.Accepts(p.Classify(ctx, desc)) {
			out[i].SetTranslation("")
			continue
		}
		out[i].SetTranslation(p.Translate(ctx, desc, target))
	}
	return out
}

// Package record holds the repository records collected from search pages.
package record

import (
	"encoding/json"
	"errors"
	"fmt"

	gh "github.com/google/go-github/v68/github"
)

// TranslatedField is the key used for the derived translation of description.
const TranslatedField = "description_translated"

// Translation is the derived, optional translation of a record description.
// Set distinguishes an explicit empty translation from no translation.
type Translation struct {
	Text string
	Set  bool
}

// Record is one repository search item. It keeps every upstream field in
// upstream order next to a typed view of the same data.
type Record struct {
	fields      []Field
	repo        *gh.Repository
	Translation Translation
}

// Decode builds a Record from a raw search item. Only malformed JSON and
// non-object items are errors; fields whose type does not fit the typed view
// are kept in the ordered fields and left zero in Repo().
func Decode(raw []byte) (Record, error) {
	v, err := ParseValue(raw)
	if err != nil {
		return Record{}, fmt.Errorf("parsing item: %w", err)
	}
	if v.Kind() != KindObject {
		return Record{}, errors.New("parsing item: not a JSON object")
	}
	fields := v.Fields()
	return Record{fields: fields, repo: typedView(raw, fields)}, nil
}

// typedView decodes raw into a Repository, falling back to one field at a
// time so a single mistyped field does not blank the rest.
func typedView(raw []byte, fields []Field) *gh.Repository {
	repo := new(gh.Repository)
	if err := json.Unmarshal(raw, repo); err == nil {
		return repo
	}
	repo = new(gh.Repository)
	for _, f := range fields {
		one, err := Object(f).MarshalJSON()
		if err != nil {
			continue
		}
		// a field that does not fit only leaves its own value zero
		_ = json.Unmarshal(one, repo)
	}
	return repo
}

// FromFields builds a Record from ordered fields.
func FromFields(fields ...Field) (Record, error) {
	raw, err := Object(fields...).MarshalJSON()
	if err != nil {
		return Record{}, err
	}
	return Decode(raw)
}

// Fields returns the upstream fields in upstream order.
func (r Record) Fields() []Field { return r.fields }

// Lookup returns the upstream field named key.
func (r Record) Lookup(key string) (Value, bool) {
	for _, f := range r.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Repo returns the typed view of the record. It is never nil.
func (r Record) Repo() *gh.Repository {
	if r.repo == nil {
		return &gh.Repository{}
	}
	return r.repo
}

// Description returns the upstream description, "" when absent or null.
func (r Record) Description() string {
	return r.Repo().GetDescription()
}

// SetTranslation records text as the description translation.
func (r *Record) SetTranslation(text string) {
	r.Translation = Translation{Text: text, Set: true}
}

// MarshalJSON writes the upstream fields followed by the translation, if set.
func (r Record) MarshalJSON() ([]byte, error) {
	fields := r.fields
	if r.Translation.Set {
		fields = make([]Field, 0, len(r.fields)+1)
		for _, f := range r.fields {
			if f.Key != TranslatedField {
				fields = append(fields, f)
			}
		}
		fields = append(fields, Field{Key: TranslatedField, Value: String(r.Translation.Text)})
	}
	return Object(fields...).MarshalJSON()
}

// Collection is an ordered run of records. Upstream ranking order matters.
type Collection []Record

// Truncate returns at most n leading records.
func (c Collection) Truncate(n int) Collection {
	if n < 0 {
		n = 0
	}
	if len(c) <= n {
		return c
	}
	return c[:n]
}

package format

import (
	"encoding/csv"
	"errors"
	"io"

	"github.com/stahnma/gh-search/internal/record"
)

// ErrEmptyCollection is returned by delimited writers, which write nothing
// at all for an empty collection.
var ErrEmptyCollection = errors.New("empty collection")

// Columns is the fixed projection of delimited exports.
var Columns = []string{
	"name",
	"full_name",
	"html_url",
	"description",
	record.TranslatedField,
	"stargazers_count",
	"watchers_count",
	"forks_count",
	"language",
	"license",
	"updated_at",
}

// WriteDelimited writes a header and one row per record separated by delim.
func WriteDelimited(w io.Writer, recs record.Collection, delim rune) error {
	if len(recs) == 0 {
		return ErrEmptyCollection
	}

	cw := csv.NewWriter(w)
	cw.Comma = delim
	cw.UseCRLF = true

	if err := cw.Write(Columns); err != nil {
		return err
	}
	row := make([]string, len(Columns))
	for _, r := range recs {
		for i, col := range Columns {
			row[i] = cell(r, col)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cell(r record.Record, col string) string {
	if col == record.TranslatedField && r.Translation.Set {
		return r.Translation.Text
	}
	v, ok := r.Lookup(col)
	if !ok {
		return ""
	}
	if col == "license" {
		if v.Kind() != record.KindObject {
			return ""
		}
		name, _ := v.Lookup("name")
		return name.Text()
	}
	return v.Text()
}

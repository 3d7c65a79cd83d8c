package format

import (
	"encoding/json"
	"io"

	"github.com/stahnma/gh-search/internal/record"
)

// WriteJSON writes recs as an indented JSON array. Fields keep their
// upstream order and neither HTML nor non-ASCII characters are escaped.
func WriteJSON(w io.Writer, recs record.Collection) error {
	if recs == nil {
		recs = record.Collection{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(recs)
}

// Package format renders record collections as JSON, CSV, TSV or XML and
// prints console previews.
package format

import (
	"fmt"
	"io"
	"strings"
)

// Format is an export file format.
type Format string

const (
	JSON Format = "json"
	CSV  Format = "csv"
	TSV  Format = "tsv"
	XML  Format = "xml"
)

// Formats lists the supported formats in menu order.
var Formats = []Format{JSON, CSV, TSV, XML}

// Parse parses a format name such as "csv" or "XML".
func Parse(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want json, csv, tsv or xml)", s)
}

// ParseChoice maps a 1-based menu choice to a format.
func ParseChoice(choice string) (Format, bool) {
	switch strings.TrimSpace(choice) {
	case "1":
		return JSON, true
	case "2":
		return CSV, true
	case "3":
		return TSV, true
	case "4":
		return XML, true
	}
	return JSON, false
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string { return string(f) }

// Label returns the upper-case display name, e.g. "CSV".
func (f Format) Label() string { return strings.ToUpper(string(f)) }

// Delimiter returns the field separator of delimited formats and 0 otherwise.
func (f Format) Delimiter() rune {
	switch f {
	case CSV:
		return ','
	case TSV:
		return '\t'
	}
	return 0
}

// Filename joins base and the format extension.
func Filename(base string, f Format) string {
	return base + "." + f.Extension()
}

// DefaultBase derives a file base name from a search query.
func DefaultBase(query string) string {
	return "github_" + strings.ReplaceAll(query, " ", "_")
}

// WriteFenced runs fn, wrapping its output in a slack code block when
// slackMode is set.
func WriteFenced(w io.Writer, slackMode bool, fn func(io.Writer) error) error {
	if slackMode {
		fmt.Fprintln(w, "```")
	}
	if err := fn(w); err != nil {
		return err
	}
	if slackMode {
		fmt.Fprintln(w, "```")
	}
	return nil
}

package format

import (
	"encoding/xml"
	"io"

	"github.com/stahnma/gh-search/internal/record"
)

// skippedXMLFields are never written, whatever their value.
var skippedXMLFields = map[string]bool{"owner": true, "license": true}

// WriteXML writes recs as <repositories><repository>...</repository></repositories>.
// Each scalar field becomes an element named after its key. owner and license
// are always skipped, as are other objects and arrays such as topics.
func WriteXML(w io.Writer, recs record.Collection) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	root := xml.StartElement{Name: xml.Name{Local: "repositories"}}
	if err := enc.EncodeToken(root); err != nil {
		return err
	}
	for _, r := range recs {
		if err := writeRepository(enc, r); err != nil {
			return err
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func writeRepository(enc *xml.Encoder, r record.Record) error {
	start := xml.StartElement{Name: xml.Name{Local: "repository"}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, f := range r.Fields() {
		if skippedXMLFields[f.Key] || !f.Value.IsScalar() {
			continue
		}
		if f.Key == record.TranslatedField && r.Translation.Set {
			continue
		}
		if err := writeElement(enc, f.Key, f.Value.Text()); err != nil {
			return err
		}
		if f.Key == "description" && r.Translation.Set {
			if err := writeElement(enc, record.TranslatedField, r.Translation.Text); err != nil {
				return err
			}
		}
	}
	return enc.EncodeToken(start.End())
}

func writeElement(enc *xml.Encoder, name, text string) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if text != "" {
		if err := enc.EncodeToken(xml.CharData(text)); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

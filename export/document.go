package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"photomark/shape"
)

// Version is the document format written by ToDocument.
const Version = "1.0"

// Document is the persisted annotation set of one image. Objects are in
// z-order, bottom first.
type Document struct {
	Version string         `json:"version"`
	Objects []shape.Object `json:"objects"`
}

// MarshalJSON always writes objects as an array.
func (d Document) MarshalJSON() ([]byte, error) {
	type doc Document
	out := doc(d)
	if out.Objects == nil {
		out.Objects = []shape.Object{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON keeps entries that are not JSON objects as nil placeholders
// so a single bad entry does not fail the whole document.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw struct {
		Version string            `json:"version"`
		Objects []json.RawMessage `json:"objects"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Version = raw.Version
	d.Objects = make([]shape.Object, len(raw.Objects))
	for i, r := range raw.Objects {
		if t := bytes.TrimSpace(r); len(t) == 0 || t[0] != '{' {
			continue
		}
		var o shape.Object
		if err := json.Unmarshal(r, &o); err == nil {
			d.Objects[i] = o
		}
	}
	return nil
}

// ParseDocument decodes a JSON document.
func ParseDocument(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse annotation document: %w", err)
	}
	return &d, nil
}

// ToDocument serializes shapes in order, leaving out the background photo
// and ephemeral previews.
func ToDocument(shapes []shape.Shape) *Document {
	d := &Document{Version: Version, Objects: []shape.Object{}}
	for _, s := range shapes {
		if s == nil || s.Kind() == shape.KindBackground || s.Flags().Ephemeral {
			continue
		}
		d.Objects = append(d.Objects, s.ToObject())
	}
	return d
}

// FromDocument rebuilds the shapes of doc with reg, or the default registry
// when reg is nil. Entries that are not objects, have no kind or fail to
// decode are skipped; one error is returned per skipped entry.
func FromDocument(doc *Document, reg *shape.Registry) ([]shape.Shape, []error) {
	if doc == nil {
		return nil, nil
	}
	if reg == nil {
		reg = shape.Default()
	}
	var (
		shapes []shape.Shape
		errs   []error
	)
	for i, o := range doc.Objects {
		if o == nil {
			errs = append(errs, fmt.Errorf("entry %d: %w: not an object", i, shape.ErrMalformed))
			continue
		}
		if o.Kind() == "" {
			errs = append(errs, fmt.Errorf("entry %d: %w: missing kind", i, shape.ErrMalformed))
			continue
		}
		s, err := reg.Decode(o)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		shapes = append(shapes, s)
	}
	return shapes, errs
}

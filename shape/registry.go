package shape

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// DecodeFunc rebuilds a shape from its object form.
type DecodeFunc func(Object) (Shape, error)

// Decoder binds a kind, and any legacy tags it used to be stored under, to its
// decode function.
type Decoder struct {
	Kind    Kind
	Aliases []Kind
	Decode  DecodeFunc
}

// Registry is an immutable kind-to-decoder table.
type Registry struct {
	byKind map[Kind]DecodeFunc
	kinds  []Kind
}

// NewRegistry validates decoders and builds a registry. Empty tags, missing
// decode functions and duplicate tags (including aliases) are rejected.
func NewRegistry(decoders ...Decoder) (*Registry, error) {
	r := &Registry{byKind: make(map[Kind]DecodeFunc)}
	for _, d := range decoders {
		if d.Kind == "" {
			return nil, errors.New("shape: decoder with empty kind")
		}
		if d.Decode == nil {
			return nil, fmt.Errorf("shape: decoder %q has no decode function", d.Kind)
		}
		for _, k := range append([]Kind{d.Kind}, d.Aliases...) {
			if k == "" {
				return nil, fmt.Errorf("shape: decoder %q has an empty alias", d.Kind)
			}
			if _, dup := r.byKind[k]; dup {
				return nil, fmt.Errorf("shape: kind %q registered twice", k)
			}
			r.byKind[k] = d.Decode
		}
		r.kinds = append(r.kinds, d.Kind)
	}
	sort.Slice(r.kinds, func(i, j int) bool { return r.kinds[i] < r.kinds[j] })
	return r, nil
}

// Kinds lists the canonical kinds, sorted.
func (r *Registry) Kinds() []Kind { return append([]Kind(nil), r.kinds...) }

// Has reports whether k, canonical or alias, can be decoded.
func (r *Registry) Has(k Kind) bool {
	_, ok := r.byKind[k]
	return ok
}

// Decode rebuilds the shape described by o.
func (r *Registry) Decode(o Object) (Shape, error) {
	if o == nil {
		return nil, fmt.Errorf("%w: nil object", ErrMalformed)
	}
	raw, ok := o["kind"]
	if !ok {
		return nil, fmt.Errorf("%w: missing kind", ErrMalformed)
	}
	kind, ok := raw.(string)
	if !ok || kind == "" {
		return nil, fmt.Errorf("%w: kind is not a string", ErrMalformed)
	}
	decode, ok := r.byKind[Kind(kind)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	s, err := decode(o)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return s, nil
}

// Builtins returns the decoders for every annotation kind. The background
// image is deliberately absent: it is never persisted.
func Builtins() []Decoder {
	return []Decoder{
		{Kind: KindDimension, Decode: decodeDimension},
		{Kind: KindArrow, Decode: decodeArrow},
		{Kind: KindCircle, Aliases: []Kind{"circle", "ellipse"}, Decode: decodeCircle},
		{Kind: KindRectangle, Aliases: []Kind{"rectangle", "rect"}, Decode: decodeRectangle},
		{Kind: KindPolygon, Decode: decodePolygon},
		{Kind: KindPolyline, Decode: decodePolyline},
		{Kind: KindFreehand, Aliases: []Kind{"path"}, Decode: decodeFreehand},
		{Kind: KindText, Aliases: []Kind{"text", "i-text"}, Decode: decodeText},
	}
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := NewRegistry(Builtins()...)
	if err != nil {
		panic(err)
	}
	return r
})

// Default returns the registry of built-in kinds.
func Default() *Registry { return defaultRegistry() }

// FromObject decodes o with the default registry.
func FromObject(o Object) (Shape, error) { return Default().Decode(o) }

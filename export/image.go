// Package export flattens a scene into an encoded raster image and converts
// the shape collection to and from the persisted annotation document.
package export

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// DefaultQuality is the encoder quality used when Options.Quality is nil.
const DefaultQuality = 0.9

// Format is an output encoding.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

var (
	ErrQualityRange = errors.New("export: quality must be within [0,1]")
	ErrNoSurface    = errors.New("export: no rendering surface")
	ErrFormat       = errors.New("export: unsupported format")
)

// Options selects the encoding. Quality only affects JPEG but is validated
// for every format.
type Options struct {
	Format  Format
	Quality *float64
}

// Quality returns a pointer to q, for building Options inline.
func Quality(q float64) *float64 { return &q }

func (o Options) resolve() (Format, float64, error) {
	q := DefaultQuality
	if o.Quality != nil {
		q = *o.Quality
		if math.IsNaN(q) || q < 0 || q > 1 {
			return "", 0, fmt.Errorf("%w: got %v", ErrQualityRange, q)
		}
	}
	f, err := ParseFormat(string(o.Format))
	if err != nil {
		return "", 0, err
	}
	return f, q, nil
}

// ParseFormat normalizes a format name. Empty means PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrFormat, s)
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// MIME is the media type of f.
func (f Format) MIME() string { return "image/" + string(f) }

// Ext is the usual file extension of f, without the dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}

// Snapshotter is anything that can render itself at 1:1 scale.
type Snapshotter interface {
	Snapshot() image.Image
}

// SnapshotFunc adapts a render function to Snapshotter.
type SnapshotFunc func() image.Image

func (f SnapshotFunc) Snapshot() image.Image {
	if f == nil {
		return nil
	}
	return f()
}

// Encode writes img to w in the requested format.
func Encode(w io.Writer, img image.Image, opts Options) error {
	if img == nil {
		return ErrNoSurface
	}
	f, q, err := opts.resolve()
	if err != nil {
		return err
	}
	switch f {
	case FormatJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality(q)})
	default:
		err = png.Encode(w, img)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	return nil
}

// jpegQuality maps [0,1] onto the encoder's 1..100 scale.
func jpegQuality(q float64) int {
	return max(1, min(100, int(math.Round(q*100))))
}

// ExportImage renders src at 1:1 and returns it as a base64 data URL.
// Parameter problems are reported before anything is rendered.
func ExportImage(src Snapshotter, opts Options) (string, error) {
	f, _, err := opts.resolve()
	if err != nil {
		return "", err
	}
	if src == nil {
		return "", ErrNoSurface
	}
	img := src.Snapshot()
	if img == nil {
		return "", ErrNoSurface
	}
	var buf bytes.Buffer
	if err := Encode(&buf, img, opts); err != nil {
		return "", err
	}
	return EncodeDataURL(f.MIME(), buf.Bytes()), nil
}

// EncodeDataURL wraps data in a base64 data URL.
func EncodeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL splits a base64 data URL into its payload and media type.
func DecodeDataURL(s string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, "", errors.New("export: not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", errors.New("export: data URL has no payload")
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return nil, "", errors.New("export: data URL is not base64")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("export: data URL payload: %w", err)
	}
	return data, mime, nil
}

// Thumbnail scales img down to at most maxWidth pixels wide, keeping its
// aspect ratio. Smaller images are returned unchanged.
func Thumbnail(img image.Image, maxWidth int) image.Image {
	if img == nil || maxWidth <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= maxWidth {
		return img
	}
	h := max(1, int(math.Round(float64(b.Dy())*float64(maxWidth)/float64(b.Dx()))))
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

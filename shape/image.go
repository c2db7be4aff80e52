package shape

import (
	"image"

	"github.com/golang/geo/r2"
)

// Image is the photograph under the annotations. It is always locked and is
// never part of a persisted document.
type Image struct {
	base
	img image.Image
}

// NewImage wraps img as a locked background placed at the origin.
func NewImage(img image.Image) *Image {
	b := newBase(KindBackground, DefaultStyle())
	b.flags = lockedFlags()
	return &Image{base: b, img: img}
}

func (i *Image) Image() image.Image { return i.img }

func (i *Image) Width() int {
	if i.img == nil {
		return 0
	}
	return i.img.Bounds().Dx()
}

func (i *Image) Height() int {
	if i.img == nil {
		return 0
	}
	return i.img.Bounds().Dy()
}

// SetInteractive is a no-op: the background stays locked.
func (i *Image) SetInteractive(bool) {}

func (i *Image) Bounds() r2.Rect {
	return r2.RectFromPoints(Pt(0, 0), Pt(float64(i.Width()), float64(i.Height())))
}

func (i *Image) Contains(p Point) bool { return i.Bounds().ContainsPoint(p) }

// Translate and Resize are no-ops on the locked background.
func (i *Image) Translate(dx, dy float64)            {}
func (i *Image) Resize(sx, sy float64, origin Point) {}

func (i *Image) Render(r Renderer) {
	if i.img != nil {
		r.DrawImage(i.img, Pt(0, 0), i.flags.Opacity)
	}
}

// ToObject describes the background; it carries no pixels.
func (i *Image) ToObject() Object {
	o := i.baseObject()
	o["width"] = float64(i.Width())
	o["height"] = float64(i.Height())
	return o
}

func (i *Image) Clone() Shape {
	c := *i
	return &c
}

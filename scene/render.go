package scene

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/geo/r2"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"

	"photomark/shape"
)

// Renderer draws shapes onto a gg context.
type Renderer struct {
	dc     *gg.Context
	logger *zap.Logger
}

// NewRenderer wraps dc. A nil logger discards colour warnings.
func NewRenderer(dc *gg.Context, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	return &Renderer{dc: dc, logger: logger}
}

func (r *Renderer) color(spec string, opacity float64) (color.NRGBA, bool) {
	if spec == "" {
		return color.NRGBA{}, false
	}
	c, err := ParseColor(spec)
	if err != nil {
		r.logger.Debug("unparseable color", zap.String("color", spec), zap.Error(err))
		return color.NRGBA{}, false
	}
	c = withOpacity(c, opacity)
	return c, c.A > 0
}

// finish fills then strokes the current path according to p.
func (r *Renderer) finish(p shape.Paint) {
	if fill, ok := r.color(p.Fill, p.Opacity); ok {
		r.dc.SetColor(fill)
		r.dc.FillPreserve()
	}
	if stroke, ok := r.color(p.Stroke, p.Opacity); ok && p.Width > 0 {
		r.dc.SetColor(stroke)
		r.dc.SetLineWidth(p.Width)
		r.dc.StrokePreserve()
	}
	r.dc.ClearPath()
}

func (r *Renderer) DrawPolyline(points []shape.Point, closed bool, p shape.Paint) {
	if len(points) < 2 {
		return
	}
	r.dc.NewSubPath()
	r.dc.MoveTo(points[0].X, points[0].Y)
	for _, pt := range points[1:] {
		r.dc.LineTo(pt.X, pt.Y)
	}
	if closed {
		r.dc.ClosePath()
	} else {
		p.Fill = ""
	}
	r.finish(p)
}

func (r *Renderer) DrawEllipse(center shape.Point, rx, ry float64, p shape.Paint) {
	r.dc.DrawEllipse(center.X, center.Y, rx, ry)
	r.finish(p)
}

func (r *Renderer) DrawRect(rect r2.Rect, p shape.Paint) {
	r.dc.DrawRectangle(rect.X.Lo, rect.Y.Lo, rect.X.Length(), rect.Y.Length())
	r.finish(p)
}

func (r *Renderer) DrawPath(segs []shape.Segment, p shape.Paint) {
	for _, s := range segs {
		switch {
		case s.Op == shape.MoveTo && len(s.Pts) == 1:
			r.dc.MoveTo(s.Pts[0].X, s.Pts[0].Y)
		case s.Op == shape.LineTo && len(s.Pts) == 1:
			r.dc.LineTo(s.Pts[0].X, s.Pts[0].Y)
		case s.Op == shape.QuadTo && len(s.Pts) == 2:
			r.dc.QuadraticTo(s.Pts[0].X, s.Pts[0].Y, s.Pts[1].X, s.Pts[1].Y)
		case s.Op == shape.CubicTo && len(s.Pts) == 3:
			r.dc.CubicTo(s.Pts[0].X, s.Pts[0].Y, s.Pts[1].X, s.Pts[1].Y, s.Pts[2].X, s.Pts[2].Y)
		case s.Op == shape.Close:
			r.dc.ClosePath()
		}
	}
	r.finish(p)
}

func (r *Renderer) DrawText(t shape.TextRun) {
	if len(t.Lines) == 0 {
		return
	}
	if bg, ok := r.color(t.Background, t.Opacity); ok {
		w, h := shape.MeasureText(t.Lines, t.FontSize)
		r.dc.SetColor(bg)
		r.dc.DrawRectangle(t.Origin.X, t.Origin.Y, w, h)
		r.dc.Fill()
	}
	fg, ok := r.color(t.Color, t.Opacity)
	if !ok {
		return
	}
	face := shape.Face(t.FontSize)
	ascent := float64(face.Metrics().Ascent) / 64
	r.dc.SetFontFace(face)
	r.dc.SetColor(fg)
	for i, line := range t.Lines {
		r.dc.DrawString(line, t.Origin.X, t.Origin.Y+float64(i)*t.LineHeight+ascent)
	}
}

func (r *Renderer) DrawImage(img image.Image, at shape.Point, opacity float64) {
	if img == nil || opacity <= 0 {
		return
	}
	if opacity >= 1 {
		r.dc.DrawImage(img, int(at.X), int(at.Y))
		return
	}
	dst, ok := r.dc.Image().(*image.RGBA)
	if !ok {
		r.dc.DrawImage(img, int(at.X), int(at.Y))
		return
	}
	b := img.Bounds()
	off := image.Pt(int(at.X), int(at.Y))
	mask := image.NewUniform(color.Alpha{A: uint8(opacity*255 + 0.5)})
	xdraw.DrawMask(dst, b.Sub(b.Min).Add(off), img, b.Min, mask, image.Point{}, xdraw.Over)
}

// Snapshot renders the background, every object and the live brush stroke at
// 1:1 scale. Without a background the surface is white.
func (s *Scene) Snapshot() image.Image {
	return s.surface(s.Draw)
}

// Flatten renders what would be exported: the background and every
// persistent object. Previews and a stroke in progress are left out.
func (s *Scene) Flatten() image.Image {
	return s.surface(func(r shape.Renderer) {
		if s.background != nil {
			s.background.Render(r)
		}
		for _, o := range s.objects {
			if !o.Flags().Ephemeral {
				o.Render(r)
			}
		}
	})
}

func (s *Scene) surface(draw func(shape.Renderer)) image.Image {
	if s.width == 0 || s.height == 0 {
		return nil
	}
	dc := gg.NewContext(s.width, s.height)
	dc.SetColor(color.White)
	dc.Clear()
	draw(NewRenderer(dc, s.logger))
	return dc.Image()
}

// Draw renders the scene through r, bottom first.
func (s *Scene) Draw(r shape.Renderer) {
	if s.background != nil {
		s.background.Render(r)
	}
	for _, o := range s.objects {
		o.Render(r)
	}
	if len(s.stroke) >= 2 {
		r.DrawPolyline(s.stroke, false, shape.Paint{Stroke: s.brush.Color, Width: s.brush.Width, Opacity: 1})
	}
}

package shape

import (
	"math"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// LineSpacing is the line height as a multiple of the font size.
const LineSpacing = 1.16

// FontFamily is the family recorded for text annotations; rendering always
// uses the bundled Go regular face.
const FontFamily = "Go Regular"

var faces = struct {
	sync.Mutex
	font   *truetype.Font
	bySize map[float64]font.Face
}{bySize: make(map[float64]font.Face)}

// faceStep is the size granularity of cached faces. Labels scale
// continuously, so sizes are rounded to keep the cache small.
const faceStep = 0.5

// Face returns the shared text face at the given size, rounded to faceStep.
// Faces are cached; the returned face must only be used from one goroutine
// at a time.
func Face(size float64) font.Face {
	faces.Lock()
	defer faces.Unlock()
	return faceLocked(size)
}

func faceLocked(size float64) font.Face {
	if size <= 0 {
		size = DefaultStyle().FontSize
	}
	size = max(faceStep, math.Round(size/faceStep)*faceStep)
	if f, ok := faces.bySize[size]; ok {
		return f
	}
	if faces.font == nil {
		// goregular.TTF is bundled; a parse failure is a build defect.
		ttf, err := truetype.Parse(goregular.TTF)
		if err != nil {
			panic(err)
		}
		faces.font = ttf
	}
	f := truetype.NewFace(faces.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	faces.bySize[size] = f
	return f
}

// MeasureText returns the width of the widest line and the total block height.
func MeasureText(lines []string, size float64) (w, h float64) {
	faces.Lock()
	defer faces.Unlock()
	f := faceLocked(size)
	for _, line := range lines {
		adv := font.MeasureString(f, line)
		if lw := float64(adv) / 64; lw > w {
			w = lw
		}
	}
	if size <= 0 {
		size = DefaultStyle().FontSize
	}
	n := len(lines)
	if n == 0 {
		n = 1
	}
	return w, float64(n) * size * LineSpacing
}

package scene

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseColor understands the colour forms annotations are stored with:
// "#rgb", "#rrggbb", "#rrggbbaa", "rgb(r,g,b)", "rgba(r,g,b,a)" with a in
// [0,1], "transparent", and SVG colour names.
func ParseColor(s string) (color.NRGBA, error) {
	val := strings.ToLower(strings.TrimSpace(s))
	if val == "" {
		return color.NRGBA{}, fmt.Errorf("color cannot be empty")
	}
	if val == "transparent" || val == "none" {
		return color.NRGBA{}, nil
	}
	if c, ok := colornames.Map[val]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}
	if strings.HasPrefix(val, "#") {
		return parseHex(val[1:], s)
	}
	if strings.HasPrefix(val, "rgb") {
		return parseFunc(val, s)
	}
	return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
}

func parseHex(hex, orig string) (color.NRGBA, error) {
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", orig)
	}
	var v [4]uint8
	v[3] = 255
	for i := 0; i < len(hex)/2; i++ {
		n, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q", orig)
		}
		v[i] = uint8(n)
	}
	return color.NRGBA{R: v[0], G: v[1], B: v[2], A: v[3]}, nil
}

func parseFunc(val, orig string) (color.NRGBA, error) {
	open := strings.IndexByte(val, '(')
	if open < 0 || !strings.HasSuffix(val, ")") {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", orig)
	}
	name := val[:open]
	parts := strings.Split(val[open+1:len(val)-1], ",")
	if (name == "rgb" && len(parts) != 3) || (name == "rgba" && len(parts) != 4) || (name != "rgb" && name != "rgba") {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", orig)
	}
	var v [3]uint8
	for i := 0; i < 3; i++ {
		n, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil || n < 0 || n > 255 {
			return color.NRGBA{}, fmt.Errorf("invalid color %q", orig)
		}
		v[i] = uint8(n + 0.5)
	}
	a := uint8(255)
	if name == "rgba" {
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || f < 0 || f > 1 {
			return color.NRGBA{}, fmt.Errorf("invalid color %q", orig)
		}
		a = uint8(f*255 + 0.5)
	}
	return color.NRGBA{R: v[0], G: v[1], B: v[2], A: a}, nil
}

// withOpacity scales c's alpha by opacity in [0,1].
func withOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	if opacity < 0 {
		opacity = 0
	}
	if opacity < 1 {
		c.A = uint8(float64(c.A)*opacity + 0.5)
	}
	return c
}

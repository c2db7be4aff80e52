package shape

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golang/geo/r2"
)

// PathOp is an SVG path command letter. Only absolute commands are stored.
type PathOp byte

const (
	MoveTo  PathOp = 'M'
	LineTo  PathOp = 'L'
	QuadTo  PathOp = 'Q'
	CubicTo PathOp = 'C'
	Close   PathOp = 'Z'
)

func (op PathOp) arity() int {
	switch op {
	case MoveTo, LineTo:
		return 1
	case QuadTo:
		return 2
	case CubicTo:
		return 3
	default:
		return 0
	}
}

// Segment is one path command with its absolute points; the last point is the
// segment's end, the others are control points.
type Segment struct {
	Op  PathOp
	Pts []Point
}

// ParsePath reads an SVG-style path string. Relative commands (m, l, q, c) are
// converted to absolute ones.
func ParsePath(s string) ([]Segment, error) {
	toks := tokenizePath(s)
	var (
		segs    []Segment
		cur     Point
		start   Point
		op      PathOp
		rel     bool
		started bool
	)
	for i := 0; i < len(toks); {
		tok := toks[i]
		if isPathLetter(tok) {
			c := tok[0]
			rel = c >= 'a' && c <= 'z'
			op = PathOp(strings.ToUpper(tok)[0])
			i++
			switch op {
			case MoveTo, LineTo, QuadTo, CubicTo:
			case Close:
				if !started {
					return nil, fmt.Errorf("path: %q before moveto", tok)
				}
				segs = append(segs, Segment{Op: Close})
				cur = start
				continue
			default:
				return nil, fmt.Errorf("path: unsupported command %q", tok)
			}
		} else if op == 0 || op == Close {
			return nil, fmt.Errorf("path: number %q without command", tok)
		}
		if op != MoveTo && !started {
			return nil, fmt.Errorf("path: %c before moveto", op)
		}
		n := op.arity() * 2
		if i+n > len(toks) {
			return nil, fmt.Errorf("path: %c needs %d numbers", op, n)
		}
		pts := make([]Point, op.arity())
		for j := range pts {
			x, err := strconv.ParseFloat(toks[i+2*j], 64)
			if err != nil {
				return nil, fmt.Errorf("path: %w", err)
			}
			y, err := strconv.ParseFloat(toks[i+2*j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("path: %w", err)
			}
			p := Pt(x, y)
			if rel {
				p = p.Add(cur)
			}
			pts[j] = p
		}
		i += n
		segs = append(segs, Segment{Op: op, Pts: pts})
		cur = pts[len(pts)-1]
		if op == MoveTo {
			start = cur
			started = true
			// Further coordinate pairs after a moveto are implicit linetos.
			op = LineTo
		}
	}
	return segs, nil
}

func isPathLetter(tok string) bool {
	if len(tok) != 1 {
		return false
	}
	c := tok[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func tokenizePath(s string) []string {
	var toks []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			toks = append(toks, b.String())
			b.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ' || c == ',' || c == '\t' || c == '\n' || c == '\r':
			flush()
		case (c >= 'a' && c <= 'z' && c != 'e') || (c >= 'A' && c <= 'Z' && c != 'E'):
			flush()
			toks = append(toks, string(c))
		case c == '-' && b.Len() > 0 && !strings.HasSuffix(b.String(), "e") && !strings.HasSuffix(b.String(), "E"):
			flush()
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	flush()
	return toks
}

// FormatPath writes segments back as an absolute SVG path string.
func FormatPath(segs []Segment) string {
	var b strings.Builder
	for i, s := range segs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(byte(s.Op))
		for _, p := range s.Pts {
			b.WriteByte(' ')
			b.WriteString(strconv.FormatFloat(p.X, 'f', -1, 64))
			b.WriteByte(' ')
			b.WriteString(strconv.FormatFloat(p.Y, 'f', -1, 64))
		}
	}
	return b.String()
}

func pathBounds(segs []Segment) r2.Rect {
	r := r2.EmptyRect()
	for _, s := range segs {
		for _, p := range s.Pts {
			r = r.AddPoint(p)
		}
	}
	return r
}

func cloneSegments(segs []Segment) []Segment {
	out := make([]Segment, len(segs))
	for i, s := range segs {
		out[i] = Segment{Op: s.Op, Pts: append([]Point(nil), s.Pts...)}
	}
	return out
}

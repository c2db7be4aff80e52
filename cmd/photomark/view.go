package main

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xdraw "golang.org/x/image/draw"

	"photomark/shape"
)

var (
	barStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#d0d0d0")).Background(lipgloss.Color("#262626"))
	toolStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#87d7ff")).Padding(0, 1)
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f")).Background(lipgloss.Color("#262626"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffd75f")).Background(lipgloss.Color("#262626"))
	helpStyle = lipgloss.NewStyle().Padding(1, 2)
)

// viewport maps terminal cells onto the canvas. Each cell shows two pixels
// stacked with a half block, each scale canvas pixels square.
type viewport struct {
	scale float64
	cols  int
	rows  int
}

func fit(canvasW, canvasH, cols, rows int) viewport {
	if canvasW < 1 || canvasH < 1 || cols < 1 || rows < 1 {
		return viewport{}
	}
	scale := max(float64(canvasW)/float64(cols), float64(canvasH)/float64(2*rows))
	return viewport{
		scale: scale,
		cols:  min(cols, int(math.Ceil(float64(canvasW)/scale))),
		rows:  min(rows, int(math.Ceil(float64(canvasH)/(2*scale)))),
	}
}

// toCanvas returns the canvas point at the centre of a cell.
func (v viewport) toCanvas(col, row int) (shape.Point, bool) {
	if v.scale == 0 || col < 0 || row < 0 || col >= v.cols || row >= v.rows {
		return shape.Point{}, false
	}
	return shape.Pt((float64(col)+0.5)*v.scale, (float64(row)*2+1)*v.scale), true
}

func (m model) viewport() viewport {
	c := m.ed.Canvas()
	if c == nil {
		return viewport{}
	}
	return fit(c.Width(), c.Height(), m.width, m.height-1)
}

// renderCells draws img into v.rows lines of half blocks, marking the cursor
// cell when cursor is inside the viewport.
func renderCells(img image.Image, v viewport, cursor image.Point) []string {
	if img == nil || v.scale == 0 {
		return nil
	}
	b := img.Bounds()
	small := image.NewRGBA(image.Rect(0, 0, v.cols, v.rows*2))
	dst := image.Rect(0, 0,
		min(v.cols, int(math.Round(float64(b.Dx())/v.scale))),
		min(v.rows*2, int(math.Round(float64(b.Dy())/v.scale))))
	xdraw.ApproxBiLinear.Scale(small, dst, img, b, xdraw.Src, nil)

	lines := make([]string, v.rows)
	for row := range v.rows {
		var (
			sb      strings.Builder
			cells   strings.Builder
			runTop  color.RGBA
			runBot  color.RGBA
			running bool
		)
		flush := func() {
			if running {
				sb.WriteString(lipgloss.NewStyle().Foreground(hex(runTop)).Background(hex(runBot)).Render(cells.String()))
				cells.Reset()
				running = false
			}
		}
		for col := range v.cols {
			top, bot := small.RGBAAt(col, row*2), small.RGBAAt(col, row*2+1)
			if cursor.X == col && cursor.Y == row {
				flush()
				sb.WriteString(lipgloss.NewStyle().Foreground(contrast(bot)).Background(hex(bot)).Render("+"))
				continue
			}
			if running && (top != runTop || bot != runBot) {
				flush()
			}
			runTop, runBot, running = top, bot, true
			cells.WriteString("▀")
		}
		flush()
		lines[row] = sb.String()
	}
	return lines
}

func hex(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

func contrast(c color.RGBA) lipgloss.Color {
	if int(c.R)*299+int(c.G)*587+int(c.B)*114 > 128000 {
		return lipgloss.Color("#000000")
	}
	return lipgloss.Color("#ffffff")
}

func (m model) View() string {
	if m.help {
		return helpView()
	}
	var sb strings.Builder
	if c := m.ed.Canvas(); c != nil {
		for _, line := range renderCells(c.Snapshot(), m.viewport(), image.Pt(m.cursorX, m.cursorY)) {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	sb.WriteString(m.statusLine())
	return sb.String()
}

func (m model) statusLine() string {
	st := m.ed.Style()
	parts := []string{
		toolStyle.Render(strings.ToUpper(string(m.ed.Tool()))),
		barStyle.Render(fmt.Sprintf(" %s %gpx fill %s ", st.StrokeColor, st.StrokeWidth, st.FillColor)),
	}
	if m.held {
		parts = append(parts, barStyle.Render("[held] "))
	}
	undo := "-"
	if m.ed.CanUndo() {
		undo = "u"
	}
	redo := "-"
	if m.ed.CanRedo() {
		redo = "U"
	}
	parts = append(parts, barStyle.Render(undo+redo+" "))

	s := m.ed.Status()
	switch {
	case s.Loading:
		parts = append(parts, barStyle.Render("loading… "))
	case s.Saving:
		parts = append(parts, barStyle.Render("saving… "))
	case s.Err != nil:
		parts = append(parts, errStyle.Render(s.Err.Message+" "))
	case s.Warning != "":
		parts = append(parts, warnStyle.Render(s.Warning+" "))
	}
	if m.message != "" {
		if m.isError {
			parts = append(parts, errStyle.Render(m.message))
		} else {
			parts = append(parts, barStyle.Render(m.message))
		}
	}
	line := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	if w := m.width - lipgloss.Width(line); w > 0 {
		line += barStyle.Render(strings.Repeat(" ", w))
	}
	return line
}

func helpView() string {
	lines := []string{
		"photomark",
		"",
		"Tools:",
		"  1 select   2 dimension   3 arrow   4 circle   5 rectangle",
		"  6 polygon  7 polyline    8 freehand   9 text",
		"",
		"Pointer:",
		"  mouse            press, drag, release, double-click",
		"  h/j/k/l, arrows  move the cursor (shift: faster)",
		"  space            press / release at the cursor",
		"  enter            double-click at the cursor (finish polygon, edit text)",
		"",
		"Editing:",
		"  x/delete         delete the selection",
		"  esc              clear selection, cancel polygon, stop typing",
		"  u/ctrl+z         undo",
		"  U/ctrl+y         redo",
		"  [ ]              send to back / bring to front",
		"  c                cycle stroke colour",
		"  f                toggle fill",
		"  + -              stroke width",
		"  ctrl+v           paste into the label being typed",
		"",
		"Files:",
		"  s                save annotations and thumbnail",
		"  e                export the annotated image",
		"  y                copy annotations as JSON",
		"",
		"  q/ctrl+c         quit        any key closes this help",
	}
	return helpStyle.Render(strings.Join(lines, "\n"))
}

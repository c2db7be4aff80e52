package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"photomark/editor"
	"photomark/export"
	"photomark/internal/config"
	"photomark/internal/store"
	"photomark/shape"
)

const doubleClickTime = 400 * time.Millisecond

var palette = []string{"#ff0000", "#ffd700", "#00c853", "#2979ff", "#ffffff", "#000000"}

type model struct {
	ed      *editor.Editor
	cfg     *config.Config
	logger  *zap.Logger
	path    string
	imageID string

	width  int
	height int

	cursorX int
	cursorY int
	// held is set while space has pressed the pointer at the cursor.
	held bool

	lastPress     time.Time
	lastCell      [2]int
	pendingDouble bool

	help    bool
	message string
	isError bool
}

// jobDone carries a finished job's continuation back to the event loop.
type jobDone struct {
	op   string
	cont editor.Continuation
}

func newModel(cfg *config.Config, st store.Store, logger *zap.Logger, path, imageID string) model {
	ed := editor.New(
		editor.WithStore(st),
		editor.WithLogger(logger),
		editor.WithHistoryDepth(cfg.History.Depth),
		editor.WithStyle(cfg.Style()),
		editor.WithThumbnailWidth(cfg.Export.ThumbnailWidth),
		editor.WithExportOptions(export.Options{
			Format:  export.Format(cfg.Export.Format),
			Quality: export.Quality(cfg.Export.Quality),
		}),
	)
	ed.Open(1, 1)
	return model{ed: ed, cfg: cfg, logger: logger, path: path, imageID: imageID}
}

func run(op string, job editor.Job) tea.Cmd {
	return func() tea.Msg {
		return jobDone{op: op, cont: job(context.Background())}
	}
}

func (m model) loadImage() tea.Cmd {
	f, err := os.Open(m.path)
	if err != nil {
		return func() tea.Msg {
			return jobDone{op: "open", cont: func() error { return err }}
		}
	}
	job := m.ed.LoadBackground(f)
	return func() tea.Msg {
		defer f.Close()
		return jobDone{op: "open", cont: job(context.Background())}
	}
}

func (m model) Init() tea.Cmd {
	return tea.Sequence(m.loadImage(), run("load", m.ed.LoadAnnotations(m.imageID)))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureCursorInBounds()
		return m, nil

	case jobDone:
		if msg.cont == nil {
			return m, nil
		}
		if err := msg.cont(); err != nil {
			m.flash(err.Error(), true)
		} else if msg.op == "save" {
			m.flash("saved "+m.imageID, false)
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.help {
			m.help = false
			return m, nil
		}
		if m.ed.EditingText() != nil {
			return m.handleTextKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	p, ok := m.viewport().toCanvas(msg.X, msg.Y)
	if !ok {
		return m, nil
	}
	m.cursorX, m.cursorY = msg.X, msg.Y
	switch msg.Type {
	case tea.MouseLeft:
		now := time.Now()
		cell := [2]int{msg.X, msg.Y}
		m.pendingDouble = now.Sub(m.lastPress) < doubleClickTime && cell == m.lastCell
		m.lastPress, m.lastCell = now, cell
		m.ed.PointerDown(p)
	case tea.MouseMotion:
		m.ed.PointerMove(p)
	case tea.MouseRelease:
		m.ed.PointerUp(p)
		if m.pendingDouble {
			m.pendingDouble = false
			m.ed.DoubleClick(p)
		}
	}
	return m, nil
}

func (m model) handleTextKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyCtrlV:
		text, err := readClipboardText()
		if err != nil {
			m.flash("clipboard: "+err.Error(), true)
			return m, nil
		}
		m.ed.PasteText(cleanClipboardText(text))
		return m, nil
	}
	for _, k := range editorKeys(msg) {
		m.ed.KeyDown(k)
	}
	return m, nil
}

// editorKeys translates a terminal key into editor key presses.
func editorKeys(msg tea.KeyMsg) []editor.Key {
	switch msg.Type {
	case tea.KeyEsc:
		return []editor.Key{{Code: editor.KeyEscape}}
	case tea.KeyEnter:
		return []editor.Key{{Code: editor.KeyEnter}}
	case tea.KeyBackspace:
		return []editor.Key{{Code: editor.KeyBackspace}}
	case tea.KeyDelete:
		return []editor.Key{{Code: editor.KeyDelete}}
	case tea.KeySpace:
		return []editor.Key{{Code: editor.KeyRune, Rune: ' '}}
	case tea.KeyCtrlZ:
		return []editor.Key{{Code: editor.KeyRune, Rune: 'z', Ctrl: true}}
	case tea.KeyCtrlY:
		return []editor.Key{{Code: editor.KeyRune, Rune: 'y', Ctrl: true}}
	case tea.KeyRunes:
		keys := make([]editor.Key, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			keys = append(keys, editor.Key{Code: editor.KeyRune, Rune: r})
		}
		return keys
	}
	return nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "?":
		m.help = true
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		tool := editor.Tools()[key[0]-'1']
		m.release()
		if err := m.ed.SetActiveTool(tool); err != nil {
			m.flash(err.Error(), true)
		}
	case "h", "j", "k", "l", "left", "down", "up", "right",
		"H", "J", "K", "L", "shift+left", "shift+down", "shift+up", "shift+right":
		m.handleCursorMove(key, m.getMoveSpeed(key))
		if p, ok := m.cursorPoint(); ok {
			m.ed.PointerMove(p)
		}
	case " ":
		m.toggleHeld()
	case "enter":
		if p, ok := m.cursorPoint(); ok {
			m.release()
			m.ed.DoubleClick(p)
		}
	case "esc":
		m.release()
		m.ed.KeyDown(editor.Key{Code: editor.KeyEscape})
	case "delete", "backspace", "x":
		m.ed.KeyDown(editor.Key{Code: editor.KeyDelete})
	case "ctrl+z", "u":
		m.ed.Undo()
	case "ctrl+y", "U":
		m.ed.Redo()
	case "[":
		m.ed.SendToBack()
	case "]":
		m.ed.BringToFront()
	case "c":
		m.cycleStroke()
	case "f":
		m.toggleFill()
	case "+", "=":
		m.adjustWidth(1)
	case "-":
		m.adjustWidth(-1)
	case "s":
		return m.save()
	case "e":
		m.exportImage()
	case "y":
		m.yankDocument()
	}
	return m, nil
}

func (m *model) flash(msg string, isError bool) {
	m.message, m.isError = msg, isError
	if isError {
		m.logger.Warn("user-facing error", zap.String("message", msg))
	}
}

func (m *model) cursorPoint() (shape.Point, bool) {
	return m.viewport().toCanvas(m.cursorX, m.cursorY)
}

// toggleHeld presses the pointer at the cursor, or releases it. Moving the
// cursor in between drags.
func (m *model) toggleHeld() {
	p, ok := m.cursorPoint()
	if !ok {
		return
	}
	if m.held {
		m.held = false
		m.ed.PointerUp(p)
		return
	}
	m.held = true
	m.ed.PointerDown(p)
}

func (m *model) release() {
	if m.held {
		m.toggleHeld()
	}
}

func (m *model) cycleStroke() {
	cur := m.ed.Style().StrokeColor
	next := palette[0]
	for i, c := range palette {
		if c == cur {
			next = palette[(i+1)%len(palette)]
			break
		}
	}
	m.ed.SetStyle(shape.StyleOptions{StrokeColor: &next})
}

func (m *model) toggleFill() {
	fill := "transparent"
	if m.ed.Style().FillColor == "transparent" {
		fill = m.ed.Style().StrokeColor
	}
	m.ed.SetStyle(shape.StyleOptions{FillColor: &fill})
}

func (m *model) adjustWidth(delta float64) {
	w := max(1, min(50, m.ed.Style().StrokeWidth+delta))
	m.ed.SetStyle(shape.StyleOptions{StrokeWidth: &w})
}

func (m model) save() (tea.Model, tea.Cmd) {
	job, err := m.ed.Save(m.imageID)
	if err != nil {
		m.flash(err.Error(), true)
		return m, nil
	}
	return m, run("save", job)
}

func (m *model) exportImage() {
	url, err := m.ed.ExportImage(export.Options{})
	if err != nil {
		m.flash(err.Error(), true)
		return
	}
	data, _, err := export.DecodeDataURL(url)
	if err != nil {
		m.flash(err.Error(), true)
		return
	}
	f, _ := export.ParseFormat(m.cfg.Export.Format)
	path := m.cfg.ExportPath(m.imageID + "-annotated." + f.Ext())
	if err := os.WriteFile(path, data, 0644); err != nil {
		m.flash(fmt.Sprintf("export: %v", err), true)
		return
	}
	m.logger.Info("image exported", zap.String("path", path), zap.Int("bytes", len(data)))
	m.flash("exported "+path, false)
}

func (m *model) yankDocument() {
	data, err := json.MarshalIndent(m.ed.Document(), "", "  ")
	if err != nil {
		m.flash(err.Error(), true)
		return
	}
	if err := clipboard.WriteAll(string(data)); err != nil {
		m.flash("clipboard: "+err.Error(), true)
		return
	}
	m.flash(fmt.Sprintf("copied %d annotations", len(m.ed.Document().Objects)), false)
}

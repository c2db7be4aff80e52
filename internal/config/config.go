// Package config loads photomark's TOML configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"photomark/export"
	"photomark/history"
	"photomark/shape"
)

type History struct {
	Depth int `toml:"depth"`
}

type Drawing struct {
	StrokeColor string  `toml:"stroke_color"`
	StrokeWidth float64 `toml:"stroke_width"`
	FillColor   string  `toml:"fill_color"`
	FontSize    float64 `toml:"font_size"`
}

type Export struct {
	Format         string  `toml:"format"`
	Quality        float64 `toml:"quality"`
	Directory      string  `toml:"directory"`
	ThumbnailWidth int     `toml:"thumbnail_width"`
}

type Storage struct {
	Directory string `toml:"directory"`
}

type Log struct {
	Level       string `toml:"level"`
	File        string `toml:"file"`
	Development bool   `toml:"development"`
}

type Config struct {
	History History `toml:"history"`
	Drawing Drawing `toml:"drawing"`
	Export  Export  `toml:"export"`
	Storage Storage `toml:"storage"`
	Log     Log     `toml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	st := shape.DefaultStyle()
	dataDir := filepath.Join(userDir(os.UserHomeDir, ".local", "share"), "photomark")
	return &Config{
		History: History{Depth: history.DefaultDepth},
		Drawing: Drawing{
			StrokeColor: st.StrokeColor,
			StrokeWidth: st.StrokeWidth,
			FillColor:   st.FillColor,
			FontSize:    st.FontSize,
		},
		Export: Export{
			Format:         string(export.FormatPNG),
			Quality:        export.DefaultQuality,
			ThumbnailWidth: 320,
		},
		Storage: Storage{Directory: dataDir},
		Log: Log{
			Level: "info",
			File:  filepath.Join(dataDir, "photomark.log"),
		},
	}
}

func userDir(home func() (string, error), rel ...string) string {
	h, err := home()
	if err != nil {
		return "."
	}
	return filepath.Join(append([]string{h}, rel...)...)
}

// DefaultPath is $XDG_CONFIG_HOME/photomark/config.toml, falling back to
// ~/.config.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		dir = userDir(os.UserHomeDir, ".config")
	}
	return filepath.Join(dir, "photomark", "config.toml")
}

// Load reads the file at path, or DefaultPath when path is empty. A missing
// file yields the defaults, which are written out for the user to edit.
// Keys absent from the file keep their default values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			_ = cfg.Save(path)
			return cfg, nil
		}
		return Default(), fmt.Errorf("load config %s: %w", path, err)
	}
	cfg.Validate()
	return cfg, nil
}

// Save writes c to path as TOML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Validate replaces out-of-range values with defaults or clamps them.
func (c *Config) Validate() {
	def := Default()

	switch {
	case c.History.Depth < 1:
		c.History.Depth = def.History.Depth
	case c.History.Depth > 500:
		c.History.Depth = 500
	}

	if c.Drawing.StrokeColor == "" {
		c.Drawing.StrokeColor = def.Drawing.StrokeColor
	}
	if c.Drawing.FillColor == "" {
		c.Drawing.FillColor = def.Drawing.FillColor
	}
	if c.Drawing.StrokeWidth <= 0 {
		c.Drawing.StrokeWidth = def.Drawing.StrokeWidth
	}
	if c.Drawing.FontSize <= 0 {
		c.Drawing.FontSize = def.Drawing.FontSize
	}

	if f, err := export.ParseFormat(c.Export.Format); err != nil {
		c.Export.Format = def.Export.Format
	} else {
		c.Export.Format = string(f)
	}
	c.Export.Quality = min(1, max(0, c.Export.Quality))
	if c.Export.ThumbnailWidth < 16 {
		c.Export.ThumbnailWidth = def.Export.ThumbnailWidth
	}
	c.Export.Directory = cleanDir(c.Export.Directory, "")
	c.Storage.Directory = cleanDir(c.Storage.Directory, def.Storage.Directory)

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
		c.Log.Level = strings.ToLower(c.Log.Level)
	default:
		c.Log.Level = def.Log.Level
	}
	if c.Log.File != "" {
		c.Log.File = expandHome(c.Log.File)
	}
}

// cleanDir expands ~ and rejects paths that climb out with "..".
func cleanDir(dir, def string) string {
	if dir == "" {
		return def
	}
	if strings.Contains(dir, "..") {
		return def
	}
	return expandHome(dir)
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// Style is the drawing section as an editor style.
func (c *Config) Style() shape.Style {
	return shape.Style{
		StrokeColor: c.Drawing.StrokeColor,
		StrokeWidth: c.Drawing.StrokeWidth,
		FillColor:   c.Drawing.FillColor,
		FontSize:    c.Drawing.FontSize,
	}
}

// ExportPath places filename in the export directory, creating it when
// configured. Without an export directory the name is used as given.
func (c *Config) ExportPath(filename string) string {
	if c.Export.Directory == "" {
		return filename
	}
	_ = os.MkdirAll(c.Export.Directory, 0755)
	return filepath.Join(c.Export.Directory, filename)
}

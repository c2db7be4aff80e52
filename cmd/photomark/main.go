// Command photomark annotates a photo in the terminal.
//
//	photomark [-config file] [-id name] image
//
// Annotations are stored per image id in the configured storage directory
// and reloaded the next time the same image is opened.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"photomark/internal/config"
	"photomark/internal/logging"
	"photomark/internal/store"
)

func main() {
	configPath := flag.String("config", "", "configuration file (default "+config.DefaultPath()+")")
	id := flag.String("id", "", "annotation id (default: derived from the image file name)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: photomark [-config file] [-id name] image\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "photomark:", err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	st, err := store.NewFileStore(cfg.Storage.Directory, store.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}
	if *id == "" {
		*id = imageIDFromPath(path)
	}
	logger.Info("starting", zap.String("image", path), zap.String("image_id", *id))

	m := newModel(cfg, st, logger, path, *id)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		logger.Error("program exited", zap.Error(err))
		log.Fatal(err)
	}
	m.ed.Close()
}

// imageIDFromPath turns a file name into a store-safe id.
func imageIDFromPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	id := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, base)
	id = strings.ReplaceAll(id, "..", "__")
	if strings.Trim(id, ".") == "" {
		return "image"
	}
	return id
}

package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"go.uber.org/zap"

	"photomark/export"
	"photomark/internal/store"
	"photomark/shape"
)

// Continuation applies the result of a Job. It must run on the event loop.
type Continuation func() error

// Job does the blocking half of an asynchronous operation and may run on any
// goroutine. It never touches editor state; the returned Continuation does.
type Job func(ctx context.Context) Continuation

// Await runs job and its continuation on the calling goroutine.
func Await(ctx context.Context, job Job) error {
	if job == nil {
		return nil
	}
	cont := job(ctx)
	if cont == nil {
		return nil
	}
	return cont()
}

func failed(err error) Job {
	return func(context.Context) Continuation {
		return func() error { return err }
	}
}

// live reports whether a continuation created for gen may still touch the
// surface. Stale continuations are logged and dropped.
func (e *Editor) live(gen uint64, op string) bool {
	if e.open && e.gen.Load() == gen {
		return true
	}
	e.logger.Debug("stale continuation dropped",
		zap.String("op", op),
		zap.Uint64("generation", gen),
		zap.Uint64("current", e.gen.Load()))
	return false
}

// LoadBackground decodes a photo from r and makes it the background. The
// canvas takes the size of the photo.
func (e *Editor) LoadBackground(r io.Reader) Job {
	if !e.open {
		return failed(ErrClosed)
	}
	gen := e.gen.Load()
	e.updateStatus(func(s *Status) { s.Loading, s.Err = true, nil })

	return func(ctx context.Context) Continuation {
		var (
			img    image.Image
			format string
			err    = ctx.Err()
		)
		if err == nil {
			img, format, err = image.Decode(r)
		}
		return func() error {
			if !e.live(gen, "load background") {
				return nil
			}
			if err != nil {
				ee := recoverable("load background", "could not decode image", err)
				e.logger.Warn("background load failed", zap.Error(err))
				e.updateStatus(func(s *Status) { s.Loading, s.Err = false, ee })
				return ee
			}
			e.canvas.SetBackground(img)
			e.updateStatus(func(s *Status) { s.Loading = false })
			e.logger.Info("background loaded",
				zap.String("format", format),
				zap.Int("width", e.canvas.Width()),
				zap.Int("height", e.canvas.Height()))
			return nil
		}
	}
}

// LoadAnnotations fetches the document stored for imageID and replaces the
// annotations with it. Entries that cannot be read are skipped; the load
// fails only when every entry failed. The history starts empty afterwards.
func (e *Editor) LoadAnnotations(imageID string) Job {
	if !e.open {
		return failed(ErrClosed)
	}
	if e.store == nil {
		return failed(ErrNoStore)
	}
	gen := e.gen.Load()
	st, reg := e.store, e.registry
	log := e.logger.With(zap.String("image_id", imageID))
	e.updateStatus(func(s *Status) { s.Loading, s.Err = true, nil })

	return func(ctx context.Context) Continuation {
		doc, err := st.GetAnnotation(ctx, imageID)
		var (
			shapes []shape.Shape
			errs   []error
		)
		if err == nil {
			shapes, errs = export.FromDocument(doc, reg)
		}
		return func() error {
			if !e.live(gen, "load annotations") {
				return nil
			}
			if err != nil {
				ee := recoverable("load annotations", "could not fetch annotations", err)
				log.Warn("annotation fetch failed", zap.Error(err))
				e.updateStatus(func(s *Status) { s.Loading, s.Err = false, ee })
				return ee
			}
			for _, perr := range errs {
				log.Warn("annotation entry skipped", zap.Error(perr))
			}
			if doc == nil {
				log.Debug("no stored annotations")
				e.updateStatus(func(s *Status) { s.Loading = false })
				return nil
			}
			e.replaceAll(shapes)
			if len(errs) > 0 && len(shapes) == 0 {
				ee := recoverable("load annotations",
					fmt.Sprintf("none of the %d stored annotations could be read", len(errs)),
					errors.Join(errs...))
				e.updateStatus(func(s *Status) { s.Loading, s.Err = false, ee })
				return ee
			}
			e.updateStatus(func(s *Status) { s.Loading = false })
			log.Info("annotations loaded", zap.Int("objects", len(shapes)), zap.Int("skipped", len(errs)))
			return nil
		}
	}
}

// replaceAll swaps the annotations for shapes without recording anything.
func (e *Editor) replaceAll(shapes []shape.Shape) {
	st := &e.state
	e.endTextEdit()
	e.clearPreview(st)
	st.Builder = nil
	st.Drag = DragState{}
	selecting := st.Tool == ToolSelect
	e.history.Programmatic(func() {
		e.canvas.Clear()
		for _, s := range shapes {
			s.SetInteractive(selecting)
			e.canvas.Add(s)
		}
	})
	e.history.Clear()
}

// Save stores the annotations and a thumbnail of the flattened canvas for
// imageID. Both are captured before Save returns. A thumbnail that cannot be
// stored is reported as a warning and does not fail the save.
func (e *Editor) Save(imageID string) (Job, error) {
	if !e.open {
		return nil, ErrClosed
	}
	if e.store == nil {
		return nil, ErrNoStore
	}
	e.endTextEdit()
	gen := e.gen.Load()
	doc := e.Document()
	flat := e.canvas.Flatten()
	st, opts, width := e.store, e.exportOpts, e.thumbWidth
	log := e.logger.With(zap.String("image_id", imageID))
	e.updateStatus(func(s *Status) { s.Saving, s.Err, s.Warning = true, nil, "" })

	return func(ctx context.Context) Continuation {
		info, err := st.SaveAnnotation(ctx, imageID, store.SaveRequest{Data: doc})
		thumb, terr := uploadThumbnail(ctx, st, imageID, flat, width, opts)
		return func() error {
			if !e.live(gen, "save") {
				return nil
			}
			var warning string
			if terr != nil {
				warning = "thumbnail not updated"
				log.Warn("thumbnail update failed", zap.Error(terr))
			} else {
				log.Debug("thumbnail updated", zap.String("path", thumb.ThumbnailPath))
			}
			if err != nil {
				ee := recoverable("save", "could not save annotations", err)
				log.Warn("save failed", zap.Error(err))
				e.updateStatus(func(s *Status) { s.Saving, s.Err, s.Warning = false, ee, warning })
				return ee
			}
			e.updateStatus(func(s *Status) { s.Saving, s.Warning = false, warning })
			if info != nil {
				log.Info("annotations saved", zap.Int("objects", info.ObjectCount))
			}
			return nil
		}
	}, nil
}

func uploadThumbnail(ctx context.Context, st store.Store, imageID string, img image.Image, width int, opts export.Options) (*store.ThumbnailResult, error) {
	f, err := export.ParseFormat(string(opts.Format))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := export.Encode(&buf, export.Thumbnail(img, width), opts); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	res, err := st.UpdateThumbnail(ctx, imageID, export.EncodeDataURL(f.MIME(), buf.Bytes()))
	if err != nil {
		return nil, err
	}
	if res == nil || !res.Success {
		return nil, errors.New("thumbnail rejected by store")
	}
	return res, nil
}

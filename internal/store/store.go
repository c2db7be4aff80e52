// Package store persists annotation documents and thumbnails.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"photomark/export"
)

// ErrInvalidID reports an image id that cannot be used as a file name.
var ErrInvalidID = errors.New("store: invalid image id")

// SaveRequest is the body of a save.
type SaveRequest struct {
	Data *export.Document
}

// AnnotationInfo describes a stored document.
type AnnotationInfo struct {
	ImageID     string
	Version     string
	ObjectCount int
	UpdatedAt   time.Time
}

// ThumbnailResult reports where a thumbnail was written.
type ThumbnailResult struct {
	Success       bool
	ThumbnailPath string
}

// Store is the persistence API the editor saves through.
type Store interface {
	// GetAnnotation returns nil, nil when the image has no document yet.
	GetAnnotation(ctx context.Context, imageID string) (*export.Document, error)
	SaveAnnotation(ctx context.Context, imageID string, req SaveRequest) (*AnnotationInfo, error)
	// UpdateThumbnail stores encoded, a base64 data URL.
	UpdateThumbnail(ctx context.Context, imageID, encoded string) (*ThumbnailResult, error)
}

// FileStore keeps documents under <dir>/annotations/<id>.json and thumbnails
// under <dir>/thumbnails/<id>.<ext>.
type FileStore struct {
	dir    string
	logger *zap.Logger
}

type Option func(*FileStore)

func WithLogger(l *zap.Logger) Option {
	return func(s *FileStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewFileStore creates the directory layout under dir.
func NewFileStore(dir string, opts ...Option) (*FileStore, error) {
	s := &FileStore{dir: dir, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	for _, sub := range []string{"annotations", "thumbnails"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return nil, fmt.Errorf("create store: %w", err)
		}
	}
	return s, nil
}

func (s *FileStore) Dir() string { return s.dir }

func checkID(id string) error {
	if id == "" || id == "." || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

func (s *FileStore) annotationPath(id string) string {
	return filepath.Join(s.dir, "annotations", id+".json")
}

func (s *FileStore) GetAnnotation(ctx context.Context, imageID string) (*export.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkID(imageID); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.annotationPath(imageID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read annotation %s: %w", imageID, err)
	}
	doc, err := export.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("annotation %s: %w", imageID, err)
	}
	return doc, nil
}

func (s *FileStore) SaveAnnotation(ctx context.Context, imageID string, req SaveRequest) (*AnnotationInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkID(imageID); err != nil {
		return nil, err
	}
	if req.Data == nil {
		return nil, errors.New("store: save request has no document")
	}
	data, err := json.MarshalIndent(req.Data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode annotation %s: %w", imageID, err)
	}
	path := s.annotationPath(imageID)
	if err := writeFileAtomic(path, data); err != nil {
		return nil, fmt.Errorf("write annotation %s: %w", imageID, err)
	}
	s.logger.Debug("annotation saved", zap.String("image_id", imageID), zap.Int("objects", len(req.Data.Objects)))
	return &AnnotationInfo{
		ImageID:     imageID,
		Version:     req.Data.Version,
		ObjectCount: len(req.Data.Objects),
		UpdatedAt:   time.Now(),
	}, nil
}

func (s *FileStore) UpdateThumbnail(ctx context.Context, imageID, encoded string) (*ThumbnailResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkID(imageID); err != nil {
		return nil, err
	}
	data, mime, err := export.DecodeDataURL(encoded)
	if err != nil {
		return nil, err
	}
	f, err := export.ParseFormat(strings.TrimPrefix(mime, "image/"))
	if err != nil {
		return nil, err
	}
	path := filepath.Join(s.dir, "thumbnails", imageID+"."+f.Ext())
	if err := writeFileAtomic(path, data); err != nil {
		return nil, fmt.Errorf("write thumbnail %s: %w", imageID, err)
	}
	s.logger.Debug("thumbnail saved", zap.String("image_id", imageID), zap.String("path", path))
	return &ThumbnailResult{Success: true, ThumbnailPath: path}, nil
}

// writeFileAtomic replaces path with data through a temporary file in the
// same directory.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

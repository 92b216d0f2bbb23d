package asset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/radif/assetstore/internal/localstore"
	"github.com/radif/assetstore/internal/objectstore"
	"github.com/radif/assetstore/internal/storage"
)

// ErrInvalidContentType is returned when an upload is not a supported image.
var ErrInvalidContentType = errors.New("unsupported image type")

// allowedContentTypes are the sniffed types accepted for upload.
var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
}

// Store is the storage adapter the service saves through.
type Store interface {
	SaveAll(ctx context.Context, req storage.UploadRequest, targetDir string) (*storage.Saved, error)
	Exists(ctx context.Context, name, dir string) bool
	Delete(ctx context.Context, name, dir string) bool
	Read(ctx context.Context, opts storage.ReadOptions) ([]byte, error)
	TargetDir() string
}

// Ledger records saved assets. Repository implements it.
type Ledger interface {
	Create(ctx context.Context, a *Asset) (*Asset, error)
	List(ctx context.Context, limit int) ([]Asset, error)
	DeleteByKey(ctx context.Context, key string) error
}

// Service contains business logic for image assets.
type Service struct {
	store  Store
	ledger Ledger
}

// NewService creates a new asset Service. ledger may be nil, in which case
// nothing is recorded and List is always empty.
func NewService(store Store, ledger Ledger) *Service {
	return &Service{store: store, ledger: ledger}
}

// Upload spools file to a temporary file, saves it with its derivatives and
// records the result. dir may be empty for the default target directory.
func (s *Service) Upload(ctx context.Context, file io.Reader, fileName, dir string) (*Asset, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("read upload header: %w", err)
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	if !allowedContentTypes[contentType] {
		return nil, ErrInvalidContentType
	}

	tmp, err := os.CreateTemp("", "assetstore-*"+path.Ext(fileName))
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	size, err := io.Copy(tmp, io.MultiReader(bytes.NewReader(head), file))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("spool upload: %w", err)
	}

	saved, err := s.store.SaveAll(ctx, storage.UploadRequest{
		Path:        tmp.Name(),
		Name:        fileName,
		ContentType: contentType,
	}, dir)
	if err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	a := &Asset{
		ID:          uuid.NewString(),
		Key:         saved.Key,
		URL:         saved.URL,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   size,
		Derivatives: saved.Derivatives,
		CreatedAt:   time.Now().UTC(),
	}
	if s.ledger == nil {
		return a, nil
	}
	rec, err := s.ledger.Create(ctx, a)
	if err != nil {
		// Objects are stored at this point; a missing record is only logged.
		log.Ctx(ctx).Warn().Err(err).Str("key", a.Key).Msg("record asset")
		return a, nil
	}
	return rec, nil
}

// List returns up to limit recorded assets, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]Asset, error) {
	if s.ledger == nil {
		return []Asset{}, nil
	}
	return s.ledger.List(ctx, limit)
}

// Exists reports whether name is stored in dir.
func (s *Service) Exists(ctx context.Context, name, dir string) bool {
	return s.store.Exists(ctx, name, dir)
}

// Delete removes name from dir (or the default target directory) and drops
// its record. It reports whether the object was deleted.
func (s *Service) Delete(ctx context.Context, name, dir string) bool {
	if dir == "" {
		dir = s.store.TargetDir()
	}
	if !s.store.Delete(ctx, name, dir) {
		return false
	}
	if s.ledger != nil {
		key := strings.TrimPrefix(path.Join(dir, name), "/")
		if err := s.ledger.DeleteByKey(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
			log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("drop asset record")
		}
	}
	return true
}

// Read returns the bytes behind p, remote or local.
func (s *Service) Read(ctx context.Context, p string) ([]byte, error) {
	return s.store.Read(ctx, storage.ReadOptions{Path: p})
}

// IsNotFound returns true when err means the asset or file does not exist.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, objectstore.ErrNotFound) ||
		errors.Is(err, localstore.ErrNotFound)
}

// Package storage is the remote image storage adapter. It saves uploads and
// their resized derivatives to an S3-compatible bucket, reads and serves
// them back, and delegates to a local fallback store for anything that is
// not hosted remotely.
package storage

import (
	"context"
	"net/http"
	"path"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/radif/assetstore/internal/imageproc"
	"github.com/radif/assetstore/internal/objectstore"
)

//go:generate mockgen -source=storage.go -destination=mocks/storage_mock.go -package=mocks

// Dimensions is a derivative target size; zero fields are unconstrained.
type Dimensions = imageproc.Dimensions

// UploadRequest is one incoming image, alive for a single Save call.
type UploadRequest struct {
	Path        string // temporary file holding the upload
	Name        string // client-supplied file name, used for naming
	ContentType string
}

// ReadOptions selects what Read returns.
type ReadOptions struct {
	Path string
}

// ExistsFunc reports whether name is already taken inside dir.
type ExistsFunc func(ctx context.Context, name, dir string) bool

// Namer hands out collision-free storage paths.
type Namer interface {
	// TargetDir returns the directory new uploads go to, under prefix.
	TargetDir(prefix string) string
	// UniqueFileName returns dir joined with a name for req that exists
	// reports as free.
	UniqueFileName(ctx context.Context, req UploadRequest, dir string, exists ExistsFunc) (string, error)
}

// Fallback is the local store consulted when an asset is not remote.
type Fallback interface {
	Read(ctx context.Context, opts ReadOptions) ([]byte, error)
	Serve() func(next http.Handler) http.Handler
}

// SizeSource yields the active theme's named image sizes.
type SizeSource interface {
	ImageSizes() map[string]Dimensions
}

// Resizer scales image bytes to a target size.
type Resizer interface {
	Resize(data []byte, d Dimensions) ([]byte, error)
}

// Deps are the collaborators of Storage. Factory and Resizer default to the
// configured driver and imageproc; Sizes may be nil (no derivatives).
type Deps struct {
	Factory  objectstore.Factory
	Namer    Namer
	Fallback Fallback
	Sizes    SizeSource
	Resizer  Resizer
}

// Storage implements save/exists/delete/read/serve against the bucket.
type Storage struct {
	cfg      Config
	factory  objectstore.Factory
	namer    Namer
	fallback Fallback
	sizes    SizeSource
	resizer  Resizer
}

// New assembles a Storage. Namer and Fallback are required.
func New(cfg Config, deps Deps) *Storage {
	if deps.Factory == nil {
		deps.Factory = cfg.NewFactory()
	}
	if deps.Resizer == nil {
		deps.Resizer = imageproc.NewResizer()
	}
	return &Storage{
		cfg:      cfg,
		factory:  deps.Factory,
		namer:    deps.Namer,
		fallback: deps.Fallback,
		sizes:    deps.Sizes,
		resizer:  deps.Resizer,
	}
}

// Config returns the resolved configuration.
func (s *Storage) Config() Config {
	return s.cfg
}

// TargetDir is the default directory for new uploads.
func (s *Storage) TargetDir() string {
	return s.namer.TargetDir(s.cfg.PathPrefix)
}

// PublicURL returns the browser-accessible URL for key.
func (s *Storage) PublicURL(key string) string {
	return s.cfg.AssetHost + "/" + stripLeadingSlash(key)
}

// Exists fetches name from dir. Any failure, including a transient one,
// counts as absence.
func (s *Storage) Exists(ctx context.Context, name, dir string) bool {
	key := objectKey(dir, name)
	client, err := s.factory.NewClient(ctx)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Str("key", key).Msg("exists: client")
		return false
	}
	obj, err := client.GetObject(ctx, s.cfg.Bucket, key)
	if err != nil {
		return false
	}
	_ = obj.Body.Close()
	return true
}

// Delete removes name from dir, or from the default target directory when
// dir is empty. It reports success and never fails.
func (s *Storage) Delete(ctx context.Context, name, dir string) bool {
	if dir == "" {
		dir = s.TargetDir()
	}
	key := objectKey(dir, name)
	client, err := s.factory.NewClient(ctx)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("delete: client")
		return false
	}
	if err := client.DeleteObject(ctx, s.cfg.Bucket, key); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("delete failed")
		return false
	}
	log.Ctx(ctx).Info().Str("key", key).Msg("object deleted")
	return true
}

func objectKey(dir, name string) string {
	return stripLeadingSlash(path.Join(dir, name))
}

func stripLeadingSlash(s string) string {
	return strings.TrimPrefix(s, "/")
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/radif/assetstore/internal/imageproc"
	"github.com/radif/assetstore/internal/objectstore"
)

// CacheControl is sent with every uploaded object: 30 days.
var CacheControl = fmt.Sprintf("max-age=%d", int((30 * 24 * time.Hour).Seconds()))

// Saved describes a completed save.
type Saved struct {
	URL         string
	Key         string
	Derivatives map[string]string // size tag -> public URL
}

// Save stores req and one resized derivative per plan entry, all uploaded in
// parallel, and returns the public URL of the original.
//
// Save succeeds only if every upload succeeds. On failure, uploads that did
// complete stay in the bucket unless CleanupOnFailure is set, in which case
// they are deleted best-effort. Launched uploads are never cancelled by a
// sibling's failure.
func (s *Storage) Save(ctx context.Context, req UploadRequest, targetDir string) (string, error) {
	saved, err := s.SaveAll(ctx, req, targetDir)
	if err != nil {
		return "", err
	}
	return saved.URL, nil
}

// SaveAll is Save, also reporting the derivatives that were uploaded. The
// derivative set is the plan taken for this save, not a later reading of the
// theme.
func (s *Storage) SaveAll(ctx context.Context, req UploadRequest, targetDir string) (*Saved, error) {
	saved, err := s.save(ctx, req, targetDir)
	if err != nil {
		savesTotal.WithLabelValues(resultError).Inc()
		return nil, err
	}
	savesTotal.WithLabelValues(resultOK).Inc()
	return saved, nil
}

func (s *Storage) save(ctx context.Context, req UploadRequest, targetDir string) (*Saved, error) {
	dir := targetDir
	if dir == "" {
		dir = s.TargetDir()
	}

	var (
		name string
		body []byte
	)
	var prep errgroup.Group
	prep.Go(func() error {
		n, err := s.namer.UniqueFileName(ctx, req, path.Join(dir, "original"), s.Exists)
		if err != nil {
			return fmt.Errorf("name original: %w", err)
		}
		name = n
		return nil
	})
	prep.Go(func() error {
		b, err := os.ReadFile(req.Path)
		if err != nil {
			return fmt.Errorf("read upload: %w", err)
		}
		body = b
		return nil
	})
	if err := prep.Wait(); err != nil {
		return nil, err
	}

	base := objectstore.PutInput{
		ACL:          s.cfg.ACL,
		Body:         body,
		Bucket:       s.cfg.Bucket,
		CacheControl: CacheControl,
		ContentType:  req.ContentType,
		Key:          stripLeadingSlash(name),
	}
	if s.cfg.ServerSideEncryption != "" {
		base.ServerSideEncryption = s.cfg.ServerSideEncryption
	}

	// Derivatives share the original's unique file name so their URLs can be
	// derived from the original's.
	plan := s.Plan(ctx)
	file := path.Base(base.Key)
	derivatives := make(map[string]string, len(plan))
	for tag := range plan {
		derivatives[tag] = stripLeadingSlash(path.Join(dir, "size", tag, file))
	}
	done := &uploadLog{}

	var uploads errgroup.Group
	uploads.Go(func() error {
		original := base
		return s.upload(ctx, &original, kindOriginal, done)
	})
	for tag, dims := range plan {
		uploads.Go(func() error {
			return s.saveDerivative(ctx, tag, dims, derivatives[tag], base, done)
		})
	}

	if err := uploads.Wait(); err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("key", base.Key).
			Int("uploaded", len(done.keys())).
			Int("total", len(plan)+1).
			Msg("save failed")
		if s.cfg.CleanupOnFailure {
			s.cleanup(ctx, done.keys())
		}
		return nil, err
	}

	log.Ctx(ctx).Info().
		Str("key", base.Key).
		Int("derivatives", len(plan)).
		Int("size_bytes", len(body)).
		Msg("image saved")
	saved := &Saved{
		URL:         s.PublicURL(base.Key),
		Key:         base.Key,
		Derivatives: make(map[string]string, len(derivatives)),
	}
	for tag, key := range derivatives {
		saved.Derivatives[tag] = s.PublicURL(key)
	}
	return saved, nil
}

// saveDerivative resizes and uploads one derivative under key. An existing
// object at key is overwritten. Payloads the resizer cannot decode are stored
// unchanged.
func (s *Storage) saveDerivative(ctx context.Context, tag string, dims Dimensions, key string, base objectstore.PutInput, done *uploadLog) error {
	body, err := s.resizer.Resize(base.Body, dims)
	switch {
	case errors.Is(err, imageproc.ErrUnsupportedFormat):
		body = base.Body
	case err != nil:
		return fmt.Errorf("resize %s: %w", tag, err)
	}

	in := base
	in.Body = body
	in.Key = key
	return s.upload(ctx, &in, kindDerivative, done)
}

func (s *Storage) upload(ctx context.Context, in *objectstore.PutInput, kind string, done *uploadLog) error {
	client, err := s.factory.NewClient(ctx)
	if err == nil {
		err = client.PutObject(ctx, in)
	}
	if err != nil {
		uploadsTotal.WithLabelValues(kind, resultError).Inc()
		return fmt.Errorf("upload %s %s: %w", kind, in.Key, err)
	}
	uploadsTotal.WithLabelValues(kind, resultOK).Inc()
	done.add(in.Key)
	return nil
}

// cleanup deletes keys left behind by a failed save. It runs even if ctx was
// cancelled, and only logs failures.
func (s *Storage) cleanup(ctx context.Context, keys []string) {
	ctx = context.WithoutCancel(ctx)
	client, err := s.factory.NewClient(ctx)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Strs("keys", keys).Msg("cleanup: client")
		return
	}
	for _, key := range keys {
		if err := client.DeleteObject(ctx, s.cfg.Bucket, key); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cleanup: delete failed")
			continue
		}
		log.Ctx(ctx).Debug().Str("key", key).Msg("cleanup: deleted")
	}
}

// uploadLog collects keys of completed uploads across goroutines.
type uploadLog struct {
	mu   sync.Mutex
	done []string
}

func (l *uploadLog) add(key string) {
	l.mu.Lock()
	l.done = append(l.done, key)
	l.mu.Unlock()
}

func (l *uploadLog) keys() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.done...)
}

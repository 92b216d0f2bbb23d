// Package localstore is the filesystem-backed store used as a fallback for
// assets that are not hosted remotely, and the default naming service.
package localstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/radif/assetstore/internal/storage"
)

// ErrNotFound is returned by Read for paths with no file behind them.
var ErrNotFound = errors.New("file not found")

// Store reads and serves files under a root directory.
type Store struct {
	root      string // filesystem root, e.g. "./content/images"
	urlPrefix string // URL prefix files are served under, e.g. "/content/images"
}

// New creates a local store. urlPrefix is stripped from read paths.
func New(root, urlPrefix string) *Store {
	return &Store{
		root:      root,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
	}
}

// Root returns the filesystem root.
func (s *Store) Root() string {
	return s.root
}

// Read returns the file behind opts.Path, which may carry the URL prefix.
func (s *Store) Read(_ context.Context, opts storage.ReadOptions) ([]byte, error) {
	rel := opts.Path
	if s.urlPrefix != "" {
		rel = strings.TrimPrefix(rel, s.urlPrefix)
	}
	data, err := os.ReadFile(s.resolve(rel))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", opts.Path, ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", opts.Path, err)
	}
	return data, nil
}

// Serve returns middleware serving files from root by request path. Missing
// files and directories are passed to next.
func (s *Store) Serve() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			f, err := os.Open(s.resolve(r.URL.Path))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil || info.IsDir() {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Cache-Control", "public, max-age=31536000")
			http.ServeContent(w, r, info.Name(), info.ModTime(), f)
		})
	}
}

// resolve maps a slash path onto root without letting it escape.
func (s *Store) resolve(p string) string {
	return filepath.Join(s.root, filepath.FromSlash(path.Clean("/"+p)))
}

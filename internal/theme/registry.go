// Package theme loads theme manifests from disk and exposes the active
// theme's image size configuration.
package theme

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/radif/assetstore/internal/imageproc"
)

// ManifestFile is the manifest name looked up in every theme directory.
const ManifestFile = "theme.yaml"

// ErrNotFound is returned when activating a theme that was never loaded.
var ErrNotFound = errors.New("theme not found")

// Theme is a parsed theme manifest.
type Theme struct {
	Name   string `yaml:"name"`
	Config Config `yaml:"config"`
}

// Config is the theme's configuration block.
type Config struct {
	ImageSizes map[string]imageproc.Dimensions `yaml:"image_sizes"`
}

// Registry holds every theme found under a directory and tracks the active one.
type Registry struct {
	dir string

	mu     sync.RWMutex
	themes map[string]*Theme
	active string
}

// NewRegistry creates an empty registry rooted at dir. Call Load to populate it.
func NewRegistry(dir, active string) *Registry {
	return &Registry{
		dir:    dir,
		themes: make(map[string]*Theme),
		active: active,
	}
}

// LoadManifest parses a single theme manifest.
func LoadManifest(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var t Theme
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &t, nil
}

// Load (re)reads every <dir>/<theme>/theme.yaml. A theme without a name
// takes its directory name. Broken manifests are skipped and logged.
func (r *Registry) Load() error {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("list themes: %w", err)
	}

	themes := make(map[string]*Theme, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		manifest := filepath.Join(r.dir, e.Name(), ManifestFile)
		t, err := LoadManifest(manifest)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				log.Warn().Err(err).Str("theme", e.Name()).Msg("skipping theme")
			}
			continue
		}
		if t.Name == "" {
			t.Name = e.Name()
		}
		themes[t.Name] = t
	}

	r.mu.Lock()
	r.themes = themes
	r.mu.Unlock()

	log.Debug().Int("count", len(themes)).Str("dir", r.dir).Msg("themes loaded")
	return nil
}

// Activate makes name the active theme.
func (r *Registry) Activate(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.themes[name]; !ok {
		return fmt.Errorf("activate %q: %w", name, ErrNotFound)
	}
	r.active = name
	return nil
}

// Get returns the active theme, or nil if none is loaded under that name.
func (r *Registry) Get() *Theme {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.themes[r.active]
}

// ImageSizes returns a copy of the active theme's image_sizes. It is empty
// when no theme is active.
func (r *Registry) ImageSizes() map[string]imageproc.Dimensions {
	t := r.Get()
	if t == nil {
		return map[string]imageproc.Dimensions{}
	}
	return maps.Clone(t.Config.ImageSizes)
}

// Watch reloads the registry whenever a manifest under dir changes. It
// blocks until ctx is done.
func (r *Registry) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			log.Error().Err(err).Msg("theme watcher close")
		}
	}()

	if err := r.watchDirs(watcher); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("theme watcher closed")
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			log.Debug().Str("event", event.Op.String()).Str("name", event.Name).Msg("theme change")
			if err := r.Load(); err != nil {
				log.Error().Err(err).Msg("reload themes")
				continue
			}
			// New theme directories need their own watch.
			if err := r.watchDirs(watcher); err != nil {
				log.Error().Err(err).Msg("watch theme directories")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("theme watcher error channel closed")
			}
			log.Warn().Err(err).Msg("theme watcher")
		}
	}
}

func (r *Registry) watchDirs(w *fsnotify.Watcher) error {
	if err := w.Add(r.dir); err != nil {
		return fmt.Errorf("watch %s: %w", r.dir, err)
	}
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("list themes: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			if err := w.Add(filepath.Join(r.dir, e.Name())); err != nil {
				return fmt.Errorf("watch theme %s: %w", e.Name(), err)
			}
		}
	}
	return nil
}

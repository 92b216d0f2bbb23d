package theme

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radif/assetstore/internal/imageproc"
)

const casperManifest = `name: casper
config:
  image_sizes:
    thumb:
      width: 100
    square:
      width: 100
      height: 100
`

func writeManifest(t *testing.T, root, dir, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, dir, ManifestFile), []byte(body), 0o644))
}

func TestRegistry_LoadAndActivate(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "casper", casperManifest)
	writeManifest(t, root, "plain", "config: {}\n")
	writeManifest(t, root, "broken", "config: [\n")
	require.NoError(t, os.WriteFile(filepath.Join(root, "README"), []byte("x"), 0o644))

	r := NewRegistry(root, "casper")
	require.NoError(t, r.Load())

	got := r.ImageSizes()
	assert.Equal(t, map[string]imageproc.Dimensions{
		"thumb":  {Width: 100},
		"square": {Width: 100, Height: 100},
	}, got)

	// Callers get a copy.
	got["evil"] = imageproc.Dimensions{Width: 1}
	assert.NotContains(t, r.ImageSizes(), "evil")

	require.NoError(t, r.Activate("plain"))
	assert.Equal(t, "plain", r.Get().Name)
	assert.Empty(t, r.ImageSizes())

	assert.ErrorIs(t, r.Activate("broken"), ErrNotFound)
}

func TestRegistry_NoActiveTheme(t *testing.T) {
	r := NewRegistry(t.TempDir(), "missing")
	require.NoError(t, r.Load())
	assert.Nil(t, r.Get())
	assert.Empty(t, r.ImageSizes())
}

func TestRegistry_LoadMissingDir(t *testing.T) {
	r := NewRegistry(filepath.Join(t.TempDir(), "nope"), "")
	assert.Error(t, r.Load())
}

func TestRegistry_WatchReloads(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "casper", "config:\n  image_sizes:\n    xs:\n      width: 50\n")

	r := NewRegistry(root, "casper")
	require.NoError(t, r.Load())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Watch(ctx) }()

	// Give the watcher a moment to register before mutating files.
	time.Sleep(100 * time.Millisecond)
	writeManifest(t, root, "casper", casperManifest)

	assert.Eventually(t, func() bool {
		return len(r.ImageSizes()) == 2
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

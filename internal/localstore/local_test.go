package localstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radif/assetstore/internal/storage"
)

func seed(t *testing.T, root, rel, body string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
}

func TestStore_Read(t *testing.T) {
	root := t.TempDir()
	seed(t, root, "2024/05/cat.jpg", "meow")
	s := New(root, "/content/images/")

	got, err := s.Read(context.Background(), storage.ReadOptions{Path: "/content/images/2024/05/cat.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "meow", string(got))

	got, err = s.Read(context.Background(), storage.ReadOptions{Path: "2024/05/cat.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "meow", string(got))

	_, err = s.Read(context.Background(), storage.ReadOptions{Path: "/content/images/2024/05/dog.jpg"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ReadCannotEscapeRoot(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "images")
	require.NoError(t, os.MkdirAll(root, 0o755))
	seed(t, parent, "secret.txt", "nope")

	_, err := New(root, "").Read(context.Background(), storage.ReadOptions{Path: "../secret.txt"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Serve(t *testing.T) {
	root := t.TempDir()
	seed(t, root, "2024/05/cat.txt", "meow")
	s := New(root, "/content/images")

	nextCalls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalls++
		w.WriteHeader(http.StatusNotFound)
	})
	h := s.Serve()(next)

	t.Run("existing file", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/2024/05/cat.txt", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "meow", rec.Body.String())
		assert.Equal(t, "public, max-age=31536000", rec.Header().Get("Cache-Control"))
		assert.Equal(t, 0, nextCalls)
	})

	t.Run("missing file calls next", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/2024/05/dog.txt", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, 1, nextCalls)
	})

	t.Run("directory calls next", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/2024/05", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, 2, nextCalls)
	})
}

func TestNamer_TargetDir(t *testing.T) {
	n := &Namer{Now: func() time.Time { return time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC) }}
	assert.Equal(t, "images/2024/03", n.TargetDir("images"))
	assert.Equal(t, "2024/03", n.TargetDir(""))
}

func TestNamer_UniqueFileName(t *testing.T) {
	ctx := context.Background()
	n := NewNamer()

	taken := map[string]bool{
		"2024/03/original/my-cat.jpg":   true,
		"2024/03/original/my-cat-1.jpg": true,
	}
	exists := func(_ context.Context, name, dir string) bool {
		return taken[dir+"/"+name]
	}

	got, err := n.UniqueFileName(ctx, storage.UploadRequest{Name: "my cat.jpg"}, "2024/03/original", exists)
	require.NoError(t, err)
	assert.Equal(t, "2024/03/original/my-cat-2.jpg", got)

	got, err = n.UniqueFileName(ctx, storage.UploadRequest{Name: `C:\Users\me\photo(1).png`}, "d", nil)
	require.NoError(t, err)
	assert.Equal(t, "d/photo-1-.png", got)

	got, err = n.UniqueFileName(ctx, storage.UploadRequest{Name: ".png"}, "d", nil)
	require.NoError(t, err)
	assert.Equal(t, "d/image.png", got)
}

func TestNamer_UniqueFileNameGivesUp(t *testing.T) {
	always := func(context.Context, string, string) bool { return true }
	_, err := NewNamer().UniqueFileName(context.Background(), storage.UploadRequest{Name: "a.jpg"}, "d", always)
	assert.ErrorContains(t, err, "no free name")
}

func TestNamer_UniqueFileNameHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewNamer().UniqueFileName(ctx, storage.UploadRequest{Name: "a.jpg"}, "d", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "hello-world-.jpg", SanitizeFileName("hello world!.jpg"))
	assert.Equal(t, "me@home_1.png", SanitizeFileName("me@home_1.png"))
}

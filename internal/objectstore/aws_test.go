package objectstore

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 answers path-style S3 requests for a single bucket.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	puts    []*http.Request
	deletes []string
}

func (s *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key, ok := strings.CutPrefix(r.URL.Path, "/imgs/")
	if !ok {
		http.Error(w, "wrong bucket", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		s.objects[key] = string(body)
		s.puts = append(s.puts, r)
		w.Header().Set("ETag", `"put-etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		body, ok := s.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message><Key>`+key+`</Key></Error>`)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Cache-Control", "max-age=2592000")
		w.Header().Set("ETag", `"get-etag"`)
		w.Header().Set("Keep-Alive", "timeout=5")
		w.Header().Set("X-Amz-Meta-Owner", "casper")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, body)
	case http.MethodDelete:
		s.deletes = append(s.deletes, key)
		delete(s.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newAWSTestClient(t *testing.T) (Client, *fakeS3) {
	t.Helper()
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent")

	s3 := &fakeS3{objects: map[string]string{"a/cat.jpg": "meow"}}
	srv := httptest.NewServer(s3)
	t.Cleanup(srv.Close)

	c, err := NewAWSFactory(Options{
		Region:          "eu-west-1",
		Endpoint:        srv.URL,
		ForcePathStyle:  true,
		AccessKeyID:     "id",
		SecretAccessKey: "secret",
	}).NewClient(context.Background())
	require.NoError(t, err)
	return c, s3
}

func TestAWSClient_GetObject(t *testing.T) {
	c, _ := newAWSTestClient(t)

	obj, err := c.GetObject(context.Background(), "imgs", "a/cat.jpg")
	require.NoError(t, err)
	defer obj.Body.Close()

	body, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, "meow", string(body))
	assert.Equal(t, "image/jpeg", obj.Header.Get("Content-Type"))
	assert.Equal(t, "max-age=2592000", obj.Header.Get("Cache-Control"))
	assert.Equal(t, `"get-etag"`, obj.Header.Get("ETag"))
	assert.Equal(t, "casper", obj.Header.Get("X-Amz-Meta-Owner"))
	assert.Empty(t, obj.Header.Get("Keep-Alive"))
}

func TestAWSClient_GetObjectMissingKey(t *testing.T) {
	c, _ := newAWSTestClient(t)

	_, err := c.GetObject(context.Background(), "imgs", "a/missing.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAWSClient_PutAndDelete(t *testing.T) {
	c, s3 := newAWSTestClient(t)

	err := c.PutObject(context.Background(), &PutInput{
		Bucket:       "imgs",
		Key:          "a/original/dog.jpg",
		Body:         []byte("woof"),
		ContentType:  "image/jpeg",
		CacheControl: "max-age=2592000",
		ACL:          "public-read",
	})
	require.NoError(t, err)

	require.Len(t, s3.puts, 1)
	put := s3.puts[0]
	assert.Equal(t, "image/jpeg", put.Header.Get("Content-Type"))
	assert.Equal(t, "max-age=2592000", put.Header.Get("Cache-Control"))
	assert.Equal(t, "public-read", put.Header.Get("X-Amz-Acl"))
	assert.Empty(t, put.Header.Get("X-Amz-Server-Side-Encryption"))
	assert.Contains(t, s3.objects, "a/original/dog.jpg")

	require.NoError(t, c.DeleteObject(context.Background(), "imgs", "a/original/dog.jpg"))
	assert.Equal(t, []string{"a/original/dog.jpg"}, s3.deletes)
	assert.NotContains(t, s3.objects, "a/original/dog.jpg")
}

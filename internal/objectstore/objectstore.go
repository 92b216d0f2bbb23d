// Package objectstore defines the narrow object-store surface the storage
// adapter needs and implements it on top of S3-compatible SDK clients.
// Two drivers are available: minio-go (default) and aws-sdk-go-v2.
package objectstore

import (
	"context"
	"errors"
	"io"
	"net/http"
)

// ErrNotFound is returned when the requested key does not exist in the bucket.
var ErrNotFound = errors.New("object not found")

// Signature versions accepted by the drivers.
const (
	SignatureV2 = "v2"
	SignatureV4 = "v4"
)

// Options carries everything a driver needs to build a client handle.
type Options struct {
	Region           string
	Bucket           string
	Endpoint         string // e.g. "https://minio.internal:9000"; empty means AWS
	ForcePathStyle   bool
	SignatureVersion string
	AccessKeyID      string
	SecretAccessKey  string
}

// HasStaticCredentials reports whether both halves of a key pair were configured.
func (o Options) HasStaticCredentials() bool {
	return o.AccessKeyID != "" && o.SecretAccessKey != ""
}

// PutInput describes one object upload.
type PutInput struct {
	Bucket               string
	Key                  string
	Body                 []byte
	ContentType          string
	CacheControl         string
	ACL                  string
	ServerSideEncryption string // empty means no SSE header
}

// Object is an open, streamed object. Callers must close Body.
type Object struct {
	Body   io.ReadCloser
	Header http.Header
}

// Client is a single configured handle to the object store.
type Client interface {
	// PutObject uploads in.Body under in.Key.
	PutObject(ctx context.Context, in *PutInput) error
	// GetObject opens key for streaming. Header carries the upstream
	// response headers (content type, length, etag, cache control...).
	GetObject(ctx context.Context, bucket, key string) (*Object, error)
	// DeleteObject removes key.
	DeleteObject(ctx context.Context, bucket, key string) error
}

// Factory builds a fresh Client on every call.
type Factory interface {
	NewClient(ctx context.Context) (Client, error)
}

// hopHeaders are connection-level and never forwarded from upstream.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Connection",
	"Transfer-Encoding",
	"Upgrade",
	"Trailer",
}

// EndToEndHeaders returns a copy of h without hop-by-hop headers.
func EndToEndHeaders(h http.Header) http.Header {
	out := h.Clone()
	if out == nil {
		out = make(http.Header)
	}
	for _, k := range hopHeaders {
		out.Del(k)
	}
	return out
}

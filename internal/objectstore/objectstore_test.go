package objectstore

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinioEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		host     string
		secure   bool
		wantErr  bool
	}{
		{name: "empty uses aws", endpoint: "", host: "s3.amazonaws.com", secure: true},
		{name: "bare host", endpoint: "minio.internal:9000", host: "minio.internal:9000", secure: true},
		{name: "http scheme", endpoint: "http://localhost:9000", host: "localhost:9000", secure: false},
		{name: "https scheme with path", endpoint: "https://s3.ceph.example.com/", host: "s3.ceph.example.com", secure: true},
		{name: "scheme without host", endpoint: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, secure, err := minioEndpoint(tt.endpoint)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.host, host)
			assert.Equal(t, tt.secure, secure)
		})
	}
}

func TestMinioFactory_Credentials(t *testing.T) {
	t.Run("static v4", func(t *testing.T) {
		f := NewMinioFactory(Options{AccessKeyID: "id", SecretAccessKey: "secret"})
		v, err := f.credentials().Get()
		require.NoError(t, err)
		assert.Equal(t, "id", v.AccessKeyID)
		assert.Equal(t, credentials.SignatureV4, v.SignerType)
	})

	t.Run("static v2", func(t *testing.T) {
		f := NewMinioFactory(Options{AccessKeyID: "id", SecretAccessKey: "secret", SignatureVersion: SignatureV2})
		v, err := f.credentials().Get()
		require.NoError(t, err)
		assert.Equal(t, credentials.SignatureV2, v.SignerType)
	})

	t.Run("key without secret falls back to ambient chain", func(t *testing.T) {
		f := NewMinioFactory(Options{AccessKeyID: "id"})
		assert.NotNil(t, f.credentials())
	})

	t.Run("injected provider wins", func(t *testing.T) {
		injected := credentials.NewStaticV4("other", "pair", "")
		f := &MinioFactory{Options: Options{AccessKeyID: "id", SecretAccessKey: "secret"}, Credentials: injected}
		assert.Same(t, injected, f.credentials())
	})
}

func TestMinioFactory_NewClient(t *testing.T) {
	f := NewMinioFactory(Options{
		Endpoint:        "http://localhost:9000",
		Region:          "eu-west-1",
		ForcePathStyle:  true,
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
	})
	c, err := f.NewClient(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, c)

	// Every call returns a distinct handle.
	c2, err := f.NewClient(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, c, c2)
}

func TestMinioSSE(t *testing.T) {
	sse, err := minioSSE("AES256")
	require.NoError(t, err)
	assert.NotNil(t, sse)

	sse, err = minioSSE("aws:kms")
	require.NoError(t, err)
	assert.NotNil(t, sse)

	_, err = minioSSE("rot13")
	assert.Error(t, err)
}

func TestMinioHeaders(t *testing.T) {
	modified := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	info := minio.ObjectInfo{
		ETag:         "abc123",
		Size:         42,
		ContentType:  "image/png",
		LastModified: modified,
		Metadata: http.Header{
			"Cache-Control": []string{"max-age=2592000"},
			"Connection":    []string{"keep-alive"},
		},
	}

	h := minioHeaders(info)
	assert.Equal(t, "image/png", h.Get("Content-Type"))
	assert.Equal(t, "42", h.Get("Content-Length"))
	assert.Equal(t, `"abc123"`, h.Get("ETag"))
	assert.Equal(t, "max-age=2592000", h.Get("Cache-Control"))
	assert.Equal(t, modified.Format(http.TimeFormat), h.Get("Last-Modified"))
	assert.Empty(t, h.Get("Connection"))
}

func TestEndToEndHeaders(t *testing.T) {
	in := http.Header{
		"Content-Type":      []string{"image/jpeg"},
		"Transfer-Encoding": []string{"chunked"},
	}
	out := EndToEndHeaders(in)
	assert.Equal(t, "image/jpeg", out.Get("Content-Type"))
	assert.Empty(t, out.Get("Transfer-Encoding"))
	// The input is left untouched.
	assert.Equal(t, "chunked", in.Get("Transfer-Encoding"))

	assert.NotNil(t, EndToEndHeaders(nil))
}

func TestAWSFactory(t *testing.T) {
	t.Run("rejects signature v2", func(t *testing.T) {
		f := NewAWSFactory(Options{Region: "us-east-1", SignatureVersion: SignatureV2})
		_, err := f.NewClient(context.Background())
		assert.ErrorContains(t, err, "signature")
	})

	t.Run("static credentials only with both halves", func(t *testing.T) {
		assert.Nil(t, NewAWSFactory(Options{AccessKeyID: "id"}).credentials())

		p := NewAWSFactory(Options{AccessKeyID: "id", SecretAccessKey: "secret"}).credentials()
		require.NotNil(t, p)
		creds, err := p.Retrieve(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "id", creds.AccessKeyID)
		assert.Equal(t, "secret", creds.SecretAccessKey)
	})

	t.Run("builds a client", func(t *testing.T) {
		f := NewAWSFactory(Options{
			Region:          "eu-west-1",
			Endpoint:        "http://localhost:9000",
			ForcePathStyle:  true,
			AccessKeyID:     "id",
			SecretAccessKey: "secret",
		})
		c, err := f.NewClient(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, c)
	})
}

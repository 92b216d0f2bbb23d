package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/encrypt"
)

const defaultS3Host = "s3.amazonaws.com"

// MinioFactory builds minio-go clients. It works with MinIO, Ceph, AWS S3 and
// any other S3-compatible provider.
type MinioFactory struct {
	Options Options
	// Credentials replaces credential resolution when set. When nil, static
	// keys are used if both halves are configured; otherwise the ambient
	// chain (environment, shared credentials file, IAM role) is consulted.
	Credentials *credentials.Credentials
	// Transport is optional; nil uses minio's default transport.
	Transport http.RoundTripper
}

// NewMinioFactory returns a factory for the given options.
func NewMinioFactory(opts Options) *MinioFactory {
	return &MinioFactory{Options: opts}
}

// NewClient creates a minio client handle. No network call is made here.
func (f *MinioFactory) NewClient(_ context.Context) (Client, error) {
	host, secure, err := minioEndpoint(f.Options.Endpoint)
	if err != nil {
		return nil, err
	}

	lookup := minio.BucketLookupAuto
	if f.Options.ForcePathStyle {
		lookup = minio.BucketLookupPath
	}

	client, err := minio.New(host, &minio.Options{
		Creds:        f.credentials(),
		Secure:       secure,
		Region:       f.Options.Region,
		BucketLookup: lookup,
		Transport:    f.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &minioClient{client: client}, nil
}

func (f *MinioFactory) credentials() *credentials.Credentials {
	if f.Credentials != nil {
		return f.Credentials
	}
	o := f.Options
	if o.HasStaticCredentials() {
		if o.SignatureVersion == SignatureV2 {
			return credentials.NewStaticV2(o.AccessKeyID, o.SecretAccessKey, "")
		}
		return credentials.NewStaticV4(o.AccessKeyID, o.SecretAccessKey, "")
	}
	return AmbientMinioCredentials()
}

// AmbientMinioCredentials resolves credentials the way the AWS tooling does:
// AWS_* environment variables, then ~/.aws/credentials, then the instance role.
func AmbientMinioCredentials() *credentials.Credentials {
	return credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.FileAWSCredentials{},
		&credentials.IAM{Client: &http.Client{Transport: http.DefaultTransport}},
	})
}

// minioEndpoint splits an endpoint override into the host minio.New expects
// and a TLS flag. Bare hosts are assumed to speak TLS.
func minioEndpoint(endpoint string) (string, bool, error) {
	if endpoint == "" {
		return defaultS3Host, true, nil
	}
	if !strings.Contains(endpoint, "://") {
		return strings.TrimRight(endpoint, "/"), true, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("endpoint %q has no host", endpoint)
	}
	return u.Host, u.Scheme != "http", nil
}

type minioClient struct {
	client *minio.Client
}

func (c *minioClient) PutObject(ctx context.Context, in *PutInput) error {
	opts := minio.PutObjectOptions{
		ContentType:  in.ContentType,
		CacheControl: in.CacheControl,
	}
	if in.ACL != "" {
		// minio passes x-amz-acl through as a request header, not user metadata.
		opts.UserMetadata = map[string]string{"x-amz-acl": in.ACL}
	}
	if in.ServerSideEncryption != "" {
		sse, err := minioSSE(in.ServerSideEncryption)
		if err != nil {
			return err
		}
		opts.ServerSideEncryption = sse
	}

	_, err := c.client.PutObject(ctx, in.Bucket, in.Key, bytes.NewReader(in.Body), int64(len(in.Body)), opts)
	if err != nil {
		return fmt.Errorf("put object %q: %w", in.Key, err)
	}
	return nil
}

func (c *minioClient) GetObject(ctx context.Context, bucket, key string) (*Object, error) {
	obj, err := c.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %q: %w", key, err)
	}

	// GetObject is lazy; Stat performs the request and surfaces missing keys.
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("get object %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("get object %q: %w", key, err)
	}

	return &Object{Body: obj, Header: minioHeaders(info)}, nil
}

func (c *minioClient) DeleteObject(ctx context.Context, bucket, key string) error {
	if err := c.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q: %w", key, err)
	}
	return nil
}

// minioHeaders rebuilds the upstream response headers from ObjectInfo.
// minio keeps only content/metadata headers in Metadata, so length, etag and
// modification time are restored from the typed fields.
func minioHeaders(info minio.ObjectInfo) http.Header {
	h := EndToEndHeaders(info.Metadata)
	if info.ContentType != "" {
		h.Set("Content-Type", info.ContentType)
	}
	h.Set("Content-Length", strconv.FormatInt(info.Size, 10))
	if info.ETag != "" {
		h.Set("ETag", `"`+strings.Trim(info.ETag, `"`)+`"`)
	}
	if !info.LastModified.IsZero() {
		h.Set("Last-Modified", info.LastModified.UTC().Format(http.TimeFormat))
	}
	return h
}

func minioSSE(mode string) (encrypt.ServerSide, error) {
	switch mode {
	case "AES256":
		return encrypt.NewSSE(), nil
	case "aws:kms":
		sse, err := encrypt.NewSSEKMS("", nil)
		if err != nil {
			return nil, fmt.Errorf("configure sse-kms: %w", err)
		}
		return sse, nil
	default:
		return nil, fmt.Errorf("unsupported server-side encryption %q", mode)
	}
}

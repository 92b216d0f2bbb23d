package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// AWSFactory builds aws-sdk-go-v2 S3 clients.
type AWSFactory struct {
	Options Options
	// Credentials replaces credential resolution when set. When nil, static
	// keys are used if both halves are configured; otherwise the SDK default
	// chain applies.
	Credentials aws.CredentialsProvider
}

// NewAWSFactory returns a factory for the given options.
func NewAWSFactory(opts Options) *AWSFactory {
	return &AWSFactory{Options: opts}
}

// NewClient loads the SDK configuration and returns a client handle.
func (f *AWSFactory) NewClient(ctx context.Context) (Client, error) {
	o := f.Options
	if o.SignatureVersion != "" && o.SignatureVersion != SignatureV4 {
		return nil, fmt.Errorf("aws driver supports only signature %s, got %q", SignatureV4, o.SignatureVersion)
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(o.Region)}
	if provider := f.credentials(); provider != nil {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(provider))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
		}
		so.UsePathStyle = o.ForcePathStyle
	})
	return &awsClient{client: client}, nil
}

func (f *AWSFactory) credentials() aws.CredentialsProvider {
	if f.Credentials != nil {
		return f.Credentials
	}
	if f.Options.HasStaticCredentials() {
		return credentials.NewStaticCredentialsProvider(f.Options.AccessKeyID, f.Options.SecretAccessKey, "")
	}
	return nil
}

type awsClient struct {
	client *s3.Client
}

func (c *awsClient) PutObject(ctx context.Context, in *PutInput) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(in.Bucket),
		Key:           aws.String(in.Key),
		Body:          bytes.NewReader(in.Body),
		ContentLength: aws.Int64(int64(len(in.Body))),
		ContentType:   aws.String(in.ContentType),
		CacheControl:  aws.String(in.CacheControl),
	}
	if in.ACL != "" {
		input.ACL = types.ObjectCannedACL(in.ACL)
	}
	if in.ServerSideEncryption != "" {
		input.ServerSideEncryption = types.ServerSideEncryption(in.ServerSideEncryption)
	}

	if _, err := c.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("putting object %s: %w", in.Key, err)
	}
	return nil
}

func (c *awsClient) GetObject(ctx context.Context, bucket, key string) (*Object, error) {
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("getting object %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("getting object %s: %w", key, err)
	}

	return &Object{Body: out.Body, Header: awsHeaders(out)}, nil
}

func (c *awsClient) DeleteObject(ctx context.Context, bucket, key string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}
	if _, err := c.client.DeleteObject(ctx, input); err != nil {
		return fmt.Errorf("deleting object %s: %w", key, err)
	}
	return nil
}

// awsHeaders prefers the raw HTTP response headers; the typed fields are
// used only when the transport response is unavailable.
func awsHeaders(out *s3.GetObjectOutput) http.Header {
	if raw, ok := awsmiddleware.GetRawResponse(out.ResultMetadata).(*smithyhttp.Response); ok && raw.Response != nil {
		return EndToEndHeaders(raw.Header)
	}

	h := make(http.Header)
	if out.ContentType != nil {
		h.Set("Content-Type", *out.ContentType)
	}
	if out.ContentLength != nil {
		h.Set("Content-Length", fmt.Sprint(*out.ContentLength))
	}
	if out.CacheControl != nil {
		h.Set("Cache-Control", *out.CacheControl)
	}
	if out.ETag != nil {
		h.Set("ETag", *out.ETag)
	}
	if out.LastModified != nil {
		h.Set("Last-Modified", out.LastModified.UTC().Format(http.TimeFormat))
	}
	return h
}

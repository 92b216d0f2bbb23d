package storage

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/radif/assetstore/internal/objectstore"
)

// Environment variables that override storage configuration. Each field has
// exactly one variable, and a set variable always beats Options.
const (
	EnvAccessKeyID          = "AWS_ACCESS_KEY_ID"
	EnvSecretAccessKey      = "AWS_SECRET_ACCESS_KEY"
	EnvRegion               = "AWS_DEFAULT_REGION"
	EnvBucket               = "ASSETSTORE_S3_BUCKET"
	EnvAssetHost            = "ASSETSTORE_S3_ASSET_HOST"
	EnvPathPrefix           = "ASSETSTORE_S3_PATH_PREFIX"
	EnvEndpoint             = "ASSETSTORE_S3_ENDPOINT"
	EnvServerSideEncryption = "ASSETSTORE_S3_SSE"
	EnvForcePathStyle       = "ASSETSTORE_S3_FORCE_PATH_STYLE"
	EnvSignatureVersion     = "ASSETSTORE_S3_SIGNATURE_VERSION"
	EnvACL                  = "ASSETSTORE_S3_ACL"
	EnvDriver               = "ASSETSTORE_S3_DRIVER"
	EnvCleanupOnFailure     = "ASSETSTORE_S3_CLEANUP_ON_FAILURE"
)

// Built-in defaults.
const (
	DefaultRegion           = "us-east-1"
	DefaultSignatureVersion = objectstore.SignatureV4
	DefaultACL              = "public-read"
	DriverMinio             = "minio"
	DriverAWS               = "aws"
	DefaultDriver           = DriverMinio
)

// LookupFunc reads one environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Options are constructor-supplied settings. Zero values (and nil pointers)
// mean "not set" and fall through to the built-in default.
type Options struct {
	AccessKeyID          string `yaml:"accessKeyId"`
	SecretAccessKey      string `yaml:"secretAccessKey"`
	Region               string `yaml:"region"`
	Bucket               string `yaml:"bucket"`
	AssetHost            string `yaml:"assetHost"`
	PathPrefix           string `yaml:"pathPrefix"`
	Endpoint             string `yaml:"endpoint"`
	ServerSideEncryption string `yaml:"serverSideEncryption"`
	ForcePathStyle       *bool  `yaml:"forcePathStyle"`
	SignatureVersion     string `yaml:"signatureVersion"`
	ACL                  string `yaml:"acl"`
	Driver               string `yaml:"driver"`
	CleanupOnFailure     *bool  `yaml:"cleanupOnFailure"`
}

// Config is the fully resolved, immutable storage configuration.
type Config struct {
	AccessKeyID          string
	SecretAccessKey      string
	Region               string
	Bucket               string
	AssetHost            string
	PathPrefix           string
	Endpoint             string
	ServerSideEncryption string
	ForcePathStyle       bool
	SignatureVersion     string
	ACL                  string
	Driver               string
	CleanupOnFailure     bool
}

// NewConfig resolves every field as environment > opts > default. A nil
// lookup reads the process environment. It performs no I/O beyond env reads
// and never fails: a missing bucket surfaces on the first remote call.
func NewConfig(opts Options, lookup LookupFunc) Config {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	r := resolver{lookup: lookup}

	cfg := Config{
		AccessKeyID:          r.str(EnvAccessKeyID, opts.AccessKeyID, ""),
		SecretAccessKey:      r.str(EnvSecretAccessKey, opts.SecretAccessKey, ""),
		Region:               r.str(EnvRegion, opts.Region, DefaultRegion),
		Bucket:               r.str(EnvBucket, opts.Bucket, ""),
		Endpoint:             r.str(EnvEndpoint, opts.Endpoint, ""),
		ServerSideEncryption: r.str(EnvServerSideEncryption, opts.ServerSideEncryption, ""),
		ForcePathStyle:       r.boolean(EnvForcePathStyle, opts.ForcePathStyle, false),
		SignatureVersion:     r.str(EnvSignatureVersion, opts.SignatureVersion, DefaultSignatureVersion),
		ACL:                  r.str(EnvACL, opts.ACL, DefaultACL),
		Driver:               r.str(EnvDriver, opts.Driver, DefaultDriver),
		CleanupOnFailure:     r.boolean(EnvCleanupOnFailure, opts.CleanupOnFailure, false),
	}
	cfg.AssetHost = r.str(EnvAssetHost, opts.AssetHost, DefaultAssetHost(cfg.Region, cfg.Bucket))
	cfg.PathPrefix = strings.TrimLeft(r.str(EnvPathPrefix, opts.PathPrefix, ""), "/")
	return cfg
}

// DefaultAssetHost is the public S3 URL for bucket. us-east-1 is the only
// region served from the suffix-less host.
func DefaultAssetHost(region, bucket string) string {
	suffix := ""
	if region != DefaultRegion {
		suffix = "-" + region
	}
	return fmt.Sprintf("https://s3%s.amazonaws.com/%s", suffix, bucket)
}

// ObjectStoreOptions projects the config onto driver options.
func (c Config) ObjectStoreOptions() objectstore.Options {
	return objectstore.Options{
		Region:           c.Region,
		Bucket:           c.Bucket,
		Endpoint:         c.Endpoint,
		ForcePathStyle:   c.ForcePathStyle,
		SignatureVersion: c.SignatureVersion,
		AccessKeyID:      c.AccessKeyID,
		SecretAccessKey:  c.SecretAccessKey,
	}
}

// NewFactory returns the client factory for the configured driver. Unknown
// drivers fall back to minio.
func (c Config) NewFactory() objectstore.Factory {
	if c.Driver == DriverAWS {
		return objectstore.NewAWSFactory(c.ObjectStoreOptions())
	}
	return objectstore.NewMinioFactory(c.ObjectStoreOptions())
}

type resolver struct {
	lookup LookupFunc
}

func (r resolver) env(key string) (string, bool) {
	v, ok := r.lookup(key)
	return v, ok && v != ""
}

func (r resolver) str(key, given, fallback string) string {
	if v, ok := r.env(key); ok {
		return v
	}
	if given != "" {
		return given
	}
	return fallback
}

// boolean ignores env values strconv cannot parse.
func (r resolver) boolean(key string, given *bool, fallback bool) bool {
	if v, ok := r.env(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	if given != nil {
		return *given
	}
	return fallback
}

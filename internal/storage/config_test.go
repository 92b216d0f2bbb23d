package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/radif/assetstore/internal/objectstore"
)

func envMap(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func boolPtr(b bool) *bool { return &b }

func TestNewConfig_Precedence(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		envValue string
		opts     Options
		def      any
		optValue any
		get      func(Config) any
	}{
		{
			name: "access key", env: EnvAccessKeyID, envValue: "env-key",
			opts: Options{AccessKeyID: "opt-key"}, optValue: "opt-key", def: "",
			get: func(c Config) any { return c.AccessKeyID },
		},
		{
			name: "secret", env: EnvSecretAccessKey, envValue: "env-secret",
			opts: Options{SecretAccessKey: "opt-secret"}, optValue: "opt-secret", def: "",
			get: func(c Config) any { return c.SecretAccessKey },
		},
		{
			name: "region", env: EnvRegion, envValue: "ap-south-1",
			opts: Options{Region: "eu-west-1"}, optValue: "eu-west-1", def: DefaultRegion,
			get: func(c Config) any { return c.Region },
		},
		{
			name: "bucket", env: EnvBucket, envValue: "env-bucket",
			opts: Options{Bucket: "opt-bucket"}, optValue: "opt-bucket", def: "",
			get: func(c Config) any { return c.Bucket },
		},
		{
			name: "asset host", env: EnvAssetHost, envValue: "https://cdn.example.com",
			opts: Options{AssetHost: "https://assets.example.com"}, optValue: "https://assets.example.com",
			def: "https://s3.amazonaws.com/",
			get: func(c Config) any { return c.AssetHost },
		},
		{
			name: "path prefix", env: EnvPathPrefix, envValue: "/env/prefix",
			opts: Options{PathPrefix: "/opt/prefix"}, optValue: "opt/prefix", def: "",
			get: func(c Config) any { return c.PathPrefix },
		},
		{
			name: "endpoint", env: EnvEndpoint, envValue: "http://env:9000",
			opts: Options{Endpoint: "http://opt:9000"}, optValue: "http://opt:9000", def: "",
			get: func(c Config) any { return c.Endpoint },
		},
		{
			name: "sse", env: EnvServerSideEncryption, envValue: "aws:kms",
			opts: Options{ServerSideEncryption: "AES256"}, optValue: "AES256", def: "",
			get: func(c Config) any { return c.ServerSideEncryption },
		},
		{
			name: "force path style", env: EnvForcePathStyle, envValue: "false",
			opts: Options{ForcePathStyle: boolPtr(true)}, optValue: true, def: false,
			get: func(c Config) any { return c.ForcePathStyle },
		},
		{
			name: "signature version", env: EnvSignatureVersion, envValue: "v2",
			opts: Options{SignatureVersion: "v4"}, optValue: "v4", def: DefaultSignatureVersion,
			get: func(c Config) any { return c.SignatureVersion },
		},
		{
			name: "acl", env: EnvACL, envValue: "private",
			opts: Options{ACL: "authenticated-read"}, optValue: "authenticated-read", def: DefaultACL,
			get: func(c Config) any { return c.ACL },
		},
		{
			name: "driver", env: EnvDriver, envValue: DriverAWS,
			opts: Options{Driver: "other"}, optValue: "other", def: DefaultDriver,
			get: func(c Config) any { return c.Driver },
		},
		{
			name: "cleanup on failure", env: EnvCleanupOnFailure, envValue: "true",
			opts: Options{CleanupOnFailure: boolPtr(false)}, optValue: false, def: false,
			get: func(c Config) any { return c.CleanupOnFailure },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withEnv := NewConfig(tt.opts, envMap(map[string]string{tt.env: tt.envValue}))
			want := any(tt.envValue)
			switch tt.optValue.(type) {
			case bool:
				want = tt.envValue == "true"
			}
			if tt.env == EnvPathPrefix {
				want = "env/prefix"
			}
			assert.Equal(t, want, tt.get(withEnv), "env wins")

			withOpts := NewConfig(tt.opts, envMap(nil))
			assert.Equal(t, tt.optValue, tt.get(withOpts), "options beat default")

			defaults := NewConfig(Options{}, envMap(nil))
			assert.Equal(t, tt.def, tt.get(defaults), "default")
		})
	}
}

func TestNewConfig_EmptyEnvIsUnset(t *testing.T) {
	cfg := NewConfig(Options{Bucket: "imgs"}, envMap(map[string]string{EnvBucket: ""}))
	assert.Equal(t, "imgs", cfg.Bucket)
}

func TestNewConfig_BadBoolEnvFallsThrough(t *testing.T) {
	cfg := NewConfig(Options{ForcePathStyle: boolPtr(true)}, envMap(map[string]string{EnvForcePathStyle: "yes please"}))
	assert.True(t, cfg.ForcePathStyle)
}

func TestNewConfig_DefaultHost(t *testing.T) {
	cfg := NewConfig(Options{Region: "eu-west-1", Bucket: "imgs"}, envMap(nil))
	assert.Equal(t, "https://s3-eu-west-1.amazonaws.com/imgs", cfg.AssetHost)

	cfg = NewConfig(Options{Region: "us-east-1", Bucket: "imgs"}, envMap(nil))
	assert.Equal(t, "https://s3.amazonaws.com/imgs", cfg.AssetHost)

	// The host is synthesized from the resolved region and bucket.
	cfg = NewConfig(Options{Region: "us-east-1", Bucket: "imgs"}, envMap(map[string]string{
		EnvRegion: "sa-east-1",
		EnvBucket: "media",
	}))
	assert.Equal(t, "https://s3-sa-east-1.amazonaws.com/media", cfg.AssetHost)
}

func TestDefaultAssetHost(t *testing.T) {
	for _, region := range []string{"eu-west-1", "us-west-2", "ap-northeast-1", "us-east-2"} {
		assert.Equal(t, "https://s3-"+region+".amazonaws.com/b", DefaultAssetHost(region, "b"))
	}
	assert.Equal(t, "https://s3.amazonaws.com/b", DefaultAssetHost("us-east-1", "b"))
}

func TestConfig_NewFactory(t *testing.T) {
	minioCfg := NewConfig(Options{}, envMap(nil))
	assert.IsType(t, &objectstore.MinioFactory{}, minioCfg.NewFactory())

	awsCfg := NewConfig(Options{Driver: DriverAWS}, envMap(nil))
	assert.IsType(t, &objectstore.AWSFactory{}, awsCfg.NewFactory())
}

func TestConfig_ObjectStoreOptions(t *testing.T) {
	cfg := NewConfig(Options{
		Region:          "eu-west-1",
		Bucket:          "imgs",
		Endpoint:        "http://minio:9000",
		ForcePathStyle:  boolPtr(true),
		AccessKeyID:     "id",
		SecretAccessKey: "secret",
	}, envMap(nil))

	assert.Equal(t, objectstore.Options{
		Region:           "eu-west-1",
		Bucket:           "imgs",
		Endpoint:         "http://minio:9000",
		ForcePathStyle:   true,
		SignatureVersion: "v4",
		AccessKeyID:      "id",
		SecretAccessKey:  "secret",
	}, cfg.ObjectStoreOptions())
}

package s3

import (
	"os"
	"strings"
	"time"

	"github.com/inkwell-press/inkwell/utils"
)

const (
	ErrNilConfig        = utils.Error("s3: config is nil")
	ErrMissingRegion    = utils.Error("s3: region or endpoint is required")
	ErrMissingBucket    = utils.Error("s3: bucket is required")
	ErrMissingSecretKey = utils.Error("s3: secret access key is required")
	ErrInvalidTimeout   = utils.Error("s3: invalid timeout")
	ErrInvalidPartSize  = utils.Error("s3: invalid multipart part size")

	DefaultRegion        = "us-east-1"
	DefaultTimeout       = 30 * time.Second
	DefaultUploadTimeout = 5 * time.Minute

	DefaultPartSize = 8 * 1024 * 1024 // 8MB
	MinPartSize     = 5 * 1024 * 1024
)

// Config holds the object store connection settings. SecretKeyEnvVar
// names the env var carrying the secret; an inline SecretAccessKey is
// the fallback for local development.
type Config struct {
	Endpoint             string `json:"endpoint"` // custom endpoint for S3-compatible services
	Region               string `json:"region"`
	Bucket               string `json:"bucket"`
	AccessKeyID          string `json:"accessKeyId"`
	SecretAccessKey      string `json:"secretAccessKey"`
	SecretKeyEnvVar      string `json:"secretKeyEnvVar"`
	ForcePathStyle       bool   `json:"forcePathStyle"` // required by MinIO and friends
	UseSSL               bool   `json:"useSSL"`
	TimeoutSeconds       int    `json:"timeoutSeconds"`
	UploadTimeoutSeconds int    `json:"uploadTimeoutSeconds"`
	PartSize             int64  `json:"partSize"`
	Concurrency          int    `json:"concurrency"`
}

func NewConfig() *Config {
	return &Config{
		Region:               DefaultRegion,
		UseSSL:               true,
		TimeoutSeconds:       int(DefaultTimeout.Seconds()),
		UploadTimeoutSeconds: int(DefaultUploadTimeout.Seconds()),
		PartSize:             DefaultPartSize,
		Concurrency:          5,
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if c.Endpoint == "" && c.Region == "" {
		return ErrMissingRegion
	}
	if c.Bucket == "" {
		return ErrMissingBucket
	}
	if c.TimeoutSeconds < 0 || c.UploadTimeoutSeconds < 0 {
		return ErrInvalidTimeout
	}
	if c.PartSize != 0 && c.PartSize < MinPartSize {
		return ErrInvalidPartSize
	}
	if c.AccessKeyID != "" && c.secretKey() == "" {
		return ErrMissingSecretKey
	}
	return nil
}

func (c *Config) secretKey() string {
	if c.SecretKeyEnvVar != "" {
		if v, ok := os.LookupEnv(c.SecretKeyEnvVar); ok {
			return v
		}
	}
	return c.SecretAccessKey
}

// EndpointURL returns the custom endpoint with protocol, or "" when
// using AWS defaults.
func (c *Config) EndpointURL() string {
	if c.Endpoint == "" {
		return ""
	}
	if strings.HasPrefix(c.Endpoint, "http://") || strings.HasPrefix(c.Endpoint, "https://") {
		return c.Endpoint
	}
	if c.UseSSL {
		return "https://" + c.Endpoint
	}
	return "http://" + c.Endpoint
}

func (c *Config) timeout() time.Duration {
	if c.TimeoutSeconds == 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c *Config) uploadTimeout() time.Duration {
	if c.UploadTimeoutSeconds == 0 {
		return DefaultUploadTimeout
	}
	return time.Duration(c.UploadTimeoutSeconds) * time.Second
}

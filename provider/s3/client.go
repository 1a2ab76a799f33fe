package s3

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/inkwell-press/inkwell/log"
)

// Client is a bucket-scoped object store client.
type Client struct {
	config        *Config
	s3Client      *awss3.Client
	uploader      *manager.Uploader
	downloader    *manager.Downloader
	timeout       time.Duration
	uploadTimeout time.Duration
	logger        *log.Logger
}

func NewClient(cfg *Config, logger *log.Logger) (*Client, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New("s3")
	}

	var awsConfig aws.Config
	if cfg.AccessKeyID != "" {
		awsConfig = aws.Config{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID, cfg.secretKey(), ""),
		}
	} else {
		// no static keys configured, use the ambient credential chain
		var err error
		awsConfig, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, err
		}
	}

	s3Client := awss3.NewFromConfig(awsConfig, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL())
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	partSize := cfg.PartSize
	if partSize == 0 {
		partSize = DefaultPartSize
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}

	return &Client{
		config:   cfg,
		s3Client: s3Client,
		uploader: manager.NewUploader(s3Client, func(u *manager.Uploader) {
			u.PartSize = partSize
			u.Concurrency = concurrency
		}),
		downloader: manager.NewDownloader(s3Client, func(d *manager.Downloader) {
			d.PartSize = partSize
			d.Concurrency = concurrency
		}),
		timeout:       cfg.timeout(),
		uploadTimeout: cfg.uploadTimeout(),
		logger: logger.
			WithField("endpoint", cfg.Endpoint).
			WithField("bucket", cfg.Bucket),
	}, nil
}

// Bucket returns the configured bucket name.
func (c *Client) Bucket() string {
	return c.config.Bucket
}

// Ping verifies that the bucket is reachable.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.s3Client.HeadBucket(ctx, &awss3.HeadBucketInput{
		Bucket: aws.String(c.config.Bucket),
	})
	return err
}

// Upload streams body into the bucket under key, using multipart
// transfer for large payloads.
func (c *Client) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	input := &awss3.PutObjectInput{
		Bucket: aws.String(c.config.Bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	started := time.Now()
	_, err := c.uploader.Upload(ctx, input)
	if err != nil {
		c.logger.Error(err, "object upload failed", map[string]interface{}{"key": key})
		return err
	}
	c.logger.Debug("object uploaded", map[string]interface{}{
		"key":        key,
		"elapsed_ms": time.Since(started).Milliseconds(),
	})
	return nil
}

// Download writes the object at key into w and returns the byte count.
func (c *Client) Download(ctx context.Context, key string, w io.WriterAt) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	n, err := c.downloader.Download(ctx, w, &awss3.GetObjectInput{
		Bucket: aws.String(c.config.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Stream opens the object for sequential reading; the caller closes the
// returned body. Content type and size come from the object metadata.
func (c *Client) Stream(ctx context.Context, key string) (io.ReadCloser, string, int64, error) {
	out, err := c.s3Client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(c.config.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", 0, err
	}
	return out.Body, aws.ToString(out.ContentType), aws.ToInt64(out.ContentLength), nil
}

// Delete removes the object at key; deleting a missing object is not
// an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.s3Client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(c.config.Bucket),
		Key:    aws.String(key),
	})
	return err
}

// Exists reports whether an object is present at key.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.s3Client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(c.config.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NotFound" || apiErr.ErrorCode() == "NoSuchKey") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PresignGet returns a time-limited URL for direct object download.
func (c *Client) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	presigner := awss3.NewPresignClient(c.s3Client)
	out, err := presigner.PresignGetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(c.config.Bucket),
		Key:    aws.String(key),
	}, awss3.WithPresignExpires(expires))
	if err != nil {
		return "", err
	}
	return out.URL, nil
}

package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// StorageType defines the type of S3-compatible storage
type StorageType string

const (
	StorageTypeR2           StorageType = "r2"
	StorageTypeS3           StorageType = "s3"
	StorageTypeS3Compatible StorageType = "s3compatible"
)

// Generated images are written once under a per-job key and never change.
const imageCacheControl = "public, max-age=31536000, immutable"

// S3Config holds configuration for S3-compatible storage
type S3Config struct {
	Type      StorageType
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
	PublicURL string // CDN or r2.dev prefix; empty serves from the endpoint
}

// S3Storage hosts generated images on an S3-compatible bucket.
type S3Storage struct {
	client     *s3.Client
	bucket     string
	region     string
	storeType  StorageType
	publicBase string
}

// NewS3Storage creates a new S3-compatible storage client.
// Parameters:
//   - cfg: endpoint, credentials and bucket settings.
//
// Returns:
//   - *S3Storage: client bound to cfg.Bucket.
//   - error: non-nil if the AWS configuration cannot be built.
func NewS3Storage(cfg *S3Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	host := normalizeEndpoint(cfg.Endpoint)
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
		if cfg.Type == StorageTypeR2 {
			region = "auto"
		}
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(scheme + "://" + host)
		o.UsePathStyle = true
	})

	return &S3Storage{
		client:     client,
		bucket:     cfg.Bucket,
		region:     region,
		storeType:  cfg.Type,
		publicBase: publicBaseURL(scheme, host, cfg.Bucket, cfg.PublicURL),
	}, nil
}

// normalizeEndpoint reduces an endpoint given with or without scheme and path to host[:port].
func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if !strings.Contains(endpoint, "://") {
		endpoint = "//" + endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return strings.Trim(strings.TrimPrefix(endpoint, "//"), "/")
	}
	return u.Host
}

// publicBaseURL is the prefix object keys are appended to. A configured public URL wins;
// otherwise objects are addressed path-style on the endpoint.
func publicBaseURL(scheme, host, bucket, publicURL string) string {
	if publicURL = strings.TrimRight(publicURL, "/"); publicURL != "" {
		return publicURL
	}
	return fmt.Sprintf("%s://%s/%s", scheme, host, bucket)
}

// EnsureBucket verifies the bucket is reachable and creates it where the provider allows.
func (s *S3Storage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	// R2 buckets can only be created from the dashboard
	if s.storeType == StorageTypeR2 {
		return fmt.Errorf("bucket %s is not reachable, create it in the R2 dashboard: %w", s.bucket, err)
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}
	if s.storeType == StorageTypeS3 && s.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.region),
		}
	}
	if _, err := s.client.CreateBucket(ctx, input); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Upload stores one generated image under key.
func (s *S3Storage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          reader,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String(imageCacheControl),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// GetURL returns the public URL of key.
func (s *S3Storage) GetURL(key string) string {
	return s.publicBase + "/" + strings.TrimLeft(key, "/")
}

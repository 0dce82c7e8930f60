package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	s3manager "github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	appconfig "github.com/pharos-backup/pharos/internal/config"
)

// ErrUnreachable marks a failed connectivity probe. The pipeline stops
// before touching any remote state when it sees this.
var ErrUnreachable = errors.New("destination not reachable")

type S3Client struct {
	client     *s3.Client
	uploader   *s3manager.Uploader
	bucket     string
	prefix     string
	region     string
	encryption string
}

// NewS3 builds the aws-s3 storage client from the destination URL and the
// provider-specific options. Credentials come from the default chain, or
// from the shared-config profile when one is configured.
func NewS3(ctx context.Context, cfg *appconfig.Config) (*S3Client, error) {
	loc, err := ParseS3URL(cfg.DestinationURL)
	if err != nil {
		return nil, err
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
		}
	})

	uploader := s3manager.NewUploader(client, func(u *s3manager.Uploader) {
		u.Concurrency = cfg.Jobs
	})

	return &S3Client{
		client:     client,
		uploader:   uploader,
		bucket:     loc.Bucket,
		prefix:     loc.Prefix,
		region:     awsCfg.Region,
		encryption: cfg.Encryption,
	}, nil
}

// TestConnectivity probes the destination. A missing bucket still counts as
// reachable; provisioning will create it later.
func (s *S3Client) TestConnectivity(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &s.bucket})
	if err == nil {
		return nil
	}

	var notFound *s3types.NotFound
	if errors.As(err, &notFound) {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}

// SetupBucket ensures the destination bucket exists, creating it if absent.
func (s *S3Client) SetupBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &s.bucket})
	if err == nil {
		return nil
	}

	var notFound *s3types.NotFound
	if !errors.As(err, &notFound) {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}

	input := &s3.CreateBucketInput{Bucket: &s.bucket}
	if s.region != "" && s.region != "us-east-1" {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(s.region),
		}
	}
	if _, err := s.client.CreateBucket(ctx, input); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Upload streams body to the bucket under the configured prefix.
func (s *S3Client) Upload(ctx context.Context, key string, body io.Reader) error {
	fullKey := path.Join(s.prefix, key)

	input := &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &fullKey,
		Body:   body,
	}
	if s.encryption != "" {
		input.ServerSideEncryption = s3types.ServerSideEncryption(s.encryption)
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return fmt.Errorf("failed to upload %s to S3: %w", fullKey, err)
	}
	return nil
}

func (s *S3Client) Close() error {
	return nil
}

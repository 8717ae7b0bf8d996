package s3

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"jobmatch-backend/internal/shared/storage/object"
)

// Store issues presigned GET URLs for resume objects in one bucket.
type Store struct {
	presign *s3.PresignClient
	bucket  string
	prefix  string
}

// Option adjusts how New builds the S3 client.
type Option func(*settings)

type settings struct {
	endpoint  string
	accessKey string
	secretKey string
}

// WithEndpoint targets an S3-compatible endpoint (MinIO, LocalStack) with path-style addressing.
func WithEndpoint(endpoint string) Option {
	return func(s *settings) { s.endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/") }
}

// WithStaticCredentials replaces the default credential chain. Empty keys are ignored.
func WithStaticCredentials(accessKey, secretKey string) Option {
	return func(s *settings) {
		s.accessKey = strings.TrimSpace(accessKey)
		s.secretKey = strings.TrimSpace(secretKey)
	}
}

// New loads the default AWS config chain and builds a presigning store for bucket.
func New(ctx context.Context, region, bucket, prefix string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	var set settings
	for _, opt := range opts {
		opt(&set)
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	if set.accessKey != "" && set.secretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(set.accessKey, set.secretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if set.endpoint != "" {
			o.BaseEndpoint = aws.String(set.endpoint)
			o.UsePathStyle = true
		}
	})
	return NewWithClient(client, bucket, prefix), nil
}

// NewWithClient wraps an existing S3 client.
func NewWithClient(client *s3.Client, bucket, prefix string) *Store {
	return &Store{
		presign: s3.NewPresignClient(client),
		bucket:  strings.TrimSpace(bucket),
		prefix:  normalizePrefix(prefix),
	}
}

// Bucket returns the bucket objects are signed against.
func (s *Store) Bucket() string { return s.bucket }

// SignURL presigns a GET for objectID, placed under the store prefix, valid for the clamped ttl.
func (s *Store) SignURL(ctx context.Context, objectID string, ttl time.Duration) (string, error) {
	objectID = strings.Trim(strings.TrimSpace(objectID), "/")
	if objectID == "" {
		return "", object.ErrInvalidKey
	}
	return s.SignKey(ctx, applyPrefix(s.prefix, objectID), ttl)
}

// SignKey presigns a GET for a bucket-absolute key. The prefix is not applied.
func (s *Store) SignKey(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", object.ErrInvalidKey
	}

	out, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = object.ClampTTL(ttl)
	})
	if err != nil {
		return "", fmt.Errorf("s3 presign get bucket=%s key=%s: %w", s.bucket, key, err)
	}
	return out.URL, nil
}

func normalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}

var (
	_ object.Signer    = (*Store)(nil)
	_ object.KeySigner = (*Store)(nil)
)

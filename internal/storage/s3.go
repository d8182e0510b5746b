// Package storage keeps exported artifacts in an S3 compatible bucket.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// DefaultPresignTTL is how long a presigned GET URL stays valid.
const DefaultPresignTTL = 15 * time.Minute

// ErrDisabled is returned when no bucket is configured.
var ErrDisabled = errors.New("artifact storage is not configured")

// Config describes the bucket. Endpoint is only needed for MinIO and other
// S3 compatible services.
type Config struct {
	Region     string
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	PathStyle  bool
	PresignTTL time.Duration
}

// Enabled reports whether a bucket is configured.
func (c Config) Enabled() bool {
	return c.Bucket != ""
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type getPresigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
)

// S3 stores artifacts in a bucket.
type S3 struct {
	bucket  string
	ttl     time.Duration
	objects objectPutter
	presign getPresigner
	now     func() time.Time
}

// New builds an S3 store from cfg. It returns ErrDisabled when no bucket is set.
func New(ctx context.Context, cfg Config) (*S3, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	return newS3(cfg, client, s3.NewPresignClient(client)), nil
}

func newS3(cfg Config, objects objectPutter, presign getPresigner) *S3 {
	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = DefaultPresignTTL
	}
	return &S3{bucket: cfg.Bucket, ttl: ttl, objects: objects, presign: presign, now: time.Now}
}

// Key returns a fresh object key for an artifact named name.
func (s *S3) Key(name string) string {
	d := s.now().UTC()
	return fmt.Sprintf("exports/%d/%02d/%02d/%s-%s", d.Year(), d.Month(), d.Day(), uuid.NewString(), path.Base(name))
}

// Put uploads body under key.
func (s *S3) Put(ctx context.Context, key, contentType string, body []byte) error {
	_, err := s.objects.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// PresignGet returns a time-limited download URL for key.
func (s *S3) PresignGet(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return req.URL, nil
}

// Store uploads an artifact under a fresh key and returns the key with a
// presigned URL.
func (s *S3) Store(ctx context.Context, name, contentType string, body []byte) (key, url string, err error) {
	key = s.Key(name)
	if err = s.Put(ctx, key, contentType, body); err != nil {
		return "", "", err
	}
	url, err = s.PresignGet(ctx, key)
	if err != nil {
		return "", "", err
	}
	return key, url, nil
}

// Spool uploads a printed PDF. It lets the bucket act as a print spool.
func (s *S3) Spool(ctx context.Context, name string, pdf []byte) error {
	return s.Put(ctx, s.Key(name), "application/pdf", pdf)
}

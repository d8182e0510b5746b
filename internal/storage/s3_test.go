package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	if in.Body != nil {
		f.body, _ = io.ReadAll(in.Body)
	}
	return &s3.PutObjectOutput{}, f.err
}

type fakePresigner struct {
	expires time.Duration
	err     error
}

func (f *fakePresigner) PresignGetObject(_ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	var opts s3.PresignOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	f.expires = opts.Expires
	if f.err != nil {
		return nil, f.err
	}
	return &v4.PresignedHTTPRequest{URL: "https://bucket.example/" + *in.Key + "?sig=1"}, nil
}

func TestNew_DisabledWithoutBucket(t *testing.T) {
	s, err := New(context.Background(), Config{Region: "us-east-1"})
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestNew_AppliesConfig(t *testing.T) {
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-west-1", lo.Region)
		assert.NotNil(t, lo.Credentials)
		return aws.Config{Region: lo.Region}, nil
	}
	var captured s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&captured)
		}
		return s3.New(s3.Options{Region: cfg.Region})
	}

	s, err := New(context.Background(), Config{
		Region: "eu-west-1", Endpoint: "http://127.0.0.1:9000",
		AccessKey: "minio", SecretKey: "minio123", Bucket: "cvs", PathStyle: true,
	})
	require.NoError(t, err)
	require.NotNil(t, s)
	require.NotNil(t, captured.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *captured.BaseEndpoint)
	assert.True(t, captured.UsePathStyle)
	assert.Equal(t, DefaultPresignTTL, s.ttl)
}

func TestNew_LoadError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}

	_, err := New(context.Background(), Config{Bucket: "cvs"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load-fail")
}

func TestS3_Store(t *testing.T) {
	put := &fakePutter{}
	pre := &fakePresigner{}
	s := newS3(Config{Bucket: "cvs", PresignTTL: time.Minute}, put, pre)
	s.now = func() time.Time { return time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC) }

	key, url, err := s.Store(context.Background(), "ada.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "exports/2024/03/07/"))
	assert.True(t, strings.HasSuffix(key, "-ada.pdf"))
	assert.Equal(t, "cvs", *put.in.Bucket)
	assert.Equal(t, "application/pdf", *put.in.ContentType)
	assert.Equal(t, int64(4), *put.in.ContentLength)
	assert.Equal(t, []byte("%PDF"), put.body)
	assert.Equal(t, time.Minute, pre.expires)
	assert.Contains(t, url, key)
}

func TestS3_KeyStripsDirectories(t *testing.T) {
	s := newS3(Config{Bucket: "cvs"}, &fakePutter{}, &fakePresigner{})
	key := s.Key("../../etc/passwd")
	assert.True(t, strings.HasSuffix(key, "-passwd"))
	assert.NotContains(t, key, "..")
}

func TestS3_Errors(t *testing.T) {
	s := newS3(Config{Bucket: "cvs"}, &fakePutter{err: errors.New("denied")}, &fakePresigner{})
	_, _, err := s.Store(context.Background(), "a.png", "image/png", []byte{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")

	s = newS3(Config{Bucket: "cvs"}, &fakePutter{}, &fakePresigner{err: errors.New("no creds")})
	_, err = s.PresignGet(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no creds")
}

func TestS3_Spool(t *testing.T) {
	put := &fakePutter{}
	s := newS3(Config{Bucket: "cvs"}, put, &fakePresigner{})
	require.NoError(t, s.Spool(context.Background(), "cv.pdf", []byte("%PDF")))
	assert.Equal(t, "application/pdf", *put.in.ContentType)
	assert.True(t, strings.HasSuffix(*put.in.Key, "-cv.pdf"))
}

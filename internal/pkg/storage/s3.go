package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/juju/errors"

	"github.com/mx-space/blogicum/internal/config"
)

// S3 stores objects in a bucket of an S3 compatible service.
type S3 struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewS3(cfg config.S3Config) (*S3, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, errors.NotValidf("incomplete s3 config: bucket and region")
	}

	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.PathStyle,
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		opts.BaseEndpoint = aws.String(endpoint)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		switch {
		case cfg.Endpoint != "" && cfg.PathStyle:
			publicURL = strings.TrimRight(aws.ToString(opts.BaseEndpoint), "/") + "/" + cfg.Bucket
		case cfg.Endpoint != "":
			publicURL = strings.TrimRight(aws.ToString(opts.BaseEndpoint), "/")
		default:
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return &S3{
		client:    s3.New(opts),
		bucket:    cfg.Bucket,
		publicURL: publicURL,
	}, nil
}

func (s *S3) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	return errors.Annotatef(err, "put s3://%s/%s", s.bucket, key)
}

func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return errors.Annotatef(err, "delete s3://%s/%s", s.bucket, key)
}

func (s *S3) URL(key string) string {
	return s.publicURL + "/" + strings.TrimLeft(key, "/")
}

// New builds the configured store.
func New(cfg *config.AppConfig) (Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageS3:
		return NewS3(cfg.Storage.S3)
	default:
		return NewLocal(cfg.Paths.MediaDir(), "/media"), nil
	}
}

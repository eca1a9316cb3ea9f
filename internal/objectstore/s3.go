package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/ingestguard/ingestguard/internal/apperror"
	"github.com/ingestguard/ingestguard/internal/metrics"
)

// retryConfig mirrors the bounded exponential backoff used for transient S3
// errors (network blips, throttling, 5xx).
type retryConfig struct {
	maxRetries     uint
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

var defaultRetry = retryConfig{
	maxRetries:     2,
	initialBackoff: 100 * time.Millisecond,
	maxBackoff:     2 * time.Second,
}

// S3Config configures the S3-backed Store.
type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	ForcePathStyle  bool
}

// S3Store implements Store against Amazon S3 or an S3-compatible endpoint.
type S3Store struct {
	client  *s3.Client
	bucket  string
	retry   retryConfig
	metrics *metrics.ObjectStoreMetrics
}

// NewS3Store builds a client from cfg, verifies bucket access with
// HeadBucket, and returns a ready-to-use Store. The bucket must already
// exist; this does not create it.
func NewS3Store(ctx context.Context, cfg S3Config, m *metrics.ObjectStoreMetrics) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, apperror.New(apperror.ConfigFatal, "new_s3_store", fmt.Errorf("bucket name is required"))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)),
	)
	if err != nil {
		return nil, apperror.New(apperror.ConfigFatal, "new_s3_store", fmt.Errorf("loading AWS config: %w", err))
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
		return nil, apperror.New(apperror.ConfigFatal, "new_s3_store", fmt.Errorf("accessing bucket %q: %w", cfg.Bucket, err))
	}

	return &S3Store{client: client, bucket: cfg.Bucket, retry: defaultRetry, metrics: m}, nil
}

func (s *S3Store) withRetry(ctx context.Context, op string, fn func() error) (err error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveOperation(op, time.Since(start), err)
	}()

	backoff := s.retry.initialBackoff
	for attempt := uint(0); ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if attempt >= s.retry.maxRetries {
			return apperror.New(apperror.TransientIO, op, err)
		}
		select {
		case <-ctx.Done():
			return apperror.New(apperror.TransientIO, op, ctx.Err())
		case <-time.After(backoff):
		}
		backoff = time.Duration(math.Min(float64(backoff*2), float64(s.retry.maxBackoff)))
	}
}

func (s *S3Store) PutStream(ctx context.Context, key, contentType string, src io.Reader, size int64) error {
	return s.withRetry(ctx, "put_stream", func() error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(key),
			Body:          src,
			ContentType:   aws.String(contentType),
			ContentLength: aws.Int64(size),
		})
		return err
	})
}

func (s *S3Store) PutSmall(ctx context.Context, key, contentType string, content []byte) error {
	return s.withRetry(ctx, "put_small", func() error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(content),
			ContentType: aws.String(contentType),
		})
		return err
	})
}

func (s *S3Store) GetStream(ctx context.Context, key string) (io.ReadCloser, error) {
	start := time.Now()
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	s.metrics.ObserveOperation("get_stream", time.Since(start), err)
	if err != nil {
		return nil, s3ErrToAppError(err, "get_stream")
	}
	return out.Body, nil
}

func (s *S3Store) GetBytes(ctx context.Context, key string) ([]byte, error) {
	body, err := s.GetStream(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, apperror.New(apperror.TransientIO, "get_bytes", err)
	}
	return data, nil
}

func (s *S3Store) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	start := time.Now()
	var infos []ObjectInfo
	var err error
	defer func() { s.metrics.ObserveOperation("list", time.Since(start), err) }()

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		var page *s3.ListObjectsV2Output
		page, err = paginator.NextPage(ctx)
		if err != nil {
			return nil, apperror.New(apperror.TransientIO, "list", err)
		}
		for _, obj := range page.Contents {
			info := ObjectInfo{Key: aws.ToString(obj.Key)}
			if obj.Size != nil {
				info.Size = *obj.Size
			}
			infos = append(infos, info)
		}
	}
	return infos, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	return s.withRetry(ctx, "delete", func() error {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		return err
	})
}

func s3ErrToAppError(err error, op string) error {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return apperror.New(apperror.NotFound, op, err)
	}
	return apperror.New(apperror.TransientIO, op, err)
}

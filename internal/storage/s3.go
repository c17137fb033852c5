package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const presignExpiry = time.Hour

// S3Store keeps uploaded files in an S3 bucket under
// raw-data/sales/<sessionID>/<filename>.
type S3Store struct {
	client *s3.Client
	bucket string
}

func NewS3Store(client *s3.Client, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

// NewS3ClientFromEnv loads AWS config and supports a LocalStack endpoint
// via AWS_S3_ENDPOINT or AWS_ENDPOINT.
func NewS3ClientFromEnv(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	endpoint := os.Getenv("AWS_S3_ENDPOINT")
	if endpoint == "" {
		endpoint = os.Getenv("AWS_ENDPOINT")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = sdkaws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return client, nil
}

func (s *S3Store) Put(ctx context.Context, sessionID, filename string, content []byte) (string, error) {
	key := ObjectKey(sessionID, filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(content),
		ContentType: sdkaws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return key, nil
}

func (s *S3Store) Get(ctx context.Context, sessionID, filename string) ([]byte, error) {
	key := ObjectKey(sessionID, filename)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer out.Body.Close()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return content, nil
}

func (s *S3Store) Delete(ctx context.Context, sessionID, filename string) error {
	key := ObjectKey(sessionID, filename)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// PresignPut generates a presigned PUT URL so browsers can upload the CSV
// directly to the bucket.
func (s *S3Store) PresignPut(ctx context.Context, sessionID, filename string) (string, error) {
	key := ObjectKey(sessionID, filename)
	presigner := s3.NewPresignClient(s.client)

	presigned, err := presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		ContentType: sdkaws.String("text/csv"),
	}, func(o *s3.PresignOptions) {
		o.Expires = presignExpiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign put object: %w", err)
	}
	return presigned.URL, nil
}

// FromEnv selects the blob store implementation: S3 when S3_ENABLED=true,
// local disk otherwise.
func FromEnv(ctx context.Context) (Store, error) {
	if os.Getenv("S3_ENABLED") != "true" {
		return NewLocalStore(os.Getenv("UPLOAD_DIR")), nil
	}

	client, err := NewS3ClientFromEnv(ctx)
	if err != nil {
		return nil, err
	}
	bucket := os.Getenv("S3_BUCKET_NAME")
	if bucket == "" {
		bucket = "micropulse-data-lake"
	}
	return NewS3Store(client, bucket), nil
}

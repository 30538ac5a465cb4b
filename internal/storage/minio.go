package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/debemdeboas/the-press/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIOStore struct { // implements Store, Provisioner
	client *minio.Client

	bucket  string
	baseURL string
}

func NewMinIOStore(cfg config.StorageConfig) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" || baseURL == "/uploads" {
		baseURL = client.EndpointURL().String() + "/" + cfg.Bucket
	}

	return &MinIOStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: baseURL,
	}, nil
}

func (s *MinIOStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return "", ErrExists
	}
	if code := minio.ToErrorResponse(err).Code; code != "NoSuchKey" {
		return "", fmt.Errorf("failed to check object: %w", err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "max-age=3600",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to minio: %w", err)
	}

	storageLogger.Info().Str("bucket", s.bucket).Str("key", key).Int64("size", size).Msg("Object uploaded")
	return publicURL(s.baseURL, key), nil
}

func (s *MinIOStore) List(ctx context.Context, prefix string) ([]Object, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objects := make([]Object, 0)
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("error listing objects: %w", object.Err)
		}
		objects = append(objects, Object{
			Key:          object.Key,
			URL:          publicURL(s.baseURL, object.Key),
			Size:         object.Size,
			LastModified: object.LastModified,
		})
	}
	return objects, nil
}

func (s *MinIOStore) Provision(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		storageLogger.Info().Str("bucket", s.bucket).Msg("Bucket already exists")
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	storageLogger.Info().Str("bucket", s.bucket).Msg("Bucket created")
	return nil
}

package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/MaheshMoholkar/ignite-lms/internal/app/config"
	"github.com/MaheshMoholkar/ignite-lms/internal/domain/entity"
	"github.com/MaheshMoholkar/ignite-lms/internal/platform/logger"
)

// ObjectStorage uploads user-provided media and hands back a FileRef with a
// presigned URL. PublicID is the object key used for later removal.
type ObjectStorage interface {
	Upload(ctx context.Context, fileName, contentType string, data []byte) (*entity.FileRef, error)
	Remove(ctx context.Context, publicID string) error
}

var ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"video/mp4":  true,
	"video/webm": true,
}

type MinioStorage struct {
	client    *minio.Client
	bucket    string
	urlExpiry time.Duration
	log       logger.Logger
}

func NewMinioStorage(ctx context.Context, cfg config.MinioConfig, log logger.Logger) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", cfg.Endpoint, err)
	}

	if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
		exists, errBucketExists := client.BucketExists(ctx, cfg.Bucket)
		if errBucketExists != nil || !exists {
			return nil, fmt.Errorf("failed to make/verify bucket %s: (make: %v / exists_check: %v)", cfg.Bucket, err, errBucketExists)
		}
	}

	return &MinioStorage{
		client:    client,
		bucket:    cfg.Bucket,
		urlExpiry: cfg.URLExpiry,
		log:       log,
	}, nil
}

func (s *MinioStorage) Upload(ctx context.Context, fileName, contentType string, data []byte) (*entity.FileRef, error) {
	if !allowedContentTypes[contentType] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, contentType)
	}

	ext := filepath.Ext(fileName)
	objectKey := fmt.Sprintf("uploads/%s%s", uuid.New().String(), ext)

	_, err := s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("failed to upload object %s to bucket %s: %w", objectKey, s.bucket, err)
	}

	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, s.urlExpiry, url.Values{})
	if err != nil {
		return nil, fmt.Errorf("failed to presign URL for object %s: %w", objectKey, err)
	}

	s.log.Infof("uploaded object %s (%d bytes) to bucket %s", objectKey, len(data), s.bucket)

	return &entity.FileRef{
		PublicID:  objectKey,
		URL:       presigned.String(),
		ExpiresAt: time.Now().Add(s.urlExpiry).Unix(),
	}, nil
}

func (s *MinioStorage) Remove(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s from bucket %s: %w", publicID, s.bucket, err)
	}
	return nil
}

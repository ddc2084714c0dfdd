package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/fadilmartias/cv-batch-analyzer/internal/config"
	"github.com/fadilmartias/cv-batch-analyzer/internal/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

type StorageServiceInterface interface {
	Upload(ctx context.Context, objectName string, data []byte, contentType string) error
	PublicURL(objectName string) string
}

type StorageService struct {
	client *minio.Client
	bucket string
	config *config.StorageConfig
	logger *zap.Logger
}

func NewStorageService(cfg *config.StorageConfig, log *zap.Logger) (*StorageService, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("STORAGE_ENDPOINT not set")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &StorageService{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
		logger: logger.OrNop(log),
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (s *StorageService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	s.logger.Info("storage bucket created", zap.String("bucket", s.bucket))
	return nil
}

// Upload writes data under objectName, replacing any previous object.
func (s *StorageService) Upload(ctx context.Context, objectName string, data []byte, contentType string) error {
	info, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	s.logger.Info("object uploaded",
		zap.String("bucket", s.bucket),
		zap.String("object", objectName),
		zap.Int64("size", info.Size),
	)
	return nil
}

func (s *StorageService) PublicURL(objectName string) string {
	protocol := "http"
	if s.config.UseSSL {
		protocol = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", protocol, s.config.Endpoint, s.bucket, objectName)
}

package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/lumeatelie/lume-backend/pkg/logger"
)

const (
	// PendingFolder holds personalization uploads that are not yet attached
	// to a paid order. The cleanup scheduler sweeps stale objects.
	PendingFolder = "pending"

	// OrdersFolder holds uploads promoted when their order is created.
	OrdersFolder = "orders"

	presignExpiry = 15 * time.Minute
)

type S3Storage struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

type PresignedURLResponse struct {
	UploadURL string `json:"upload_url"`
	FileURL   string `json:"file_url"`
	Key       string `json:"key"`
}

func NewS3Storage(region, bucket, accessKeyID, secretAccessKey, baseURL string) *S3Storage {
	var cfg aws.Config
	var err error

	// If credentials are provided, use them. Otherwise, use default credential chain
	if accessKeyID != "" && secretAccessKey != "" {
		cfg = aws.Config{
			Region: region,
			Credentials: credentials.NewStaticCredentialsProvider(
				accessKeyID,
				secretAccessKey,
				"",
			),
		}
	} else {
		cfg, err = config.LoadDefaultConfig(context.TODO(),
			config.WithRegion(region),
		)
		if err != nil {
			cfg = aws.Config{
				Region: region,
			}
		}
	}

	client := s3.NewFromConfig(cfg)

	return &S3Storage{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}
}

// GeneratePendingUploadURL returns a pre-signed PUT URL for a personalization
// image. The object lands in the pending folder until checkout promotes it.
func (s *S3Storage) GeneratePendingUploadURL(ctx context.Context, filename, contentType string) (*PresignedURLResponse, error) {
	ext := filepath.Ext(filename)
	key := fmt.Sprintf("%s/%s%s", PendingFolder, uuid.New().String(), ext)

	presignClient := s3.NewPresignClient(s.client)

	presignedReq, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	logger.Debug("Generated pending upload URL", map[string]interface{}{
		"key":          key,
		"content_type": contentType,
	})

	return &PresignedURLResponse{
		UploadURL: presignedReq.URL,
		FileURL:   s.objectURL(key),
		Key:       key,
	}, nil
}

// PromotePendingObject copies a pending upload into the order's folder and
// deletes the pending original. Returns the promoted object's public URL.
func (s *S3Storage) PromotePendingObject(ctx context.Context, pendingKey, orderNumber string) (string, error) {
	if !strings.HasPrefix(pendingKey, PendingFolder+"/") {
		return "", fmt.Errorf("key %q is not a pending upload", pendingKey)
	}

	destKey := fmt.Sprintf("%s/%s/%s", OrdersFolder, orderNumber, path.Base(pendingKey))

	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		CopySource: aws.String(s.bucket + "/" + pendingKey),
		Key:        aws.String(destKey),
	})
	if err != nil {
		return "", fmt.Errorf("failed to copy object: %w", err)
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(pendingKey),
	}); err != nil {
		// The copy already succeeded; the orphan is swept by the scheduler.
		logger.Warn("Failed to delete promoted pending object", map[string]interface{}{
			"key":   pendingKey,
			"error": err.Error(),
		})
	}

	logger.Info("Promoted personalization upload", map[string]interface{}{
		"from": pendingKey,
		"to":   destKey,
	})
	return s.objectURL(destKey), nil
}

// DeleteObject removes one object from the bucket.
func (s *S3Storage) DeleteObject(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// ListStalePendingUploads returns pending-folder keys last modified before
// the cutoff.
func (s *S3Storage) ListStalePendingUploads(ctx context.Context, olderThan time.Time) ([]string, error) {
	var stale []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(PendingFolder + "/"),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list pending uploads: %w", err)
		}
		for _, object := range page.Contents {
			if object.Key == nil || object.LastModified == nil {
				continue
			}
			if object.LastModified.Before(olderThan) {
				stale = append(stale, *object.Key)
			}
		}
	}

	return stale, nil
}

// ValidateFileSize validates the file size
func (s *S3Storage) ValidateFileSize(size int64, maxSize int64) error {
	if size > maxSize {
		return fmt.Errorf("file size exceeds maximum allowed size of %d bytes", maxSize)
	}
	return nil
}

// ValidateContentType validates the content type
func (s *S3Storage) ValidateContentType(contentType string, allowedTypes []string) error {
	for _, allowed := range allowedTypes {
		if contentType == allowed {
			return nil
		}
	}
	return fmt.Errorf("content type %s is not allowed", contentType)
}

func (s *S3Storage) objectURL(key string) string {
	if s.baseURL != "" {
		return fmt.Sprintf("%s/%s", s.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.client.Options().Region, key)
}

package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	appredis "github.com/medikart/medikart-backend/pkg/redis"
)

// S3Storage implements BlobStore on top of S3. Signed read URLs are cached
// in redis with a TTL below the presign expiry, so repeated progress reads
// do not re-sign every document key.
type S3Storage struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

type PresignedUploadResponse struct {
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
		cfg, err = awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion(region),
		)
		if err != nil {
			cfg = aws.Config{
				Region: region,
			}
		}
	}

	return &S3Storage{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		baseURL: baseURL,
	}
}

func (s *S3Storage) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store object %s: %w", key, err)
	}
	return s.ProxyURL(key), nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	// S3 DeleteObject is a no-op for missing keys, which gives us idempotency
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}

	appredis.InvalidateSignedURL(ctx, key)
	return nil
}

func (s *S3Storage) SignURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if cached, err := appredis.GetCachedSignedURL(ctx, key); err == nil && cached != "" {
		return cached, nil
	}

	presignClient := s3.NewPresignClient(s.client)
	presignedReq, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to sign URL for %s: %w", key, err)
	}

	// Cache for a bit less than the presign lifetime so callers never get
	// a URL that is about to expire
	cacheTTL := ttl - time.Minute
	if cacheTTL > 0 {
		_ = appredis.CacheSignedURL(ctx, key, presignedReq.URL, cacheTTL)
	}
	return presignedReq.URL, nil
}

func (s *S3Storage) ProxyURL(key string) string {
	if s.baseURL != "" {
		// CloudFront or custom domain
		return fmt.Sprintf("%s/%s", s.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.client.Options().Region, key)
}

// GeneratePresignedUpload generates a pre-signed PUT URL so the wizard can
// upload a document or menu image straight to the bucket.
func (s *S3Storage) GeneratePresignedUpload(ctx context.Context, filename, contentType, folder string, ttl time.Duration) (*PresignedUploadResponse, error) {
	ext := filepath.Ext(filename)
	key := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), ext)

	presignClient := s3.NewPresignClient(s.client)
	presignedReq, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return &PresignedUploadResponse{
		UploadURL: presignedReq.URL,
		FileURL:   s.ProxyURL(key),
		Key:       key,
	}, nil
}

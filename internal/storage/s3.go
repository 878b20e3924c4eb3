package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// S3Options configures the upload destination and how public URLs are
// derived.
type S3Options struct {
	Bucket    string
	KeyPrefix string
	Region    string
	// PublicBaseURL overrides URL derivation for S3-compatible endpoints
	// (MinIO and friends).
	PublicBaseURL string
}

// S3Service stores photos in Amazon S3 (or compatible APIs).
type S3Service struct {
	client   *s3.Client
	uploader *manager.Uploader
	opts     S3Options
}

func NewS3Service(client *s3.Client, opts S3Options) *S3Service {
	return &S3Service{
		client:   client,
		uploader: manager.NewUploader(client),
		opts:     opts,
	}
}

// UploadPhoto streams a single photo to the bucket under a random key and
// returns its public URL.
func (s *S3Service) UploadPhoto(ctx context.Context, ext, contentType string, body io.Reader) (string, error) {
	if s.opts.Bucket == "" {
		return "", fmt.Errorf("storage bucket is required")
	}

	key := uuid.NewString() + strings.ToLower(ext)
	if prefix := strings.Trim(s.opts.KeyPrefix, "/"); prefix != "" {
		key = prefix + "/" + key
	}

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.opts.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}

	return s.objectURL(key), nil
}

func (s *S3Service) objectURL(key string) string {
	if base := strings.TrimSuffix(s.opts.PublicBaseURL, "/"); base != "" {
		return base + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.opts.Bucket, s.opts.Region, key)
}

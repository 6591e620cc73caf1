package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// CSVContentType is the content type archived outputs are stored with.
const CSVContentType = "text/csv; charset=utf-8"

// MinIOService implements Archiver using MinIO.
type MinIOService struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinIOService creates a new MinIO archive service.
func NewMinIOService(cfg Config) (*MinIOService, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &MinIOService{
		client: client,
		bucket: cfg.GetMinIOBucket(),
		prefix: cfg.GetMinIOObjectPrefix(),
	}, nil
}

// EnsureBucketExists creates the archive bucket if it doesn't exist.
func (s *MinIOService) EnsureBucketExists(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
		}
	}

	return nil
}

// Archive uploads one output file under <prefix>/<runID>/<fileName>.
func (s *MinIOService) Archive(ctx context.Context, runID, fileName string, reader io.Reader, size int64) (string, error) {
	fileKey, err := ObjectKey(s.prefix, runID, fileName)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, s.bucket, fileKey, reader, size, minio.PutObjectOptions{
		ContentType: CSVContentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file %s: %w", fileKey, err)
	}
	return fileKey, nil
}

var _ Archiver = (*MinIOService)(nil)

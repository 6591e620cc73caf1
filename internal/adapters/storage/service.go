// Package storage archives standardized phone lists in S3-compatible object storage.
package storage

import (
	"context"
	"io"
)

// Archiver stores a copy of a produced output file.
type Archiver interface {
	// Archive uploads the content of one output file and returns its object key.
	Archive(ctx context.Context, runID, fileName string, reader io.Reader, size int64) (string, error)
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOBucket() string
	GetMinIOObjectPrefix() string
	IsMinIOEnabled() bool
}

package storage

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ObjectKey builds the object key for an archived file. runID must be a UUID
// and fileName a plain base name.
func ObjectKey(prefix, runID, fileName string) (string, error) {
	if _, err := uuid.Parse(runID); err != nil {
		return "", fmt.Errorf("invalid run id %q: %w", runID, err)
	}

	name := filepath.Base(filepath.ToSlash(fileName))
	if name == "." || name == "/" || name == ".." || strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("invalid file name %q", fileName)
	}

	prefix = strings.Trim(filepath.ToSlash(prefix), "/")
	if prefix == "" {
		return path.Join(runID, name), nil
	}
	return path.Join(prefix, runID, name), nil
}

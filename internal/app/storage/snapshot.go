package storage

import (
	"fmt"
	"strings"
	"time"

	"thinksync/internal/pkg/errs"
	"thinksync/internal/pkg/randx"
)

const (
	// MaxSnapshotSizeMB is the maximum allowed snapshot size in megabytes.
	MaxSnapshotSizeMB = 10

	// MaxSnapshotSize is the maximum allowed snapshot size in bytes.
	MaxSnapshotSize = MaxSnapshotSizeMB * 1024 * 1024

	// PresignedURLDuration is the fixed duration for which a presigned URL is valid.
	PresignedURLDuration = 5 * time.Minute

	// snapshotKeyPrefix namespaces all exported snapshots in the bucket.
	snapshotKeyPrefix = "snapshots/"
)

// AllowedMIMETypes defines the set of permitted MIME types for canvas snapshots.
var AllowedMIMETypes = map[string]struct{}{
	"image/png":     {},
	"image/jpeg":    {},
	"image/webp":    {},
	"image/svg+xml": {},
}

// mimeToExt maps allowed MIME types to the extension used in the object key.
var mimeToExt = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// ValidateSnapshotSize checks if the provided snapshot size is within acceptable limits.
func ValidateSnapshotSize(fileSize int64) *errs.CustomError {
	if fileSize <= 0 {
		return errs.NewError(errs.ErrInvalidParams)
	}

	if fileSize > MaxSnapshotSize {
		return errs.NewError(errs.ErrSnapshotTooLarge)
	}

	return nil
}

// ValidateSnapshotType checks if the provided MIME type is an allowed image format.
func ValidateSnapshotType(mimeType string) *errs.CustomError {
	if _, ok := AllowedMIMETypes[strings.ToLower(mimeType)]; !ok {
		return errs.NewError(errs.ErrSnapshotTypeInvalid)
	}

	return nil
}

// NewSnapshotKey builds the object key for a fresh snapshot of the given board.
func NewSnapshotKey(boardID, mimeType string) string {
	ext := mimeToExt[strings.ToLower(mimeType)]
	return fmt.Sprintf("%s%s/%s%s", snapshotKeyPrefix, boardID, randx.SnapshotID(), ext)
}

// ValidateSnapshotKey checks that a client-supplied key belongs to the given
// board's snapshot namespace.
func ValidateSnapshotKey(key, boardID string) *errs.CustomError {
	prefix := snapshotKeyPrefix + boardID + "/"
	if !strings.HasPrefix(key, prefix) || strings.Contains(key, "..") {
		return errs.NewError(errs.ErrSnapshotKeyInvalid)
	}

	return nil
}

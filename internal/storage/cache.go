package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/abbasi303/Marketting-dashboard/internal/models"
)

// ErrNoReport is returned when no report exists for the requested key, or
// when nothing has been uploaded yet.
var ErrNoReport = errors.New("storage: no report available")

// ReportCache stores processed reports. Reports are written whole and
// replaced whole; there are no partial updates. The latest pointer always
// refers to the most recently stored report.
type ReportCache interface {
	// Put stores the report under key and moves the latest pointer to it.
	Put(ctx context.Context, key string, rep *models.Report) error
	// Get returns the report stored under key.
	Get(ctx context.Context, key string) (*models.Report, error)
	// Latest returns the most recently stored report.
	Latest(ctx context.Context) (*models.Report, error)
	// Invalidate drops all stored reports and the latest pointer.
	Invalidate(ctx context.Context) error
}

// Key derives the cache key for an upload: the hex SHA-256 of the raw
// bytes. Identical content always maps to the same report. The upload
// handler computes the same digest incrementally while spooling the file
// to disk; this function is the keying contract both sides must agree on.
func Key(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abbasi303/Marketting-dashboard/internal/models"
)

const latestPointerFile = "latest"

// FileCache is the default report backend: one JSON document per key under
// a data directory, plus a pointer file naming the latest key. Writes go
// through a temp file and os.Rename so a reader never sees a half-written
// report.
type FileCache struct {
	dir    string
	ttl    time.Duration
	logger *zap.Logger
}

func NewFileCache(dir string, ttl time.Duration, logger *zap.Logger) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &FileCache{dir: dir, ttl: ttl, logger: logger}, nil
}

func (c *FileCache) reportPath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// writeAtomic writes data next to path and renames it into place.
func (c *FileCache) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (c *FileCache) Put(ctx context.Context, key string, rep *models.Report) error {
	data, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := c.writeAtomic(c.reportPath(key), data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := c.writeAtomic(filepath.Join(c.dir, latestPointerFile), []byte(key)); err != nil {
		return fmt.Errorf("failed to update latest pointer: %w", err)
	}
	if c.logger != nil {
		c.logger.Debug("report cached", zap.String("key", key), zap.Int("bytes", len(data)))
	}
	return nil
}

func (c *FileCache) Get(ctx context.Context, key string) (*models.Report, error) {
	path := c.reportPath(key)
	if c.ttl > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, ErrNoReport
		}
		if time.Since(info.ModTime()) > c.ttl {
			return nil, ErrNoReport
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrNoReport
	}
	var rep models.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("failed to decode cached report: %w", err)
	}
	return &rep, nil
}

func (c *FileCache) Latest(ctx context.Context) (*models.Report, error) {
	data, err := os.ReadFile(filepath.Join(c.dir, latestPointerFile))
	if err != nil {
		return nil, ErrNoReport
	}
	key := strings.TrimSpace(string(data))
	if key == "" {
		return nil, ErrNoReport
	}
	return c.Get(ctx, key)
}

func (c *FileCache) Invalidate(ctx context.Context) error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := e.Name()
		if name == latestPointerFile || strings.HasSuffix(name, ".json") {
			if err := os.Remove(filepath.Join(c.dir, name)); err != nil && !os.IsNotExist(err) {
				return err
			}
		}
	}
	return nil
}

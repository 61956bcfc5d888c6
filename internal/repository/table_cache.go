package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/godilite/cs-dashboard/internal/repository/models"
)

// LoadFunc reads a ticket table from a path.
type LoadFunc func(path string) (*models.Table, error)

// TableCache memoizes loaded tables by path for the process lifetime.
// Entries are never invalidated; the source file is assumed static.
type TableCache struct {
	mu     sync.RWMutex
	tables map[string]*models.Table
	sf     singleflight.Group
	load   LoadFunc
	logger *zap.Logger
}

// NewTableCache creates a cache backed by LoadFile.
func NewTableCache(logger *zap.Logger) *TableCache {
	return NewTableCacheWithLoader(LoadFile, logger)
}

// NewTableCacheWithLoader creates a cache with a custom loader.
func NewTableCacheWithLoader(load LoadFunc, logger *zap.Logger) *TableCache {
	if load == nil {
		panic("load func must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TableCache{
		tables: make(map[string]*models.Table),
		load:   load,
		logger: logger.Named("table-cache"),
	}
}

// Load returns the table for path, reading the file on first use only.
// Failed loads are not remembered.
func (c *TableCache) Load(ctx context.Context, path string) (*models.Table, error) {
	c.mu.RLock()
	t, ok := c.tables[path]
	c.mu.RUnlock()
	if ok {
		return t, nil
	}

	ch := c.sf.DoChan(path, func() (any, error) {
		c.mu.RLock()
		cached, ok := c.tables[path]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		started := time.Now()
		table, err := c.load(path)
		if err != nil {
			c.logger.Error("ticket load failed", zap.String("path", path), zap.Error(err))
			return nil, err
		}

		fields := []zap.Field{
			zap.String("path", path),
			zap.String("tickets", humanize.Comma(int64(table.Len()))),
			zap.Duration("elapsed", time.Since(started)),
		}
		if info, statErr := os.Stat(path); statErr == nil {
			fields = append(fields, zap.String("size", humanize.Bytes(uint64(info.Size()))))
		}
		c.logger.Info("ticket table loaded", fields...)

		c.mu.Lock()
		c.tables[path] = table
		c.mu.Unlock()
		return table, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("load %s: %w", path, res.Err)
		}
		return res.Val.(*models.Table), nil
	}
}

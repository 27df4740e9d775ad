// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package registrysource

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"daml.com/x/elm-outdated/pkg/registry"
	"daml.com/x/elm-outdated/pkg/schema"
	"daml.com/x/elm-outdated/pkg/utils"
)

// CachedSource keeps the last good payload per schema on disk and reuses it for ttl.
// When the inner source fails, a stale payload is used instead.
type CachedSource struct {
	inner    Source
	dir      string
	lockPath string
	ttl      time.Duration
	now      func() time.Time
}

var _ Source = (*CachedSource)(nil)

func NewCachedSource(inner Source, dir, lockPath string, ttl time.Duration) *CachedSource {
	return &CachedSource{
		inner:    inner,
		dir:      dir,
		lockPath: lockPath,
		ttl:      ttl,
		now:      time.Now,
	}
}

// CacheFileName is the cached payload of schema s, e.g. "registry-0.19.json"
func CacheFileName(s schema.Schema) string {
	return fmt.Sprintf("registry-%s.json", s.ElmVersion())
}

func (c *CachedSource) path(s schema.Schema) string {
	return filepath.Join(c.dir, CacheFileName(s))
}

func (c *CachedSource) Fetch(ctx context.Context, s schema.Schema) (data []byte, err error) {
	err = utils.WithFileLock(ctx, c.lockPath, func() error {
		data, err = c.fetchLocked(ctx, s)
		return err
	})
	return data, err
}

func (c *CachedSource) fetchLocked(ctx context.Context, s schema.Schema) ([]byte, error) {
	p := c.path(s)

	cached, modTime, err := readCached(p)
	if err != nil {
		return nil, err
	}
	if cached != nil && c.now().Sub(modTime) < c.ttl {
		slog.Debug("using cached registry", "path", p, "age", c.now().Sub(modTime).Round(time.Second))
		return cached, nil
	}

	fresh, err := c.inner.Fetch(ctx, s)
	if err == nil {
		// garbage is never cached
		_, err = registry.DecodePayload(fresh)
	}
	if err != nil {
		if cached != nil && ctx.Err() == nil {
			slog.Warn("registry unavailable, using stale cache", "source", c.inner.String(), "path", p, "err", err.Error())
			return cached, nil
		}
		return nil, err
	}

	if err := utils.WriteFileAtomic(p, fresh); err != nil {
		slog.Warn("failed to cache registry", "path", p, "err", err.Error())
	}
	return fresh, nil
}

func readCached(p string) ([]byte, time.Time, error) {
	info, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, time.Time{}, nil
		}
		return nil, time.Time{}, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, time.Time{}, err
	}
	return data, info.ModTime(), nil
}

func (c *CachedSource) String() string {
	return c.inner.String()
}

// Clean deletes every cached payload under dir and returns the removed paths
func Clean(ctx context.Context, dir, lockPath string) (removed []string, err error) {
	err = utils.WithFileLock(ctx, lockPath, func() error {
		for _, s := range schema.All {
			p := filepath.Join(dir, CacheFileName(s))
			if err := os.Remove(p); err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return err
			}
			removed = append(removed, p)
		}
		return nil
	})
	return removed, err
}

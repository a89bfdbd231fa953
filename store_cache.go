// Copyright (C) 2025-2026, VigilantDoomer
//
// This file is part of VITree program.
//
// VITree is free software: you can redistribute it
// and/or modify it under the terms of GNU General Public License
// as published by the Free Software Foundation, either version 2 of
// the License, or (at your option) any later version.
//
// VITree is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with VITree.  If not, see <https://www.gnu.org/licenses/>.

// store_cache
package main

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

const DEFAULT_CACHE_SIZE = 4096

// CachedStore is a read-through LRU cache in front of another store. Deep
// cells resolve the same ancestors' refs over and over, and every one of
// those is a database round trip otherwise
type CachedStore struct {
	inner   ConstraintStore
	cache   *lru.Cache
	metrics *Metrics
}

func NewCachedStore(inner ConstraintStore, size int, metrics *Metrics) (*CachedStore, error) {
	if size <= 0 {
		size = DEFAULT_CACHE_SIZE
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "create hyperplane cache")
	}
	return &CachedStore{inner: inner, cache: cache, metrics: metrics}, nil
}

func (c *CachedStore) Get(ctx context.Context, id int) (Hyperplane, error) {
	if v, ok := c.cache.Get(id); ok {
		c.metrics.CacheLookup(true)
		return v.(Hyperplane), nil
	}
	c.metrics.CacheLookup(false)
	h, err := c.inner.Get(ctx, id)
	if err != nil {
		return Hyperplane{}, err
	}
	c.cache.Add(id, h)
	return h, nil
}

// AllIDs is not cached, drivers call it once per run
func (c *CachedStore) AllIDs(ctx context.Context) ([]int, error) {
	return c.inner.AllIDs(ctx)
}

func (c *CachedStore) Dimension() int {
	return c.inner.Dimension()
}

func (c *CachedStore) Len() int {
	return c.cache.Len()
}

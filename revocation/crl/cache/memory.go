// Copyright The SignPDFKit Authors.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// memoryCache is an in-memory cache that stores CRL entries.
//
// The cache is built on top of the sync.Map to leverage the concurrency control
// and atomicity of the map, so it is suitable for writing once and reading many
// times.
type memoryCache struct {
	store  sync.Map
	maxAge time.Duration
}

// MemoryCacheOptions specifies values that are needed to create a memory
// cache
type MemoryCacheOptions struct {
	// MaxAge is the maximum age of the CRLs cache. If zero, DefaultMaxAge is
	// used
	MaxAge time.Duration
}

// NewMemoryCache creates a new memory store.
func NewMemoryCache(opts MemoryCacheOptions) Cache {
	c := &memoryCache{
		maxAge: opts.MaxAge,
	}
	if c.maxAge == 0 {
		c.maxAge = DefaultMaxAge
	}
	return c
}

// Get retrieves the CRL from the memory store.
func (c *memoryCache) Get(ctx context.Context, url string) (*Entry, error) {
	value, ok := c.store.Load(url)
	if !ok {
		return nil, ErrNotFound
	}

	entry, ok := value.(*Entry)
	if !ok {
		return nil, fmt.Errorf("invalid type: %T", value)
	}
	if expired(entry, c.maxAge) {
		return nil, ErrCacheMiss
	}
	return entry, nil
}

// Set stores the CRL in the memory store.
func (c *memoryCache) Set(ctx context.Context, url string, entry *Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	c.store.Store(url, entry)
	return nil
}

// Delete removes the CRL from the memory store.
func (c *memoryCache) Delete(ctx context.Context, url string) error {
	c.store.Delete(url)
	return nil
}

// Flush removes all CRLs from the memory store.
func (c *memoryCache) Flush(ctx context.Context) error {
	c.store.Range(func(key, value interface{}) bool {
		c.store.Delete(key)
		return true
	})
	return nil
}

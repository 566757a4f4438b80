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
	"errors"
	"testing"
	"time"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	// Test NewMemoryCache
	opts := MemoryCacheOptions{MaxAge: 5 * time.Minute}
	cache := NewMemoryCache(opts)
	if cache.(*memoryCache).maxAge != opts.MaxAge {
		t.Fatalf("expected maxAge %v, got %v", opts.MaxAge, cache.(*memoryCache).maxAge)
	}

	entry := &Entry{URL: "http://crl.example.com", DER: []byte{0x30, 0x00}, CreatedAt: time.Now()}
	key := entry.URL
	t.Run("SetAndGet", func(t *testing.T) {
		if err := cache.Set(ctx, key, entry); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		retrieved, err := cache.Get(ctx, key)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if retrieved != entry {
			t.Fatalf("expected entry %v, got %v", entry, retrieved)
		}
	})

	t.Run("GetWithExpiredEntry", func(t *testing.T) {
		expiredEntry := &Entry{URL: "http://expired.example.com", DER: []byte{0x30, 0x00}, CreatedAt: time.Now().Add(-10 * time.Minute)}
		if err := cache.Set(ctx, expiredEntry.URL, expiredEntry); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		_, err := cache.Get(ctx, expiredEntry.URL)
		if !errors.Is(err, ErrCacheMiss) {
			t.Fatalf("expected ErrCacheMiss, got %v", err)
		}
	})

	t.Run("SetInvalidEntry", func(t *testing.T) {
		if err := cache.Set(ctx, "http://invalid.example.com", &Entry{URL: "http://invalid.example.com"}); err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := cache.Delete(ctx, key); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		_, err := cache.Get(ctx, key)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Flush", func(t *testing.T) {
		if err := cache.Set(ctx, "key1", entry); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := cache.Set(ctx, "key2", entry); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := cache.Flush(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for _, k := range []string{"key1", "key2"} {
			if _, err := cache.Get(ctx, k); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound for %s, got %v", k, err)
			}
		}
	})
}

func TestMemoryCacheDefaultMaxAge(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{})
	if cache.(*memoryCache).maxAge != DefaultMaxAge {
		t.Fatalf("expected maxAge %v, got %v", DefaultMaxAge, cache.(*memoryCache).maxAge)
	}
}

func TestMemoryCacheInvalidType(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{}).(*memoryCache)
	cache.store.Store("key", "invalid")
	if _, err := cache.Get(context.Background(), "key"); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestEntryValidate(t *testing.T) {
	tests := []struct {
		name    string
		entry   *Entry
		wantErr bool
	}{
		{name: "nil", entry: nil, wantErr: true},
		{name: "missing url", entry: &Entry{DER: []byte{1}, CreatedAt: time.Now()}, wantErr: true},
		{name: "missing der", entry: &Entry{URL: "http://a", CreatedAt: time.Now()}, wantErr: true},
		{name: "missing creation time", entry: &Entry{URL: "http://a", DER: []byte{1}}, wantErr: true},
		{name: "valid", entry: &Entry{URL: "http://a", DER: []byte{1}, CreatedAt: time.Now()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

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

// Package cache provides methods for caching normalized CRL evidence, keyed
// by the URL of the CRL distribution point.
package cache

import (
	"context"
	"errors"
	"time"
)

// DefaultMaxAge is the default maximum age of the CRLs cache.
// If the CRL is older than DefaultMaxAge, it will be considered as expired.
const DefaultMaxAge = 24 * time.Hour

// Entry is a cached CRL
type Entry struct {
	// URL is the CRL distribution point the CRL was downloaded from
	URL string `cbor:"1,keyasint"`

	// DER is the DER encoded CRL
	DER []byte `cbor:"2,keyasint"`

	// CreatedAt is the time the CRL was downloaded
	CreatedAt time.Time `cbor:"3,keyasint"`
}

// Validate checks if the entry is usable
func (e *Entry) Validate() error {
	if e == nil {
		return errors.New("CRL cache entry is nil")
	}
	if e.URL == "" {
		return errors.New("CRL URL is empty")
	}
	if len(e.DER) == 0 {
		return errors.New("CRL is empty")
	}
	if e.CreatedAt.IsZero() {
		return errors.New("CRL creation time is empty")
	}
	return nil
}

// Cache is an interface that specifies methods used for caching
type Cache interface {
	// Get retrieves the CRL entry by url
	//
	// - if the key does not exist, return ErrNotFound
	// - if the entry is expired, return ErrCacheMiss
	Get(ctx context.Context, url string) (*Entry, error)

	// Set stores the CRL entry by url
	Set(ctx context.Context, url string, entry *Entry) error

	// Delete removes the CRL entry by url
	Delete(ctx context.Context, url string) error

	// Flush removes all CRL entries
	Flush(ctx context.Context) error
}

func expired(entry *Entry, maxAge time.Duration) bool {
	return maxAge > 0 && time.Now().After(entry.CreatedAt.Add(maxAge))
}

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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
)

const (
	// tempFileName is the prefix of the temporary file
	tempFileName = "signpdfkit-crl-*"

	// fileExt is the extension of the cache files
	fileExt = ".cbor"

	// maxFileSize is the maximum size of a cache file in bytes
	maxFileSize = 64 * 1024 * 1024 // 64 MiB
)

// FileCache stores every CRL entry as a CBOR encoded file named after the
// SHA-256 of its URL. The cache builds on top of UNIX file system to leverage
// the file system concurrency control and atomicity.
//
// NOTE: For Windows, the atomicity is not guaranteed. Please avoid using this
// cache on Windows when the concurrent write is required.
type FileCache struct {
	// MaxAge is the maximum age of the CRLs cache. If the CRL is older than
	// MaxAge, it will be considered as expired.
	MaxAge time.Duration

	root string
}

// NewFileCache creates a new file system store
//
//   - root is the directory to store the CRLs.
func NewFileCache(root string) (*FileCache, error) {
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &FileCache{
		MaxAge: DefaultMaxAge,
		root:   root,
	}, nil
}

// Get retrieves the CRL entry from the file system
//
// - if the key does not exist, return ErrNotFound
// - if the file cannot be decoded, return *BrokenFileError
// - if the CRL is expired, return ErrCacheMiss
func (c *FileCache) Get(ctx context.Context, url string) (entry *Entry, err error) {
	f, err := os.Open(filepath.Join(c.root, fileName(url)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	data, err := io.ReadAll(io.LimitReader(f, maxFileSize))
	if err != nil {
		return nil, err
	}
	entry = &Entry{}
	if err := cbor.Unmarshal(data, entry); err != nil {
		return nil, &BrokenFileError{Err: fmt.Errorf("failed to decode CRL cache file: %w", err)}
	}
	if err := entry.Validate(); err != nil {
		return nil, &BrokenFileError{Err: err}
	}
	if entry.URL != url {
		return nil, &BrokenFileError{Err: fmt.Errorf("CRL cache file belongs to %s", entry.URL)}
	}

	if expired(entry, c.MaxAge) {
		// do not delete the file to maintain the idempotent behavior
		return nil, ErrCacheMiss
	}
	return entry, nil
}

// Set stores the CRL entry in the file system
func (c *FileCache) Set(ctx context.Context, url string, entry *Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	data, err := cbor.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode CRL cache entry: %w", err)
	}

	// save to temp file in the same directory so that rename stays on one
	// file system
	tempFile, err := os.CreateTemp(c.root, tempFileName)
	if err != nil {
		return err
	}
	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempFile.Name())
		return err
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempFile.Name())
		return err
	}

	// rename is atomic on UNIX-like platforms
	return os.Rename(tempFile.Name(), filepath.Join(c.root, fileName(url)))
}

// Delete removes the CRL entry file from file system
func (c *FileCache) Delete(ctx context.Context, url string) error {
	err := os.Remove(filepath.Join(c.root, fileName(url)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Flush removes all CRL entry files from the file system
func (c *FileCache) Flush(ctx context.Context) error {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		if err := os.Remove(filepath.Join(c.root, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// fileName returns the file name of the CRL entry
func fileName(url string) string {
	return hashURL(url) + fileExt
}

// hashURL hashes the URL with SHA256 and returns the hex-encoded result
func hashURL(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:])
}

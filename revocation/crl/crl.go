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

// Package crl provides a fetcher that downloads the CRL of a revocation
// source and normalizes it to DER.
package crl

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/signpdfkit/signpdfkit-go/revocation/crl/cache"
	"github.com/signpdfkit/signpdfkit-go/revocation/result"
	"github.com/signpdfkit/signpdfkit-go/revocation/source"
)

// maxCRLSize is the maximum size of CRL in bytes
const maxCRLSize = 64 * 1024 * 1024 // 64 MiB

// Fetcher is an interface that specifies methods used for fetching CRL
// evidence
type Fetcher interface {
	// Fetch retrieves the CRL of the source and returns it DER encoded
	Fetch(ctx context.Context, src source.Source) (*result.Evidence, error)
}

// FetcherOptions specifies values that are needed to fetch CRLs
type FetcherOptions struct {
	// HTTPClient is the HTTP client used to download CRLs. If nil,
	// http.DefaultClient is used
	HTTPClient *http.Client

	// Cache stores downloaded CRLs. If nil, every fetch downloads the CRL
	Cache cache.Cache

	// Logger receives cache failures and CRLs that do not parse
	Logger logr.Logger
}

type fetcher struct {
	httpClient  *http.Client
	cacheClient cache.Cache
	logger      logr.Logger
}

// NewFetcher creates a new CRL Fetcher
//   - if httpClient is nil, http.DefaultClient will be used
//   - if cache is nil, no cache will be used
func NewFetcher(opts FetcherOptions) Fetcher {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := opts.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	return &fetcher{
		httpClient:  httpClient,
		cacheClient: opts.Cache,
		logger:      logger,
	}
}

// Fetch retrieves the CRL of src
//
// Steps:
//  1. Try to get from cache, if any
//  2. If not exist, expired or broken, download, normalize to DER and save
//     to cache
func (f *fetcher) Fetch(ctx context.Context, src source.Source) (*result.Evidence, error) {
	if src.Method != result.RevocationMethodCRL {
		return nil, result.MethodMismatchError{Expected: result.RevocationMethodCRL, Actual: src.Method}
	}
	if src.URL == "" {
		return nil, errors.New("CRL URL is empty")
	}

	if f.cacheClient != nil {
		entry, err := f.cacheClient.Get(ctx, src.URL)
		switch {
		case err == nil:
			return &result.Evidence{
				Method: result.RevocationMethodCRL,
				URL:    src.URL,
				DER:    entry.DER,
			}, nil
		case errors.Is(err, cache.ErrNotFound), errors.Is(err, cache.ErrCacheMiss):
		default:
			f.logger.V(1).Info("ignoring unusable CRL cache entry", "url", src.URL, "error", err.Error())
		}
	}

	der, err := download(ctx, src.URL, f.httpClient)
	if err != nil {
		return nil, err
	}
	if _, err := x509.ParseRevocationList(der); err != nil {
		f.logger.Info("downloaded CRL does not parse, keeping it as is", "url", src.URL, "error", err.Error())
	}

	if f.cacheClient != nil {
		entry := &cache.Entry{URL: src.URL, DER: der, CreatedAt: time.Now()}
		if err := f.cacheClient.Set(ctx, src.URL, entry); err != nil {
			f.logger.Info("failed to save CRL to cache", "url", src.URL, "error", err.Error())
		}
	}

	return &result.Evidence{
		Method: result.RevocationMethodCRL,
		URL:    src.URL,
		DER:    der,
	}, nil
}

func download(ctx context.Context, crlURL string, client *http.Client) ([]byte, error) {
	// validate URL
	parsedURL, err := url.Parse(crlURL)
	if err != nil {
		return nil, fmt.Errorf("invalid CRL URL: %w", err)
	}
	if !strings.EqualFold(parsedURL.Scheme, "http") && !strings.EqualFold(parsedURL.Scheme, "https") {
		return nil, fmt.Errorf("unsupported scheme: %s. Only supports CRL URL in HTTP protocol", parsedURL.Scheme)
	}

	// download CRL
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, crlURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create CRL request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return nil, TimeoutError{URL: crlURL}
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &result.HTTPStatusError{URL: crlURL, StatusCode: resp.StatusCode}
	}

	// read with size limit
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCRLSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read CRL response: %w", err)
	}
	if len(data) == maxCRLSize {
		return nil, fmt.Errorf("CRL size exceeds the limit: %d", maxCRLSize)
	}
	if len(data) == 0 {
		return nil, errors.New("CRL response is empty")
	}
	return ToDER(data), nil
}

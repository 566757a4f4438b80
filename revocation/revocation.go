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

// Package revocation assembles the long-term validation bundle of a CMS
// signature: it fetches the OCSP and CRL evidence of the revocation sources
// reported for the signature and serializes it together with the CMS.
package revocation

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/signpdfkit/signpdfkit-go/revocation/crl"
	"github.com/signpdfkit/signpdfkit-go/revocation/crl/cache"
	"github.com/signpdfkit/signpdfkit-go/revocation/ocsp"
	"github.com/signpdfkit/signpdfkit-go/revocation/result"
	"github.com/signpdfkit/signpdfkit-go/revocation/source"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultFetchTimeout bounds a single OCSP or CRL fetch
	DefaultFetchTimeout = 10 * time.Second

	// DefaultMaxConcurrency is the default number of fetches in flight
	DefaultMaxConcurrency = 4
)

// BuilderOptions specifies values that are needed to build validation
// bundles
type BuilderOptions struct {
	// HTTPClient is used by the default OCSP and CRL fetchers. If nil, a
	// client with a Timeout of FetchTimeout is used
	HTTPClient *http.Client

	// OCSPFetcher overrides the default OCSP fetcher
	OCSPFetcher ocsp.Fetcher

	// CRLFetcher overrides the default CRL fetcher
	CRLFetcher crl.Fetcher

	// CRLCache is used by the default CRL fetcher. If nil, CRLs are always
	// downloaded
	CRLCache cache.Cache

	// FetchTimeout bounds every single fetch. A fetch that times out is
	// treated as failed. If zero, DefaultFetchTimeout is used
	FetchTimeout time.Duration

	// MaxConcurrency is the maximum number of fetches in flight. If zero,
	// DefaultMaxConcurrency is used
	MaxConcurrency int

	// Logger receives the fetch failures absorbed while building
	Logger logr.Logger
}

// Builder builds validation bundles. A Builder holds no per-build state, so
// a single Builder may serve concurrent builds.
type Builder struct {
	ocspFetcher    ocsp.Fetcher
	crlFetcher     crl.Fetcher
	fetchTimeout   time.Duration
	maxConcurrency int
	logger         logr.Logger
}

// NewBuilder creates a Builder
func NewBuilder(opts BuilderOptions) *Builder {
	b := &Builder{
		fetchTimeout:   opts.FetchTimeout,
		maxConcurrency: opts.MaxConcurrency,
		logger:         opts.Logger,
	}
	if b.fetchTimeout <= 0 {
		b.fetchTimeout = DefaultFetchTimeout
	}
	if b.maxConcurrency <= 0 {
		b.maxConcurrency = DefaultMaxConcurrency
	}
	if b.logger.GetSink() == nil {
		b.logger = logr.Discard()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: b.fetchTimeout}
	}
	b.ocspFetcher = opts.OCSPFetcher
	if b.ocspFetcher == nil {
		b.ocspFetcher = ocsp.NewFetcher(ocsp.FetcherOptions{
			HTTPClient: httpClient,
			Logger:     b.logger.WithName("ocsp"),
		})
	}
	b.crlFetcher = opts.CRLFetcher
	if b.crlFetcher == nil {
		b.crlFetcher = crl.NewFetcher(crl.FetcherOptions{
			HTTPClient: httpClient,
			Cache:      opts.CRLCache,
			Logger:     b.logger.WithName("crl"),
		})
	}
	return b
}

// Build fetches the evidence of sources and returns the validation bundle of
// cms.
//
// If includeRevocation is false, no fetch is attempted and the bundle carries
// the CMS only. A source whose fetch fails contributes no evidence; Build
// itself never fails. Within each kind, evidence follows the source order
// regardless of the order in which fetches complete.
func (b *Builder) Build(ctx context.Context, cms string, sources []source.Source, includeRevocation bool) *Bundle {
	bundle := newBundle(cms)
	if !includeRevocation || len(sources) == 0 {
		return bundle
	}

	results := make([]*result.FetchResult, len(sources))
	g := new(errgroup.Group)
	g.SetLimit(b.maxConcurrency)
	for i, src := range sources {
		g.Go(func() error {
			results[i] = b.fetch(ctx, src)
			return nil
		})
	}
	// fetch never returns an error to the group
	_ = g.Wait()

	for _, r := range results {
		if r == nil {
			continue
		}
		bundle.Results = append(bundle.Results, r)
		if !r.OK() {
			b.logger.Info("revocation evidence unavailable", "method", r.RevocationMethod.String(), "url", r.URL, "error", errString(r.Error))
			continue
		}
		encoded := base64.StdEncoding.EncodeToString(r.Evidence.DER)
		switch r.RevocationMethod {
		case result.RevocationMethodOCSP:
			bundle.OCSP = append(bundle.OCSP, encoded)
		case result.RevocationMethodCRL:
			bundle.CRL = append(bundle.CRL, encoded)
		}
	}
	return bundle
}

func (b *Builder) fetch(ctx context.Context, src source.Source) *result.FetchResult {
	ctx, cancel := context.WithTimeout(ctx, b.fetchTimeout)
	defer cancel()

	var (
		evidence *result.Evidence
		err      error
	)
	switch src.Method {
	case result.RevocationMethodOCSP:
		evidence, err = b.ocspFetcher.Fetch(ctx, src)
	case result.RevocationMethodCRL:
		evidence, err = b.crlFetcher.Fetch(ctx, src)
	default:
		return nil
	}
	if err == nil && (evidence == nil || len(evidence.DER) == 0) {
		return result.NewFetchResult(src.Method, src.URL, nil, errEmptyEvidence)
	}
	return result.NewFetchResult(src.Method, src.URL, evidence, err)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

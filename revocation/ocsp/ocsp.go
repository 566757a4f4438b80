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

// Package ocsp provides a fetcher that performs the binary OCSP exchange for
// a revocation source and returns the raw DER encoded OCSP response.
package ocsp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-logr/logr"
	"github.com/signpdfkit/signpdfkit-go/revocation/result"
	"github.com/signpdfkit/signpdfkit-go/revocation/source"
	"golang.org/x/crypto/ocsp"
)

const (
	requestContentType  = "application/ocsp-request"
	responseContentType = "application/ocsp-response"

	// Max size determined from https://www.ibm.com/docs/en/sva/9.0.6?topic=stanza-ocsp-max-response-size.
	// Typical size is ~4 KB
	ocspMaxResponseSize int64 = 20480 //bytes
)

// Fetcher is an interface that specifies methods used for fetching OCSP
// evidence
type Fetcher interface {
	// Fetch posts the OCSP request of the source to its responder and returns
	// the response verbatim
	Fetch(ctx context.Context, src source.Source) (*result.Evidence, error)
}

// FetcherOptions specifies values that are needed to fetch OCSP responses
type FetcherOptions struct {
	// HTTPClient is the HTTP client used to perform the OCSP request. If nil,
	// http.DefaultClient is used
	HTTPClient *http.Client

	// Logger receives debug information about the exchange
	Logger logr.Logger
}

type fetcher struct {
	httpClient *http.Client
	logger     logr.Logger
}

// NewFetcher creates a new OCSP Fetcher
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
		httpClient: httpClient,
		logger:     logger,
	}
}

// Fetch performs the OCSP exchange for src.
//
// The source must be an OCSP source carrying a request; otherwise an error is
// returned before any network activity.
func (f *fetcher) Fetch(ctx context.Context, src source.Source) (*result.Evidence, error) {
	if src.Method != result.RevocationMethodOCSP {
		return nil, result.MethodMismatchError{Expected: result.RevocationMethodOCSP, Actual: src.Method}
	}
	if len(src.Request) == 0 {
		return nil, ErrNoRequest
	}
	if serverURL, err := url.Parse(src.URL); err != nil {
		return nil, GenericError{Err: fmt.Errorf("invalid OCSP server URL: %w", err)}
	} else if !strings.EqualFold(serverURL.Scheme, "http") && !strings.EqualFold(serverURL.Scheme, "https") {
		return nil, GenericError{Err: fmt.Errorf("OCSPServer protocol %s is not supported", serverURL.Scheme)}
	}

	body, err := f.post(ctx, src)
	if err != nil {
		return nil, err
	}
	return &result.Evidence{
		Method: result.RevocationMethodOCSP,
		URL:    src.URL,
		DER:    body,
	}, nil
}

func (f *fetcher) post(ctx context.Context, src source.Source) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, src.URL, bytes.NewReader(src.Request))
	if err != nil {
		return nil, GenericError{Err: err}
	}
	httpReq.Header.Set("Content-Type", requestContentType)
	httpReq.Header.Set("Accept", responseContentType)

	resp, err := f.httpClient.Do(httpReq)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return nil, TimeoutError{URL: src.URL}
		}
		return nil, GenericError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &result.HTTPStatusError{URL: src.URL, StatusCode: resp.StatusCode}
	}
	if contentType := resp.Header.Get("Content-Type"); contentType != "" && !strings.HasPrefix(contentType, responseContentType) {
		f.logger.V(1).Info("unexpected OCSP response content type", "url", src.URL, "contentType", contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, ocspMaxResponseSize+1))
	if err != nil {
		return nil, GenericError{Err: err}
	}
	if int64(len(body)) > ocspMaxResponseSize {
		return nil, GenericError{Err: fmt.Errorf("OCSP response exceeds the limit: %d", ocspMaxResponseSize)}
	}
	if len(body) == 0 {
		return nil, GenericError{Err: errors.New("OCSP response is empty")}
	}

	switch {
	case bytes.Equal(body, ocsp.UnauthorizedErrorResponse):
		return nil, GenericError{Err: errors.New("OCSP unauthorized")}
	case bytes.Equal(body, ocsp.MalformedRequestErrorResponse):
		return nil, GenericError{Err: errors.New("OCSP malformed")}
	case bytes.Equal(body, ocsp.InternalErrorErrorResponse):
		return nil, GenericError{Err: errors.New("OCSP internal error")}
	case bytes.Equal(body, ocsp.TryLaterErrorResponse):
		return nil, GenericError{Err: errors.New("OCSP try later")}
	case bytes.Equal(body, ocsp.SigRequredErrorResponse):
		return nil, GenericError{Err: errors.New("OCSP signature required")}
	}
	return body, nil
}

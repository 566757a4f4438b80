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

// Package remote implements a CMS signer backed by a remote signing service
// reachable over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-logr/logr"
	"github.com/golang-jwt/jwt/v4"
	"github.com/signpdfkit/signpdfkit-go/signer"
)

// maxBodyLength specifies the max content can be received from the signing
// service. A CMS signature with its certificate chain is usually far below
// this limit.
const maxBodyLength = 1 * 1024 * 1024 // 1 MiB

const (
	// DefaultTimeout bounds a single signing request when no HTTPClient is
	// provided
	DefaultTimeout = 30 * time.Second

	// DefaultTokenLifetime is the validity period of a minted bearer token
	DefaultTokenLifetime = 5 * time.Minute
)

// ClientOptions specifies values that are needed to talk to the signing
// service
type ClientOptions struct {
	// HTTPClient is used to send the requests. If nil, a client with a
	// Timeout of DefaultTimeout is used
	HTTPClient *http.Client

	// TokenSecret is the HMAC key of the bearer token sent with every
	// request. If empty, no Authorization header is sent
	TokenSecret []byte

	// TokenLifetime is the validity period of the bearer token. If zero,
	// DefaultTokenLifetime is used
	TokenLifetime time.Duration

	// Logger receives the outcome of signing requests
	Logger logr.Logger
}

// Client signs digests through the signing service
type Client struct {
	httpClient    *http.Client
	endpoint      string
	tokenSecret   []byte
	tokenLifetime time.Duration
	logger        logr.Logger
	now           func() time.Time
}

var _ signer.CMSSigner = (*Client)(nil)

// NewClient creates a Client posting to endpoint
func NewClient(endpoint string, opts ClientOptions) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid signing service endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid signing service endpoint %q: an absolute http or https URL is required", endpoint)
	}
	c := &Client{
		httpClient:    opts.HTTPClient,
		endpoint:      endpoint,
		tokenSecret:   opts.TokenSecret,
		tokenLifetime: opts.TokenLifetime,
		logger:        opts.Logger,
		now:           time.Now,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if c.tokenLifetime <= 0 {
		c.tokenLifetime = DefaultTokenLifetime
	}
	if c.logger.GetSink() == nil {
		c.logger = logr.Discard()
	}
	return c, nil
}

// SignDigest sends digest together with options to the signing service and
// returns the CMS signature of the response.
//
// The request body is a JSON object holding every entry of options plus the
// "digest" member. The response must be a JSON object with a non-empty "cms"
// member.
func (c *Client) SignDigest(ctx context.Context, digest string, options map[string]string) (string, error) {
	payload := make(map[string]string, len(options)+1)
	for k, v := range options {
		payload[k] = v
	}
	payload["digest"] = digest
	reqBytes, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if len(c.tokenSecret) > 0 {
		token, err := c.token(options["email"])
		if err != nil {
			return "", fmt.Errorf("failed to mint bearer token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return "", &TimeoutError{URL: c.endpoint}
		}
		return "", fmt.Errorf("%s %q: %w", http.MethodPost, c.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{URL: c.endpoint, StatusCode: resp.StatusCode}
	}

	lr := &io.LimitedReader{R: resp.Body, N: maxBodyLength + 1}
	body, err := io.ReadAll(lr)
	if err != nil {
		return "", fmt.Errorf("%s %q: failed to read response: %w", http.MethodPost, c.endpoint, err)
	}
	if len(body) > maxBodyLength {
		return "", fmt.Errorf("%s %q: response exceeds the size limit %d bytes", http.MethodPost, c.endpoint, maxBodyLength)
	}
	var out struct {
		CMS string `json:"cms"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%s %q: malformed response: %w", http.MethodPost, c.endpoint, err)
	}
	if out.CMS == "" {
		return "", ErrEmptyCMS
	}
	c.logger.V(1).Info("digest signed", "endpoint", c.endpoint, "cmsLength", len(out.CMS))
	return out.CMS, nil
}

func (c *Client) token(subject string) (string, error) {
	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.tokenLifetime)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.tokenSecret)
}

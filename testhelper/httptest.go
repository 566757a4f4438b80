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

package testhelper

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
)

// MockResponse is the canned response a RecordingRoundTripper serves for a
// URL.
type MockResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte

	// Err, if set, is returned by RoundTrip instead of a response
	Err error
}

// RecordingRoundTripper serves canned responses keyed by request URL and
// records every request it receives. Unknown URLs respond with 404.
type RecordingRoundTripper struct {
	Responses map[string]MockResponse

	mu       sync.Mutex
	requests []*http.Request
	bodies   [][]byte
}

// NewRecordingRoundTripper creates a RecordingRoundTripper serving responses.
func NewRecordingRoundTripper(responses map[string]MockResponse) *RecordingRoundTripper {
	return &RecordingRoundTripper{Responses: responses}
}

func (rt *RecordingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		req.Body.Close()
	}
	rt.mu.Lock()
	rt.requests = append(rt.requests, req)
	rt.bodies = append(rt.bodies, body)
	rt.mu.Unlock()

	mock, ok := rt.Responses[req.URL.String()]
	if !ok {
		return &http.Response{
			Request:    req,
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(bytes.NewReader(nil)),
		}, nil
	}
	if mock.Err != nil {
		return nil, mock.Err
	}
	statusCode := mock.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	header := make(http.Header)
	if mock.ContentType != "" {
		header.Set("Content-Type", mock.ContentType)
	}
	return &http.Response{
		Request:    req,
		StatusCode: statusCode,
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(mock.Body)),
	}, nil
}

// Requests returns the requests received so far.
func (rt *RecordingRoundTripper) Requests() []*http.Request {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return append([]*http.Request(nil), rt.requests...)
}

// Bodies returns the request bodies received so far, in request order.
func (rt *RecordingRoundTripper) Bodies() [][]byte {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return append([][]byte(nil), rt.bodies...)
}

// Count returns the number of requests received so far.
func (rt *RecordingRoundTripper) Count() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return len(rt.requests)
}

// TimeoutError is a net.Error reporting a timeout.
type TimeoutError struct{}

func (e TimeoutError) Error() string {
	return "test timeout"
}

func (e TimeoutError) Timeout() bool {
	return true
}

func (e TimeoutError) Temporary() bool {
	return true
}

// NewTimeoutURLError returns the error http.Client reports when a request to
// rawURL times out.
func NewTimeoutURLError(method, rawURL string) error {
	return &url.Error{Op: method, URL: rawURL, Err: TimeoutError{}}
}

// ErrorRoundTripper fails every request.
type ErrorRoundTripper struct{}

func (rt ErrorRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return nil, fmt.Errorf("failed to execute request")
}

// ErrorReader fails every read.
type ErrorReader struct{}

func (r ErrorReader) Read(p []byte) (n int, err error) {
	return 0, fmt.Errorf("error")
}

func (r ErrorReader) Close() error {
	return nil
}

// ReadFailedRoundTripper responds 200 with a body that cannot be read.
type ReadFailedRoundTripper struct{}

func (rt ReadFailedRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return &http.Response{
		Request:    req,
		StatusCode: http.StatusOK,
		Body:       ErrorReader{},
	}, nil
}

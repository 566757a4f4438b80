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

// Package nativetest provides recording fakes of the native library.
// The nativetest should only be used in unit tests.
package nativetest

import (
	"context"
	"sync"

	"github.com/signpdfkit/signpdfkit-go/native"
)

// EmbedCall records the arguments of an EmbedCMS call.
type EmbedCall struct {
	PreSignature string
	Bundle       string
	OutputPath   string
}

// Signer is a native.Signer returning canned results.
type Signer struct {
	PreSignature  string
	DigestErr     error
	Descriptor    string
	DescriptorErr error
	EmbedStatus   int
	EmbedErr      error

	mu              sync.Mutex
	digestRequests  []native.DigestRequest
	revocationCalls []string
	embedCalls      []EmbedCall
}

func (s *Signer) CalculateDigest(ctx context.Context, req native.DigestRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.digestRequests = append(s.digestRequests, req)
	return s.PreSignature, s.DigestErr
}

func (s *Signer) RevocationParameters(ctx context.Context, cms string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revocationCalls = append(s.revocationCalls, cms)
	return s.Descriptor, s.DescriptorErr
}

func (s *Signer) EmbedCMS(ctx context.Context, preSignature, bundle, outputPath string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.embedCalls = append(s.embedCalls, EmbedCall{
		PreSignature: preSignature,
		Bundle:       bundle,
		OutputPath:   outputPath,
	})
	return s.EmbedStatus, s.EmbedErr
}

// DigestRequests returns the received digest requests.
func (s *Signer) DigestRequests() []native.DigestRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]native.DigestRequest(nil), s.digestRequests...)
}

// RevocationCalls returns the CMS of every RevocationParameters call.
func (s *Signer) RevocationCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.revocationCalls...)
}

// EmbedCalls returns the received embed calls.
func (s *Signer) EmbedCalls() []EmbedCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]EmbedCall(nil), s.embedCalls...)
}

// Verifier is a native.Verifier returning canned results.
type Verifier struct {
	Report    string
	VerifyErr error
	Signed    bool
	ExistsErr error
}

func (v *Verifier) Verify(ctx context.Context, inputPath string) (string, error) {
	return v.Report, v.VerifyErr
}

func (v *Verifier) SignatureExists(ctx context.Context, inputPath string) (bool, error) {
	return v.Signed, v.ExistsErr
}

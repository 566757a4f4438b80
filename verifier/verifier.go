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

// Package verifier verifies signed PDF documents through the native library.
package verifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/signpdfkit/signpdfkit-go/native"
)

// ErrUnavailable is returned when the native library provides no
// verification capability. It is distinct from a failed verification.
var ErrUnavailable = errors.New("verification is unavailable")

// VerificationError is returned when the native library fails to verify a
// document
type VerificationError struct {
	Path string
	Err  error
}

func (e *VerificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to verify %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("failed to verify %s", e.Path)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

// Verifier verifies signed PDF documents
type Verifier struct {
	lib    native.Verifier
	logger logr.Logger
}

// New creates a Verifier. A nil lib yields a Verifier whose operations
// return ErrUnavailable. Only an untyped nil is detected: a lib holding a
// nil pointer of a concrete type is called as is, and the implementation
// must handle its own nil receiver.
func New(lib native.Verifier, logger logr.Logger) *Verifier {
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	return &Verifier{lib: lib, logger: logger}
}

// Verify returns the verification report of the PDF at path as produced by
// the native library.
func (v *Verifier) Verify(ctx context.Context, path string) (string, error) {
	if v.lib == nil {
		return "", ErrUnavailable
	}
	report, err := v.lib.Verify(ctx, path)
	if err != nil {
		if errors.Is(err, native.ErrUnsupported) {
			return "", ErrUnavailable
		}
		return "", &VerificationError{Path: path, Err: err}
	}
	if report == "" {
		return "", &VerificationError{Path: path, Err: errors.New("native library returned no report")}
	}
	v.logger.V(1).Info("document verified", "path", path)
	return report, nil
}

// SignatureExists reports whether the PDF at path carries a signature
func (v *Verifier) SignatureExists(ctx context.Context, path string) (bool, error) {
	if v.lib == nil {
		return false, ErrUnavailable
	}
	ok, err := v.lib.SignatureExists(ctx, path)
	if err != nil {
		if errors.Is(err, native.ErrUnsupported) {
			return false, ErrUnavailable
		}
		return false, &VerificationError{Path: path, Err: err}
	}
	return ok, nil
}

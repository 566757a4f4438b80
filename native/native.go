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

// Package native defines the call contract of the native PDF signer and
// verifier. The native library computes the digest over the PDF byte range,
// embeds CMS signatures and validation data, and verifies signed documents;
// this module only drives it through the interfaces below.
package native

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by implementations that do not provide the
// requested capability, for example a library build without verification.
var ErrUnsupported = errors.New("native capability is not supported")

// DigestRequest carries every parameter of the native digest calculation.
type DigestRequest struct {
	InputPath     string
	ImagePath     string
	URL           string
	Location      string
	Reason        string
	ContactInfo   string
	FieldID       string
	Character     string
	SignatureType int
	Page          int
	Subfilter     int
	Visibility    int
	X             float64
	Y             float64
	Width         float64
	Height        float64
	DSS           int
}

// Signer is the signing half of the native library.
type Signer interface {
	// CalculateDigest prepares the document for signing and returns the
	// pre-signature document, a JSON object carrying response_code and, on
	// success, data.digest. An empty string stands for a null result.
	CalculateDigest(ctx context.Context, req DigestRequest) (string, error)

	// RevocationParameters returns the revocation descriptor document of
	// the CMS signature: a JSON array of {"type", "url", "request"} entries.
	RevocationParameters(ctx context.Context, cms string) (string, error)

	// EmbedCMS embeds the validation bundle document into the pre-signature
	// document and writes the signed PDF to outputPath. A zero status
	// means success.
	EmbedCMS(ctx context.Context, preSignature, bundle, outputPath string) (int, error)
}

// Verifier is the verification half of the native library.
type Verifier interface {
	// Verify returns the verification report document of the PDF at
	// inputPath. An empty string stands for a null result.
	Verify(ctx context.Context, inputPath string) (string, error)

	// SignatureExists reports whether the PDF at inputPath carries a
	// signature.
	SignatureExists(ctx context.Context, inputPath string) (bool, error)
}

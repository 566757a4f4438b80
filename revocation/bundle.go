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

package revocation

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/signpdfkit/signpdfkit-go/revocation/result"
)

var errEmptyEvidence = errors.New("fetcher returned no evidence")

// Bundle is the validation bundle handed to the native embed operation.
//
// The serialized form is
//
//	{"cms": "<base64 CMS>", "ocsp": ["<base64 DER>", ...], "crl": ["<base64 DER>", ...]}
//
// with the keys in that order. Empty evidence lists are serialized as [].
type Bundle struct {
	CMS  string   `json:"cms"`
	OCSP []string `json:"ocsp"`
	CRL  []string `json:"crl"`

	// Results holds the outcome of every fetched source, in source order
	Results []*result.FetchResult `json:"-"`
}

func newBundle(cms string) *Bundle {
	return &Bundle{
		CMS:  cms,
		OCSP: []string{},
		CRL:  []string{},
	}
}

// Document returns the serialized bundle
func (b *Bundle) Document() (string, error) {
	doc := struct {
		CMS  string   `json:"cms"`
		OCSP []string `json:"ocsp"`
		CRL  []string `json:"crl"`
	}{
		CMS:  b.CMS,
		OCSP: b.OCSP,
		CRL:  b.CRL,
	}
	if doc.OCSP == nil {
		doc.OCSP = []string{}
	}
	if doc.CRL == nil {
		doc.CRL = []string{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal validation bundle: %w", err)
	}
	return string(data), nil
}

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

// Package source parses the revocation descriptor document reported by the
// native signer into an ordered list of revocation sources.
package source

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/signpdfkit/signpdfkit-go/revocation/result"
)

const (
	typeOCSP = "ocsp"
	typeCRL  = "crl"
)

// Source is a single OCSP responder or CRL distribution point the signer
// certificate chain refers to.
type Source struct {
	// Method is the kind of the revocation source
	Method result.RevocationMethod

	// URL is the endpoint of the revocation source. It is never empty.
	URL string

	// Request is the DER encoded OCSP request. It is only set for OCSP
	// sources.
	Request []byte
}

// descriptorEntry is a single entry of the descriptor document.
//
// example:
//
//	[
//	  {"type": "ocsp", "url": "http://ocsp.example.com", "request": "MEMwQTA/..."},
//	  {"type": "crl", "url": "http://crl.example.com/ca.crl"}
//	]
type descriptorEntry struct {
	Type    string  `json:"type"`
	URL     string  `json:"url"`
	Request *string `json:"request,omitempty"`
}

// Parse parses the descriptor document into revocation sources, preserving
// the document order.
//
//   - a blank document yields no sources and no error
//   - entries of unrecognized type are skipped
//   - OCSP entries whose request is not valid base64 are skipped
func Parse(document string) ([]Source, error) {
	if strings.TrimSpace(document) == "" {
		return nil, nil
	}

	var entries []descriptorEntry
	if err := json.Unmarshal([]byte(document), &entries); err != nil {
		return nil, &MalformedDescriptorError{Err: err}
	}

	sources := make([]Source, 0, len(entries))
	for _, entry := range entries {
		if entry.URL == "" {
			continue
		}
		switch entry.Type {
		case typeOCSP:
			src := Source{
				Method: result.RevocationMethodOCSP,
				URL:    entry.URL,
			}
			if entry.Request != nil {
				request, err := base64.StdEncoding.DecodeString(*entry.Request)
				if err != nil {
					continue
				}
				src.Request = request
			}
			sources = append(sources, src)
		case typeCRL:
			sources = append(sources, Source{
				Method: result.RevocationMethodCRL,
				URL:    entry.URL,
			})
		}
	}
	return sources, nil
}

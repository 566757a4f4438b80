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

// Package result provides general objects that are used across revocation
package result

import "strconv"

// RevocationMethod is a type of enumerated value to characterize the kind of
// revocation evidence a source provides. It can be Unknown, OCSP or CRL
type RevocationMethod int

const (
	// RevocationMethodUnknown is used for revocation sources whose kind is
	// not recognized.
	RevocationMethodUnknown RevocationMethod = iota

	// RevocationMethodOCSP represents OCSP as the method used to obtain the
	// revocation evidence
	RevocationMethodOCSP

	// RevocationMethodCRL represents CRL as the method used to obtain the
	// revocation evidence
	RevocationMethodCRL
)

// String provides a conversion from a RevocationMethod to a string
func (m RevocationMethod) String() string {
	switch m {
	case RevocationMethodUnknown:
		return "Unknown"
	case RevocationMethodOCSP:
		return "OCSP"
	case RevocationMethodCRL:
		return "CRL"
	default:
		return "invalid revocation method with value " + strconv.Itoa(int(m))
	}
}

// Evidence is the binary revocation data obtained from a single revocation
// source
type Evidence struct {
	// Method is the kind of the evidence
	Method RevocationMethod

	// URL is the endpoint the evidence was obtained from
	URL string

	// DER is the DER encoded OCSP response or CRL
	DER []byte
}

// FetchResult encapsulates the outcome of fetching the evidence of a single
// revocation source.
type FetchResult struct {
	// RevocationMethod is the kind of the revocation source
	RevocationMethod RevocationMethod

	// URL is the endpoint of the revocation source
	URL string

	// Evidence is set if the fetch succeeded
	Evidence *Evidence

	// Error is set if the fetch failed. A failed fetch never fails the
	// bundle; the evidence is simply absent
	Error error
}

// OK returns true if the evidence was obtained.
func (r *FetchResult) OK() bool {
	return r != nil && r.Error == nil && r.Evidence != nil
}

// NewFetchResult creates a FetchResult object from its individual parts
func NewFetchResult(method RevocationMethod, url string, evidence *Evidence, err error) *FetchResult {
	return &FetchResult{
		RevocationMethod: method,
		URL:              url,
		Evidence:         evidence,
		Error:            err,
	}
}

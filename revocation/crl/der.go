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

package crl

import (
	"bytes"
	"encoding/base64"
	"strings"
)

const (
	pemBeginMarker = "BEGIN X509 CRL"
	pemEndMarker   = "END X509 CRL"
)

// ToDER normalizes a CRL as served by a distribution point to DER.
//
// If content carries "X509 CRL" PEM armor, the base64 body between the
// markers is decoded. Otherwise, or if the body cannot be decoded, content is
// returned unchanged as it is assumed to be DER already.
func ToDER(content []byte) []byte {
	if der, ok := decodePEMBody(content); ok {
		return der
	}
	return content
}

func decodePEMBody(content []byte) ([]byte, bool) {
	begin := bytes.Index(content, []byte(pemBeginMarker))
	if begin < 0 {
		return nil, false
	}
	end := bytes.Index(content[begin:], []byte(pemEndMarker))
	if end < 0 {
		return nil, false
	}
	end += begin

	// the body starts on the line after the begin marker and stops at the
	// line holding the end marker
	bodyStart := bytes.IndexByte(content[begin:end], '\n')
	if bodyStart < 0 {
		return nil, false
	}
	body := string(content[begin+bodyStart+1 : end])

	var encoded strings.Builder
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "---") {
			continue
		}
		encoded.WriteString(line)
	}
	if encoded.Len() == 0 {
		return nil, false
	}

	der, err := base64.StdEncoding.DecodeString(encoded.String())
	if err != nil || len(der) == 0 {
		return nil, false
	}
	return der, true
}

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

import "fmt"

// TimeoutError is returned when the download of a CRL exceeds the specified
// threshold
type TimeoutError struct {
	URL string
}

func (e TimeoutError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("exceeded timeout threshold for CRL download from %s", e.URL)
	}
	return "exceeded timeout threshold for CRL download"
}

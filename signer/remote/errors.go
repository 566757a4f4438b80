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

package remote

import (
	"errors"
	"fmt"
)

// ErrEmptyCMS is returned when the signing service responds without a CMS
// signature
var ErrEmptyCMS = errors.New("signing service returned no CMS signature")

// StatusError is returned when the signing service responds with a non-2xx
// status code
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("signing service %s responded with status code %d", e.URL, e.StatusCode)
}

// TimeoutError is returned when the signing service does not respond in
// time
type TimeoutError struct {
	URL string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request to signing service %s timed out", e.URL)
}

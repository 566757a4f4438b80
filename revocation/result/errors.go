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

package result

import (
	"fmt"
)

// MethodMismatchError is returned when a revocation source is handed to a
// fetcher of a different revocation method
type MethodMismatchError struct {
	Expected RevocationMethod
	Actual   RevocationMethod
}

func (e MethodMismatchError) Error() string {
	return fmt.Sprintf("revocation method mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// HTTPStatusError is returned when a revocation endpoint responds with a
// non-2xx status code
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s responded with status code %d", e.URL, e.StatusCode)
}

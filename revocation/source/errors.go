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

package source

import "fmt"

// MalformedDescriptorError is returned when a non-blank descriptor document
// is not a JSON array of revocation entries
type MalformedDescriptorError struct {
	Err error
}

func (e *MalformedDescriptorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed revocation descriptor: %v", e.Err)
	}
	return "malformed revocation descriptor"
}

func (e *MalformedDescriptorError) Unwrap() error {
	return e.Err
}

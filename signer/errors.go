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

package signer

import "fmt"

// SigningError is returned when the CMS signer fails to sign the digest.
// The signing attempt is aborted without a Result.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to sign digest: %v", e.Err)
	}
	return "failed to sign digest"
}

func (e *SigningError) Unwrap() error {
	return e.Err
}

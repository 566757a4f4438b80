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

package ocsp

import (
	"errors"
	"fmt"
)

// ErrNoRequest is returned when an OCSP source carries no request payload
var ErrNoRequest = errors.New("OCSP source has no request payload")

// GenericError is returned when there is an error during the OCSP exchange
type GenericError struct {
	Err error
}

func (e GenericError) Error() string {
	msg := "error fetching OCSP response"
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e GenericError) Unwrap() error {
	return e.Err
}

// TimeoutError is returned when the connection attempt to an OCSP URL exceeds
// the specified threshold
type TimeoutError struct {
	URL string
}

func (e TimeoutError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("exceeded timeout threshold for OCSP request to %s", e.URL)
	}
	return "exceeded timeout threshold for OCSP request"
}

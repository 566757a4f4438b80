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
	"testing"
)

func TestGenericError(t *testing.T) {
	t.Run("without_inner_error", func(t *testing.T) {
		err := GenericError{}
		expectedMsg := "error fetching OCSP response"

		if err.Error() != expectedMsg {
			t.Errorf("Expected %v but got %v", expectedMsg, err.Error())
		}
	})

	t.Run("with_inner_error", func(t *testing.T) {
		inner := errors.New("inner error")
		err := GenericError{Err: inner}
		expectedMsg := "error fetching OCSP response: inner error"

		if err.Error() != expectedMsg {
			t.Errorf("Expected %v but got %v", expectedMsg, err.Error())
		}
		if !errors.Is(err, inner) {
			t.Error("Expected errors.Is to match the inner error")
		}
	})
}

func TestTimeoutError(t *testing.T) {
	t.Run("without_url", func(t *testing.T) {
		err := TimeoutError{}
		expectedMsg := "exceeded timeout threshold for OCSP request"

		if err.Error() != expectedMsg {
			t.Errorf("Expected %v but got %v", expectedMsg, err.Error())
		}
	})

	t.Run("with_url", func(t *testing.T) {
		err := TimeoutError{URL: "http://ocsp.example.com"}
		expectedMsg := "exceeded timeout threshold for OCSP request to http://ocsp.example.com"

		if err.Error() != expectedMsg {
			t.Errorf("Expected %v but got %v", expectedMsg, err.Error())
		}
	})
}

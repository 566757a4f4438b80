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

import (
	"encoding/json"
	"strconv"
)

// Code is the response code of a signing attempt
type Code int

const (
	// CodeSuccess indicates the signed PDF was written
	CodeSuccess Code = 0

	// CodeReadFailed indicates the native library failed to open or read
	// the document
	CodeReadFailed Code = 1

	// CodeInvalidInput indicates the request was rejected before reaching
	// the native library
	CodeInvalidInput Code = 3

	// CodeProcessingFailed indicates the native library failed while
	// processing the PDF or violated its call contract
	CodeProcessingFailed Code = 4

	// CodePDFNotFound indicates the input PDF does not exist
	CodePDFNotFound Code = 5

	// CodeImageNotFound indicates the visualization image does not exist
	CodeImageNotFound Code = 6
)

// Status returns the response status paired with the code
func (c Code) Status() string {
	switch c {
	case CodeSuccess:
		return "success"
	case CodeReadFailed:
		return "Failed to open/read document"
	case CodeInvalidInput:
		return "Input parameters is incorrect"
	case CodePDFNotFound:
		return "PDF File not found"
	case CodeImageNotFound:
		return "Visualization Image not found"
	default:
		return "Failed when processing PDF"
	}
}

// String provides a conversion from a Code to a string
func (c Code) String() string {
	return strconv.Itoa(int(c)) + " (" + c.Status() + ")"
}

// codeFromNative maps a response code reported by the native library. Codes
// outside the taxonomy collapse to CodeProcessingFailed.
func codeFromNative(code int) Code {
	switch c := Code(code); c {
	case CodeSuccess, CodeReadFailed, CodeProcessingFailed, CodePDFNotFound, CodeImageNotFound:
		return c
	default:
		return CodeProcessingFailed
	}
}

// Result is the outcome of a signing attempt
type Result struct {
	ResponseCode   Code   `json:"response_code"`
	ResponseStatus string `json:"response_status"`
}

// NewResult creates the Result of code. Codes outside the taxonomy collapse
// to CodeProcessingFailed so that the status always matches the code.
func NewResult(code Code) *Result {
	switch code {
	case CodeSuccess, CodeReadFailed, CodeInvalidInput, CodeProcessingFailed, CodePDFNotFound, CodeImageNotFound:
	default:
		code = CodeProcessingFailed
	}
	return &Result{
		ResponseCode:   code,
		ResponseStatus: code.Status(),
	}
}

// Succeeded returns true if the signed PDF was written
func (r *Result) Succeeded() bool {
	return r != nil && r.ResponseCode == CodeSuccess
}

// Document returns the serialized result,
// {"response_code": <int>, "response_status": <string>}
func (r *Result) Document() string {
	data, _ := json.Marshal(r)
	return string(data)
}

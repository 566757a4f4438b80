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
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/signpdfkit/signpdfkit-go/native"
	"github.com/signpdfkit/signpdfkit-go/native/nativetest"
	"github.com/signpdfkit/signpdfkit-go/revocation"
	"github.com/signpdfkit/signpdfkit-go/testhelper"
)

const (
	testCMS          = "MIIBCMS"
	testPreSignature = `{"response_code":0,"response_status":"success","data":{"br1":0,"br2":100,"br3":200,"br4":300,"digest":"3f2a","is_dss":0,"obj_size":12}}`
)

func staticCMSSigner(cms string) (CMSSigner, *int) {
	calls := 0
	return CMSSignerFunc(func(ctx context.Context, digest string, options map[string]string) (string, error) {
		calls++
		return cms, nil
	}), &calls
}

func newTestSigner(t *testing.T, lib native.Signer, cmsSigner CMSSigner, opts Options) *Signer {
	t.Helper()
	opts.Logger = testr.New(t)
	s, err := New(lib, cmsSigner, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestNew(t *testing.T) {
	cmsSigner, _ := staticCMSSigner(testCMS)
	if _, err := New(nil, cmsSigner, Options{}); err == nil {
		t.Error("expected error for nil native signer")
	}
	if _, err := New(&nativetest.Signer{}, nil, Options{}); err == nil {
		t.Error("expected error for nil CMS signer")
	}
	if _, err := New(&nativetest.Signer{}, cmsSigner, Options{}); err != nil {
		t.Errorf("New() error = %v", err)
	}
}

func TestSignInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		output string
	}{
		{name: "not a pdf", input: "a.txt", output: "out.pdf"},
		{name: "empty input", input: "", output: "out.pdf"},
		{name: "output not a pdf", input: "in.pdf", output: "out.doc"},
		{name: "empty output", input: "in.pdf", output: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := &nativetest.Signer{PreSignature: testPreSignature}
			cmsSigner, calls := staticCMSSigner(testCMS)
			s := newTestSigner(t, lib, cmsSigner, Options{})

			res, err := s.Sign(context.Background(), SignRequest{InputPath: tt.input, OutputPath: tt.output})
			if err != nil {
				t.Fatalf("Sign() error = %v", err)
			}
			want := &Result{ResponseCode: CodeInvalidInput, ResponseStatus: "Input parameters is incorrect"}
			if !reflect.DeepEqual(res, want) {
				t.Errorf("Sign() = %+v, want %+v", res, want)
			}
			if n := len(lib.DigestRequests()); n != 0 {
				t.Errorf("expected no native call, got %d", n)
			}
			if *calls != 0 {
				t.Errorf("expected no CMS signer call, got %d", *calls)
			}
		})
	}
}

func TestSignPathSuffixIsCaseInsensitive(t *testing.T) {
	lib := &nativetest.Signer{PreSignature: testPreSignature}
	cmsSigner, _ := staticCMSSigner(testCMS)
	s := newTestSigner(t, lib, cmsSigner, Options{})

	res, err := s.Sign(context.Background(), SignRequest{InputPath: "IN.PDF", OutputPath: "out.Pdf"})
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if !res.Succeeded() {
		t.Errorf("Sign() = %+v, want success", res)
	}
}

func TestSignNativeFailureCodes(t *testing.T) {
	tests := []struct {
		nativeCode int
		want       Code
		status     string
	}{
		{nativeCode: 1, want: CodeReadFailed, status: "Failed to open/read document"},
		{nativeCode: 4, want: CodeProcessingFailed, status: "Failed when processing PDF"},
		{nativeCode: 5, want: CodePDFNotFound, status: "PDF File not found"},
		{nativeCode: 6, want: CodeImageNotFound, status: "Visualization Image not found"},
		{nativeCode: 2, want: CodeProcessingFailed, status: "Failed when processing PDF"},
		{nativeCode: 3, want: CodeProcessingFailed, status: "Failed when processing PDF"},
		{nativeCode: 99, want: CodeProcessingFailed, status: "Failed when processing PDF"},
		{nativeCode: -1, want: CodeProcessingFailed, status: "Failed when processing PDF"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("native code %d", tt.nativeCode), func(t *testing.T) {
			lib := &nativetest.Signer{
				PreSignature: fmt.Sprintf(`{"response_code":%d,"response_status":"native failure"}`, tt.nativeCode),
			}
			cmsSigner, calls := staticCMSSigner(testCMS)
			s := newTestSigner(t, lib, cmsSigner, Options{})

			res, err := s.Sign(context.Background(), SignRequest{InputPath: "in.pdf", OutputPath: "out.pdf"})
			if err != nil {
				t.Fatalf("Sign() error = %v", err)
			}
			if res.ResponseCode != tt.want || res.ResponseStatus != tt.status {
				t.Errorf("Sign() = %+v, want code %d status %q", res, tt.want, tt.status)
			}
			if *calls != 0 {
				t.Errorf("expected no CMS signer call, got %d", *calls)
			}
			if n := len(lib.EmbedCalls()); n != 0 {
				t.Errorf("expected no embed call, got %d", n)
			}
		})
	}
}

func TestSignDigestFailures(t *testing.T) {
	tests := []struct {
		name         string
		preSignature string
		digestErr    error
	}{
		{name: "native error", digestErr: errors.New("library crashed")},
		{name: "null result", preSignature: ""},
		{name: "malformed document", preSignature: "{not json"},
		{name: "missing digest", preSignature: `{"response_code":0,"response_status":"success","data":{}}`},
		{name: "missing data", preSignature: `{"response_code":0,"response_status":"success"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := &nativetest.Signer{PreSignature: tt.preSignature, DigestErr: tt.digestErr}
			cmsSigner, calls := staticCMSSigner(testCMS)
			s := newTestSigner(t, lib, cmsSigner, Options{})

			res, err := s.Sign(context.Background(), SignRequest{InputPath: "in.pdf", OutputPath: "out.pdf"})
			if err != nil {
				t.Fatalf("Sign() error = %v", err)
			}
			if res.ResponseCode != CodeProcessingFailed {
				t.Errorf("Sign() code = %d, want %d", res.ResponseCode, CodeProcessingFailed)
			}
			if *calls != 0 {
				t.Errorf("expected no CMS signer call, got %d", *calls)
			}
			if n := len(lib.EmbedCalls()); n != 0 {
				t.Errorf("expected no embed call, got %d", n)
			}
		})
	}
}

func TestSignWithoutRevocation(t *testing.T) {
	lib := &nativetest.Signer{PreSignature: testPreSignature}
	var gotDigest string
	var gotOptions map[string]string
	cmsSigner := CMSSignerFunc(func(ctx context.Context, digest string, options map[string]string) (string, error) {
		gotDigest = digest
		gotOptions = options
		return testCMS, nil
	})
	signerOptions := map[string]string{"email": "signer@example.com", "passcode": "123456"}
	s := newTestSigner(t, lib, cmsSigner, Options{SignerOptions: signerOptions})

	res, err := s.Sign(context.Background(), SignRequest{InputPath: "in.pdf", OutputPath: "out.pdf"})
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if want := `{"response_code":0,"response_status":"success"}`; res.Document() != want {
		t.Errorf("Sign() = %s, want %s", res.Document(), want)
	}
	if gotDigest != "3f2a" {
		t.Errorf("CMS signer received digest %q, want %q", gotDigest, "3f2a")
	}
	if !reflect.DeepEqual(gotOptions, signerOptions) {
		t.Errorf("CMS signer received options %v, want %v", gotOptions, signerOptions)
	}

	requests := lib.DigestRequests()
	if len(requests) != 1 {
		t.Fatalf("expected 1 digest request, got %d", len(requests))
	}
	wantRequest := DefaultSignOptions().digestRequest("in.pdf")
	if !reflect.DeepEqual(requests[0], wantRequest) {
		t.Errorf("digest request = %+v, want %+v", requests[0], wantRequest)
	}
	if n := len(lib.RevocationCalls()); n != 0 {
		t.Errorf("expected no revocation parameters call, got %d", n)
	}

	embeds := lib.EmbedCalls()
	if len(embeds) != 1 {
		t.Fatalf("expected 1 embed call, got %d", len(embeds))
	}
	want := nativetest.EmbedCall{
		PreSignature: testPreSignature,
		Bundle:       `{"cms":"MIIBCMS","ocsp":[],"crl":[]}`,
		OutputPath:   "out.pdf",
	}
	if embeds[0] != want {
		t.Errorf("embed call = %+v, want %+v", embeds[0], want)
	}
}

func TestSignWithRevocation(t *testing.T) {
	crlDER := testhelper.CreateCRL()
	descriptor := fmt.Sprintf(`[{"type":"ocsp","url":%q,"request":%q},{"type":"crl","url":%q}]`,
		testhelper.OCSPServerURL,
		base64.StdEncoding.EncodeToString(testhelper.CreateOCSPRequest()),
		testhelper.CRLDistributionPointURL)
	rt := testhelper.NewRecordingRoundTripper(map[string]testhelper.MockResponse{
		testhelper.OCSPServerURL:           {Err: testhelper.NewTimeoutURLError(http.MethodPost, testhelper.OCSPServerURL)},
		testhelper.CRLDistributionPointURL: {Body: testhelper.PEMEncodeCRL(crlDER)},
	})
	lib := &nativetest.Signer{PreSignature: testPreSignature, Descriptor: descriptor}
	cmsSigner, _ := staticCMSSigner(testCMS)
	s := newTestSigner(t, lib, cmsSigner, Options{
		BuilderOptions: revocation.BuilderOptions{HTTPClient: &http.Client{Transport: rt}},
	})

	opts := DefaultSignOptions()
	opts.DSS = DSSYes
	res, err := s.Sign(context.Background(), SignRequest{InputPath: "in.pdf", OutputPath: "out.pdf", Options: &opts})
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if !res.Succeeded() {
		t.Fatalf("Sign() = %+v, want success", res)
	}
	if calls := lib.RevocationCalls(); len(calls) != 1 || calls[0] != testCMS {
		t.Errorf("revocation parameters calls = %v, want [%s]", calls, testCMS)
	}
	if rt.Count() != 2 {
		t.Errorf("expected 2 requests, got %d", rt.Count())
	}
	embeds := lib.EmbedCalls()
	if len(embeds) != 1 {
		t.Fatalf("expected 1 embed call, got %d", len(embeds))
	}
	wantBundle := fmt.Sprintf(`{"cms":"MIIBCMS","ocsp":[],"crl":[%q]}`, base64.StdEncoding.EncodeToString(crlDER))
	if embeds[0].Bundle != wantBundle {
		t.Errorf("embedded bundle = %s, want %s", embeds[0].Bundle, wantBundle)
	}
}

func TestSignRevocationDescriptorFailures(t *testing.T) {
	tests := []struct {
		name          string
		descriptor    string
		descriptorErr error
	}{
		{name: "native error", descriptorErr: errors.New("no certificate in CMS")},
		{name: "malformed descriptor", descriptor: "not a descriptor"},
		{name: "empty descriptor", descriptor: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := testhelper.NewRecordingRoundTripper(nil)
			lib := &nativetest.Signer{
				PreSignature:  testPreSignature,
				Descriptor:    tt.descriptor,
				DescriptorErr: tt.descriptorErr,
			}
			cmsSigner, _ := staticCMSSigner(testCMS)
			s := newTestSigner(t, lib, cmsSigner, Options{
				BuilderOptions: revocation.BuilderOptions{HTTPClient: &http.Client{Transport: rt}},
			})

			opts := DefaultSignOptions()
			opts.DSS = DSSYes
			res, err := s.Sign(context.Background(), SignRequest{InputPath: "in.pdf", OutputPath: "out.pdf", Options: &opts})
			if err != nil {
				t.Fatalf("Sign() error = %v", err)
			}
			if !res.Succeeded() {
				t.Errorf("Sign() = %+v, want success", res)
			}
			if rt.Count() != 0 {
				t.Errorf("expected no request, got %d", rt.Count())
			}
			embeds := lib.EmbedCalls()
			if len(embeds) != 1 || embeds[0].Bundle != `{"cms":"MIIBCMS","ocsp":[],"crl":[]}` {
				t.Errorf("unexpected embed calls %+v", embeds)
			}
		})
	}
}

func TestSignEmbedFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		embedErr error
	}{
		{name: "nonzero status", status: 1},
		{name: "negative status", status: -1},
		{name: "native error", embedErr: errors.New("write failed")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := &nativetest.Signer{PreSignature: testPreSignature, EmbedStatus: tt.status, EmbedErr: tt.embedErr}
			cmsSigner, _ := staticCMSSigner(testCMS)
			s := newTestSigner(t, lib, cmsSigner, Options{})

			res, err := s.Sign(context.Background(), SignRequest{InputPath: "in.pdf", OutputPath: "out.pdf"})
			if err != nil {
				t.Fatalf("Sign() error = %v", err)
			}
			if res.ResponseCode != CodeProcessingFailed {
				t.Errorf("Sign() code = %d, want %d", res.ResponseCode, CodeProcessingFailed)
			}
		})
	}
}

func TestSignCMSSignerFailures(t *testing.T) {
	serviceErr := errors.New("signing service unavailable")
	tests := []struct {
		name    string
		cms     string
		err     error
		wantErr error
	}{
		{name: "signer error", err: serviceErr, wantErr: serviceErr},
		{name: "empty signature"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := &nativetest.Signer{PreSignature: testPreSignature}
			cmsSigner := CMSSignerFunc(func(ctx context.Context, digest string, options map[string]string) (string, error) {
				return tt.cms, tt.err
			})
			s := newTestSigner(t, lib, cmsSigner, Options{})

			res, err := s.Sign(context.Background(), SignRequest{InputPath: "in.pdf", OutputPath: "out.pdf"})
			if res != nil {
				t.Errorf("expected no result, got %+v", res)
			}
			var signingErr *SigningError
			if !errors.As(err, &signingErr) {
				t.Fatalf("expected *SigningError, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error to wrap %v, got %v", tt.wantErr, err)
			}
			if n := len(lib.EmbedCalls()); n != 0 {
				t.Errorf("expected no embed call, got %d", n)
			}
		})
	}
}

func TestSignCustomOptions(t *testing.T) {
	lib := &nativetest.Signer{PreSignature: testPreSignature}
	cmsSigner, _ := staticCMSSigner(testCMS)
	s := newTestSigner(t, lib, cmsSigner, Options{})

	opts := DefaultSignOptions()
	opts.Visibility = VisibleQR
	opts.Subfilter = PAdES
	opts.SignatureType = Seal
	opts.Page = 3
	opts.X, opts.Y = 10.5, 20
	if _, err := s.Sign(context.Background(), SignRequest{InputPath: "in.pdf", OutputPath: "out.pdf", Options: &opts}); err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	req := lib.DigestRequests()[0]
	if req.Visibility != 2 || req.Subfilter != 1 || req.SignatureType != 1 || req.Page != 3 || req.X != 10.5 || req.Y != 20 {
		t.Errorf("unexpected digest request %+v", req)
	}
}

func TestSignPreSignatureShapes(t *testing.T) {
	tests := []struct {
		name         string
		preSignature string
		want         Code
		wantEmbed    int
	}{
		{
			name:         "failure code with string data",
			preSignature: `{"response_code":5,"response_status":"PDF File not found","data":""}`,
			want:         CodePDFNotFound,
		},
		{
			name:         "failure code without status",
			preSignature: `{"response_code":6,"response_status":null}`,
			want:         CodeImageNotFound,
		},
		{
			name:         "fractional offsets",
			preSignature: `{"response_code":0,"response_status":"success","data":{"digest":"abc","br1":12.0,"obj_size":3.5}}`,
			want:         CodeSuccess,
			wantEmbed:    1,
		},
		{
			name:         "boolean dss flag",
			preSignature: `{"response_code":0,"response_status":"success","data":{"digest":"abc","is_dss":true}}`,
			want:         CodeSuccess,
			wantEmbed:    1,
		},
		{
			name:         "null data",
			preSignature: `{"response_code":0,"response_status":"success","data":null}`,
			want:         CodeProcessingFailed,
		},
		{
			name:         "data is not an object",
			preSignature: `{"response_code":0,"response_status":"success","data":"abc"}`,
			want:         CodeProcessingFailed,
		},
		{
			name:         "digest is not a string",
			preSignature: `{"response_code":0,"response_status":"success","data":{"digest":42}}`,
			want:         CodeProcessingFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := &nativetest.Signer{PreSignature: tt.preSignature}
			var gotDigest string
			cmsSigner := CMSSignerFunc(func(ctx context.Context, digest string, options map[string]string) (string, error) {
				gotDigest = digest
				return testCMS, nil
			})
			s := newTestSigner(t, lib, cmsSigner, Options{})

			res, err := s.Sign(context.Background(), SignRequest{InputPath: "in.pdf", OutputPath: "out.pdf"})
			if err != nil {
				t.Fatalf("Sign() error = %v", err)
			}
			if res.ResponseCode != tt.want {
				t.Errorf("Sign() = %+v, want code %d", res, tt.want)
			}
			if n := len(lib.EmbedCalls()); n != tt.wantEmbed {
				t.Errorf("expected %d embed calls, got %d", tt.wantEmbed, n)
			}
			if tt.want == CodeSuccess && gotDigest != "abc" {
				t.Errorf("CMS signer received digest %q, want %q", gotDigest, "abc")
			}
		})
	}
}

func TestSignPartialOptions(t *testing.T) {
	lib := &nativetest.Signer{PreSignature: testPreSignature}
	cmsSigner, _ := staticCMSSigner(testCMS)
	s := newTestSigner(t, lib, cmsSigner, Options{})

	opts := &SignOptions{DSS: DSSYes, Reason: "Approved"}
	if _, err := s.Sign(context.Background(), SignRequest{InputPath: "in.pdf", OutputPath: "out.pdf", Options: opts}); err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	want := DefaultSignOptions()
	want.DSS = DSSYes
	want.Reason = "Approved"
	if got := lib.DigestRequests()[0]; !reflect.DeepEqual(got, want.digestRequest("in.pdf")) {
		t.Errorf("digest request = %+v, want %+v", got, want.digestRequest("in.pdf"))
	}
	if opts.Page != 0 || opts.Location != "" {
		t.Error("Sign() must not modify the request options")
	}
}

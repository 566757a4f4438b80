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

// Package signer signs PDF documents through the native library. A signing
// attempt computes the digest of the document, has the digest signed by an
// external CMS signer, optionally gathers revocation evidence for long-term
// validation and embeds the result into the signed output.
package signer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/signpdfkit/signpdfkit-go/native"
	"github.com/signpdfkit/signpdfkit-go/revocation"
	"github.com/signpdfkit/signpdfkit-go/revocation/source"
)

// CMSSigner signs a digest produced by the native library and returns the
// base64 encoded CMS signature
type CMSSigner interface {
	SignDigest(ctx context.Context, digest string, options map[string]string) (string, error)
}

// CMSSignerFunc is an adapter to allow the use of ordinary functions as
// CMSSigner
type CMSSignerFunc func(ctx context.Context, digest string, options map[string]string) (string, error)

// SignDigest calls f(ctx, digest, options)
func (f CMSSignerFunc) SignDigest(ctx context.Context, digest string, options map[string]string) (string, error) {
	return f(ctx, digest, options)
}

// Options specifies values that are needed to create a Signer
type Options struct {
	// SignerOptions are passed unchanged to the CMS signer on every signing
	// attempt, e.g. the account and passcode of a signing service
	SignerOptions map[string]string

	// Builder builds the validation bundles. If nil, a Builder is created
	// from BuilderOptions
	Builder *revocation.Builder

	// BuilderOptions is used when Builder is nil
	BuilderOptions revocation.BuilderOptions

	// Logger receives the progress and the failures of signing attempts
	Logger logr.Logger
}

// Signer drives a signing attempt from the input PDF to the signed output
type Signer struct {
	lib       native.Signer
	cmsSigner CMSSigner
	options   map[string]string
	builder   *revocation.Builder
	logger    logr.Logger
}

// New creates a Signer
func New(lib native.Signer, cmsSigner CMSSigner, opts Options) (*Signer, error) {
	if lib == nil {
		return nil, errors.New("invalid input: a non-nil native signer must be specified")
	}
	if cmsSigner == nil {
		return nil, errors.New("invalid input: a non-nil CMS signer must be specified")
	}
	s := &Signer{
		lib:       lib,
		cmsSigner: cmsSigner,
		options:   opts.SignerOptions,
		builder:   opts.Builder,
		logger:    opts.Logger,
	}
	if s.logger.GetSink() == nil {
		s.logger = logr.Discard()
	}
	if s.builder == nil {
		builderOpts := opts.BuilderOptions
		if builderOpts.Logger.GetSink() == nil {
			builderOpts.Logger = s.logger.WithName("revocation")
		}
		s.builder = revocation.NewBuilder(builderOpts)
	}
	return s, nil
}

type state int

const (
	stateValidatingInput state = iota
	stateComputingDigest
	stateAwaitingExternalSignature
	stateBuildingRevocation
	stateEmbedding
	stateDone
)

func (s state) String() string {
	switch s {
	case stateValidatingInput:
		return "ValidatingInput"
	case stateComputingDigest:
		return "ComputingDigest"
	case stateAwaitingExternalSignature:
		return "AwaitingExternalSignature"
	case stateBuildingRevocation:
		return "BuildingRevocation"
	case stateEmbedding:
		return "Embedding"
	case stateDone:
		return "Done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Sign signs the PDF of req and writes the signed document to
// req.OutputPath.
//
// Failures of the native library are reported through the response code of
// the returned Result. An error is returned only if the CMS signer fails, in
// which case no Result is produced. Failures to obtain revocation evidence
// never fail the signing attempt.
func (s *Signer) Sign(ctx context.Context, req SignRequest) (*Result, error) {
	opts := DefaultSignOptions()
	if req.Options != nil {
		opts = req.Options.withDefaults()
	}
	logger := s.logger.WithValues("input", req.InputPath, "output", req.OutputPath)
	failed := func(st state, code Code, reason string, err error) *Result {
		logger.Info("signing failed", "state", st.String(), "code", int(code), "reason", reason, "error", errString(err))
		return NewResult(code)
	}

	logger.V(1).Info("signing", "state", stateValidatingInput.String())
	if !isPDFPath(req.InputPath) || !isPDFPath(req.OutputPath) {
		return failed(stateValidatingInput, CodeInvalidInput, "input and output must be PDF paths", nil), nil
	}

	logger.V(1).Info("signing", "state", stateComputingDigest.String())
	preSignature, err := s.lib.CalculateDigest(ctx, opts.digestRequest(req.InputPath))
	if err != nil {
		return failed(stateComputingDigest, CodeProcessingFailed, "digest calculation failed", err), nil
	}
	if preSignature == "" {
		return failed(stateComputingDigest, CodeProcessingFailed, "digest calculation returned no result", nil), nil
	}
	var preSign PreSignData
	if err := json.Unmarshal([]byte(preSignature), &preSign); err != nil {
		return failed(stateComputingDigest, CodeProcessingFailed, "malformed pre-signature document", err), nil
	}
	if preSign.ResponseCode != int(CodeSuccess) {
		return failed(stateComputingDigest, codeFromNative(preSign.ResponseCode), preSign.Status(), nil), nil
	}
	digest, err := preSign.Digest()
	if err != nil {
		return failed(stateComputingDigest, CodeProcessingFailed, "pre-signature document carries no digest", err), nil
	}
	if info, err := preSign.Info(); err == nil {
		logger.V(1).Info("digest calculated", "digest", digest, "isDSS", info.IsDSS, "objSize", info.ObjSize)
	} else {
		logger.V(1).Info("digest calculated", "digest", digest, "dataError", err.Error())
	}

	logger.V(1).Info("signing", "state", stateAwaitingExternalSignature.String())
	cms, err := s.cmsSigner.SignDigest(ctx, digest, s.options)
	if err != nil {
		return nil, &SigningError{Err: err}
	}
	if cms == "" {
		return nil, &SigningError{Err: errors.New("CMS signer returned an empty signature")}
	}

	var bundle *revocation.Bundle
	if opts.DSS == DSSYes {
		logger.V(1).Info("signing", "state", stateBuildingRevocation.String())
		bundle = s.builder.Build(ctx, cms, s.revocationSources(ctx, logger, cms), true)
	} else {
		bundle = s.builder.Build(ctx, cms, nil, false)
	}
	bundleDoc, err := bundle.Document()
	if err != nil {
		return failed(stateBuildingRevocation, CodeProcessingFailed, "failed to serialize validation bundle", err), nil
	}

	logger.V(1).Info("signing", "state", stateEmbedding.String(), "ocsp", len(bundle.OCSP), "crl", len(bundle.CRL))
	status, err := s.lib.EmbedCMS(ctx, preSignature, bundleDoc, req.OutputPath)
	if err != nil {
		return failed(stateEmbedding, CodeProcessingFailed, "embedding failed", err), nil
	}
	if status != 0 {
		return failed(stateEmbedding, CodeProcessingFailed, fmt.Sprintf("embedding returned status %d", status), nil), nil
	}

	logger.V(1).Info("signing", "state", stateDone.String())
	return NewResult(CodeSuccess), nil
}

// revocationSources returns the revocation sources of cms. A failure to
// obtain or parse the descriptor yields no sources.
func (s *Signer) revocationSources(ctx context.Context, logger logr.Logger, cms string) []source.Source {
	descriptor, err := s.lib.RevocationParameters(ctx, cms)
	if err != nil {
		logger.Info("revocation parameters unavailable", "error", err.Error())
		return nil
	}
	sources, err := source.Parse(descriptor)
	if err != nil {
		logger.Info("ignoring revocation descriptor", "error", err.Error())
		return nil
	}
	return sources
}

func isPDFPath(path string) bool {
	return path != "" && strings.HasSuffix(strings.ToLower(path), ".pdf")
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

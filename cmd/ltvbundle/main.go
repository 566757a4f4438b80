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

// Command ltvbundle builds the long-term validation bundle of a CMS
// signature from its revocation descriptor and prints the bundle document.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/signpdfkit/signpdfkit-go/revocation"
	"github.com/signpdfkit/signpdfkit-go/revocation/crl/cache"
	"github.com/signpdfkit/signpdfkit-go/revocation/source"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type bundleOptions struct {
	descriptorPath string
	cms            string
	cmsPath        string
	outputPath     string
	crlCacheDir    string
	crlCacheMaxAge time.Duration
	timeout        time.Duration
	concurrency    int
	noRevocation   bool
	verbosity      int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var opts bundleOptions
	cmd := &cobra.Command{
		Use:   "ltvbundle --descriptor <file> (--cms <base64> | --cms-file <file>)",
		Short: "Build the long-term validation bundle of a CMS signature",
		Long: `Fetches the OCSP responses and CRLs listed in a revocation descriptor and
prints the validation bundle {"cms", "ocsp", "crl"} consumed by the native
embedder. Unreachable revocation sources are logged and left out.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := initializeLogger(opts.verbosity)
			if err != nil {
				return err
			}
			if opts.outputPath == "" {
				return runBundle(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
			}
			// the output file is only written once the bundle is built
			var doc bytes.Buffer
			if err := runBundle(cmd.Context(), opts, cmd.InOrStdin(), &doc, logger); err != nil {
				return err
			}
			if err := os.WriteFile(opts.outputPath, doc.Bytes(), 0644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.descriptorPath, "descriptor", "d", "", "revocation descriptor file, - for stdin")
	flags.StringVar(&opts.cms, "cms", "", "base64 encoded CMS signature")
	flags.StringVar(&opts.cmsPath, "cms-file", "", "file holding the base64 encoded CMS signature")
	flags.StringVarP(&opts.outputPath, "output", "o", "", "write the bundle document to a file instead of stdout")
	flags.StringVar(&opts.crlCacheDir, "crl-cache-dir", "", "directory caching downloaded CRLs")
	flags.DurationVar(&opts.crlCacheMaxAge, "crl-cache-max-age", cache.DefaultMaxAge, "maximum age of cached CRLs")
	flags.DurationVar(&opts.timeout, "timeout", revocation.DefaultFetchTimeout, "timeout of a single OCSP or CRL fetch")
	flags.IntVar(&opts.concurrency, "concurrency", revocation.DefaultMaxConcurrency, "maximum number of fetches in flight")
	flags.BoolVar(&opts.noRevocation, "no-revocation", false, "skip fetching, emit the CMS with empty evidence lists")
	flags.IntVarP(&opts.verbosity, "verbosity", "v", 0, "log verbosity (0-2)")
	cmd.MarkFlagsMutuallyExclusive("cms", "cms-file")
	cmd.MarkFlagsOneRequired("cms", "cms-file")
	return cmd
}

func runBundle(ctx context.Context, opts bundleOptions, stdin io.Reader, out io.Writer, logger logr.Logger) error {
	cms, err := readCMS(opts)
	if err != nil {
		return err
	}

	var sources []source.Source
	if !opts.noRevocation {
		descriptor, err := readDescriptor(opts.descriptorPath, stdin)
		if err != nil {
			return err
		}
		sources, err = source.Parse(descriptor)
		if err != nil {
			return err
		}
		logger.V(1).Info("parsed revocation descriptor", "sources", len(sources))
	}

	builderOpts := revocation.BuilderOptions{
		FetchTimeout:   opts.timeout,
		MaxConcurrency: opts.concurrency,
		Logger:         logger.WithName("revocation"),
	}
	if opts.crlCacheDir != "" {
		fileCache, err := cache.NewFileCache(opts.crlCacheDir)
		if err != nil {
			return err
		}
		fileCache.MaxAge = opts.crlCacheMaxAge
		builderOpts.CRLCache = fileCache
	}

	bundle := revocation.NewBuilder(builderOpts).Build(ctx, cms, sources, !opts.noRevocation)
	doc, err := bundle.Document()
	if err != nil {
		return err
	}
	logger.Info("validation bundle built", "sources", len(sources), "ocsp", len(bundle.OCSP), "crl", len(bundle.CRL))
	_, err = fmt.Fprintln(out, doc)
	return err
}

func readCMS(opts bundleOptions) (string, error) {
	cms := opts.cms
	if opts.cmsPath != "" {
		data, err := os.ReadFile(opts.cmsPath)
		if err != nil {
			return "", fmt.Errorf("failed to read CMS: %w", err)
		}
		cms = string(data)
	}
	cms = strings.TrimSpace(cms)
	if cms == "" {
		return "", fmt.Errorf("empty CMS signature")
	}
	return cms, nil
}

func readDescriptor(path string, stdin io.Reader) (string, error) {
	switch path {
	case "":
		return "", fmt.Errorf("a revocation descriptor is required unless --no-revocation is set")
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read descriptor from stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read descriptor: %w", err)
		}
		return string(data), nil
	}
}

func initializeLogger(verbosity int) (logr.Logger, error) {
	if verbosity < 0 {
		verbosity = 0
	}
	zapConfig := zap.NewProductionConfig()
	if verbosity > 1 {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.Encoding = "console"
	zapConfig.OutputPaths = []string{"stderr"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}
	// logr V(n) maps to zap level -n
	zapConfig.Level = zap.NewAtomicLevelAt(zapcore.Level(-verbosity))

	zapLogger, err := zapConfig.Build()
	if err != nil {
		return logr.Logger{}, fmt.Errorf("failed to build zap logger: %w", err)
	}
	return zapr.NewLogger(zapLogger), nil
}

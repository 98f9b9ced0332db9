// Command embed requests one text embedding from the configured provider and prints the vector.
//
// Usage:
//
//	embed [flags] [text ...]
//
// The credential is read from EMBEDDING_PROVIDER_API_KEY (or GEMINI_API_KEY) in the
// environment or a .env file. The vector is written to stdout; logs go to stderr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/formbricks/embedder/internal/config"
	"github.com/formbricks/embedder/internal/embeddings"
	"github.com/formbricks/embedder/internal/observability"
	"github.com/formbricks/embedder/internal/render"
	"github.com/formbricks/embedder/internal/service"
)

const defaultText = "What is the meaning of life?"

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const shutdownTimeout = 5 * time.Second

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	text      string
	format    string
	overrides config.Overrides
}

// parseFlags returns the options for args. ok is false when the process should exit with code.
func parseFlags(args []string, stderr io.Writer) (opts options, code int, ok bool) {
	fs := flag.NewFlagSet("embed", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: embed [flags] [text ...]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	text := fs.String("text", "", "text to embed (default: positional arguments, or \""+defaultText+"\")")
	model := fs.String("model", "", "embedding model (default: EMBEDDING_MODEL or the provider default)")
	provider := fs.String("provider", "", "embedding provider: google, openai or mock (default: EMBEDDING_PROVIDER or google)")
	dimensions := fs.Int("dimensions", 0, "requested output dimensionality, 0 for the model default")
	normalize := fs.Bool("normalize", false, "scale the vector to unit length")
	format := fs.String("format", render.FormatText, "output format: text or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, exitOK, false
		}

		return opts, exitUsage, false
	}

	if !render.IsSupportedFormat(*format) {
		fmt.Fprintf(stderr, "unsupported -format %q (want text or json)\n", *format)

		return opts, exitUsage, false
	}

	opts.format = *format
	opts.overrides.Provider = *provider
	opts.overrides.Model = *model

	textSet := false

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "text":
			textSet = true
		case "dimensions":
			opts.overrides.Dimensions = dimensions
		case "normalize":
			opts.overrides.Normalize = normalize
		}
	})

	switch {
	case textSet:
		opts.text = *text
	case fs.NArg() > 0:
		opts.text = strings.Join(fs.Args(), " ")
	default:
		opts.text = defaultText
	}

	return opts, exitOK, true
}

// run executes one embedding request and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, code, ok := parseFlags(args, stderr)
	if !ok {
		return code
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Logs go to stderr before and after config is known, so stdout carries only the vector.
	observability.SetupLogging("info", stderr)

	cfg, err := config.LoadWithOverrides(opts.overrides)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)

		return exitError
	}

	observability.SetupLogging(cfg.LogLevel, stderr)

	tracerProvider, err := observability.NewTracerProvider(ctx, cfg, "embed", stderr)
	if err != nil {
		slog.Error("Failed to set up tracing", "error", err)

		return exitError
	}

	if tracerProvider != nil {
		otel.SetTracerProvider(tracerProvider)

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()

			if err := observability.ShutdownTracerProvider(shutdownCtx, tracerProvider); err != nil {
				slog.Error("shutdown tracer provider", "error", err)
			}
		}()
	}

	client, err := embeddings.NewClient(ctx, cfg)
	if err != nil {
		slog.Error("Failed to create embedding client", "provider", cfg.EmbeddingProvider, "error", err)

		return exitError
	}

	svc := service.NewEmbeddingService(client, service.WithNormalize(cfg.EmbeddingNormalize))

	slog.Debug("requesting embedding", "provider", svc.Provider(), "model", svc.Model())

	embedding, err := svc.Embed(ctx, opts.text)
	if err != nil {
		slog.Error("Embedding request failed",
			"provider", svc.Provider(),
			"model", svc.Model(),
			"reason", service.ErrorReason(err),
			"error", err,
		)

		return exitError
	}

	if err := render.Write(stdout, opts.format, embedding); err != nil {
		slog.Error("Failed to write embedding", "error", err)

		return exitError
	}

	return exitOK
}

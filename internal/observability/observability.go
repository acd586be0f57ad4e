// Package observability configures the process-wide slog logger.
//
// The text and json formats write directly to the given writer. The otel format
// routes records through the OpenTelemetry log SDK: to an OTLP collector when
// OTEL_EXPORTER_OTLP_ENDPOINT (or the logs specific variant) is set, otherwise as
// JSON to the writer.
package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/processors/minsev"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
)

// ServiceName identifies log records emitted through OpenTelemetry.
const ServiceName = "smcli"

// ShutdownFunc flushes and releases logging resources.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Instrument installs the default slog logger for the given level and format
// (text|json|otel). The returned ShutdownFunc must be called before exit.
func Instrument(ctx context.Context, w io.Writer, level slog.Level, format string) (ShutdownFunc, error) {
	opts := &slog.HandlerOptions{Level: level}

	switch format {
	case "", "text":
		slog.SetDefault(slog.New(slog.NewTextHandler(w, opts)))
		return noopShutdown, nil
	case "json":
		slog.SetDefault(slog.New(slog.NewJSONHandler(w, opts)))
		return noopShutdown, nil
	case "otel":
		return instrumentOTel(ctx, w, level)
	default:
		return nil, fmt.Errorf("unsupported log format %q", format)
	}
}

func instrumentOTel(ctx context.Context, w io.Writer, level slog.Level) (ShutdownFunc, error) {
	proc, err := newProcessor(ctx, w)
	if err != nil {
		return nil, err
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithResource(resource.NewSchemaless(attribute.String("service.name", ServiceName))),
		sdklog.WithProcessor(minsev.NewLogProcessor(proc, severity(level))),
	)
	global.SetLoggerProvider(provider)

	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		fmt.Fprintf(w, "otel: %v\n", err)
	}))

	slog.SetDefault(slog.New(otelslog.NewHandler(ServiceName, otelslog.WithLoggerProvider(provider))))

	return func(ctx context.Context) error {
		return errors.Join(provider.ForceFlush(ctx), provider.Shutdown(ctx))
	}, nil
}

// newProcessor exports to OTLP when an endpoint is configured and to w otherwise.
func newProcessor(ctx context.Context, w io.Writer) (sdklog.Processor, error) {
	if endpointConfigured() {
		var (
			exp sdklog.Exporter
			err error
		)
		if protocol() == "grpc" {
			exp, err = otlploggrpc.New(ctx)
		} else {
			exp, err = otlploghttp.New(ctx)
		}
		if err != nil {
			return nil, fmt.Errorf("creating otlp log exporter: %w", err)
		}
		return sdklog.NewBatchProcessor(exp), nil
	}

	exp, err := stdoutlog.New(stdoutlog.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("creating stdout log exporter: %w", err)
	}
	return sdklog.NewSimpleProcessor(exp), nil
}

func endpointConfigured() bool {
	return os.Getenv("OTEL_EXPORTER_OTLP_LOGS_ENDPOINT") != "" ||
		os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != ""
}

func protocol() string {
	if p := os.Getenv("OTEL_EXPORTER_OTLP_LOGS_PROTOCOL"); p != "" {
		return p
	}
	return os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL")
}

// severity maps a slog level onto the closest OpenTelemetry severity.
func severity(level slog.Level) minsev.Severity {
	switch {
	case level <= slog.LevelDebug:
		return minsev.SeverityDebug
	case level <= slog.LevelInfo:
		return minsev.SeverityInfo
	case level <= slog.LevelWarn:
		return minsev.SeverityWarn
	default:
		return minsev.SeverityError
	}
}

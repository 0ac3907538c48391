// Package logging builds the process slog handler: JSON records written by a
// zap core to stderr and, when a log directory is configured, to a rotating
// file, with the active trace and span ids attached.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// FileName is the log file created inside the log directory
	FileName = "usersync.log"

	// MaxBackups is the number of rotated files kept
	MaxBackups = 30

	// MaxAgeDays is the age after which rotated files are removed
	MaxAgeDays = 30

	// MaxSizeMB is the size that triggers a rotation
	MaxSizeMB = 100
)

type options struct {
	debug  bool
	dir    string
	writer io.Writer
}

// Option configures New
type Option func(*options)

// WithDebug enables debug records
func WithDebug(debug bool) Option {
	return func(o *options) {
		o.debug = debug
	}
}

// WithDir also writes records to a rotating file in dir
func WithDir(dir string) Option {
	return func(o *options) {
		o.dir = dir
	}
}

// WithWriter replaces stderr as the console output
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		o.writer = w
	}
}

// New returns a slog handler and a function flushing and closing its outputs
func New(opts ...Option) (slog.Handler, func() error, error) {
	o := &options{writer: os.Stderr}
	for _, opt := range opts {
		opt(o)
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if o.debug {
		// slog debug maps to zap level -4 through zapr
		level.SetLevel(zapcore.Level(slog.LevelDebug))
	}

	encoder := zapcore.NewJSONEncoder(encoderConfig())
	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(o.writer)), level),
	}

	var rotator *lumberjack.Logger
	if o.dir != "" {
		if err := os.MkdirAll(o.dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		rotator = &lumberjack.Logger{
			Filename:   filepath.Join(o.dir, FileName),
			MaxSize:    MaxSizeMB,
			MaxBackups: MaxBackups,
			MaxAge:     MaxAgeDays,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotator), level))
	}

	zapLogger := zap.New(zapcore.NewTee(cores...))
	handler := &traceHandler{Handler: logr.ToSlogHandler(zapr.NewLogger(zapLogger))}

	closeFn := func() error {
		// stderr returns EINVAL on Sync on some platforms
		_ = zapLogger.Sync()
		if rotator != nil {
			return rotator.Close()
		}
		return nil
	}
	return handler, closeFn, nil
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.MessageKey = "msg"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = encodeLevel
	return cfg
}

// encodeLevel names the verbosity levels below debug that zapr produces
func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l < zapcore.DebugLevel {
		l = zapcore.DebugLevel
	}
	enc.AppendString(l.String())
}

// traceHandler wraps an slog.Handler to automatically inject OpenTelemetry
// trace_id and span_id into every log record, enabling log-trace correlation.
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		r.AddAttrs(
			slog.String("trace_id", span.SpanContext().TraceID().String()),
			slog.String("span_id", span.SpanContext().SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

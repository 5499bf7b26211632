// Package logging adapts charmbracelet/log for the model pipeline's phase
// tracing: parse, transform, and validate boundaries logged at debug level,
// validation failures at warn level.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	cblog "github.com/charmbracelet/log"
)

// Logger is the structured logging capability the Facade depends on.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...interface{})
	Info(ctx context.Context, msg string, fields ...interface{})
	Warn(ctx context.Context, msg string, fields ...interface{})
	With(fields ...interface{}) Logger
}

// Options configures the charmbracelet/log adapter.
type Options struct {
	Writer     io.Writer
	Level      string
	Formatter  cblog.Formatter
	Component  string
	TimeFormat string
}

type adapter struct {
	logger *cblog.Logger
	fields []interface{}
}

// New creates a Logger adapter with the supplied options.
func New(opts Options) (Logger, error) {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stdout
	}

	level := cblog.InfoLevel
	if opts.Level != "" {
		parsed, err := cblog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}

	base := cblog.NewWithOptions(writer, cblog.Options{
		Level:           level,
		TimeFormat:      opts.TimeFormat,
		ReportTimestamp: true,
		Formatter:       opts.Formatter,
	})

	var fields []interface{}
	if opts.Component != "" {
		fields = []interface{}{"component", opts.Component}
	}

	return &adapter{logger: base, fields: fields}, nil
}

// NoOp returns a Logger that discards every entry.
func NoOp() Logger {
	return &adapter{}
}

func (a *adapter) Debug(ctx context.Context, msg string, fields ...interface{}) {
	a.log(cblog.DebugLevel, msg, fields...)
}

func (a *adapter) Info(ctx context.Context, msg string, fields ...interface{}) {
	a.log(cblog.InfoLevel, msg, fields...)
}

func (a *adapter) Warn(ctx context.Context, msg string, fields ...interface{}) {
	a.log(cblog.WarnLevel, msg, fields...)
}

func (a *adapter) With(fields ...interface{}) Logger {
	if a.logger == nil {
		return a
	}
	next := make([]interface{}, 0, len(a.fields)+len(fields))
	next = append(next, a.fields...)
	next = append(next, fields...)
	return &adapter{logger: a.logger, fields: next}
}

func (a *adapter) log(level cblog.Level, msg string, fields ...interface{}) {
	if a == nil || a.logger == nil {
		return
	}
	payload := mergeFields(a.fields, fields)
	switch level {
	case cblog.DebugLevel:
		a.logger.Debug(msg, payload...)
	case cblog.WarnLevel:
		a.logger.Warn(msg, payload...)
	default:
		a.logger.Info(msg, payload...)
	}
}

func mergeFields(base, additions []interface{}) []interface{} {
	store := make(map[string]interface{})
	order := make([]string, 0, len(base)+len(additions))

	add := func(values []interface{}) {
		for i := 0; i+1 < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok {
				continue
			}
			if _, exists := store[key]; !exists {
				order = append(order, key)
			}
			store[key] = values[i+1]
		}
	}
	add(base)
	add(additions)
	sort.Strings(order)

	out := make([]interface{}, 0, len(order)*2)
	for _, key := range order {
		out = append(out, key, store[key])
	}
	return out
}

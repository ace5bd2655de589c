package logger

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Entry carries metric fields (duration_ms, status, size) for one log line.
// The logger is resolved from the context at write time, so tracing fields come along.
//
//	logger.With(logger.Fields{logger.FieldStatus: "done"}).WithDuration(d).Info(ctx, "Job finished")
type Entry struct {
	fields Fields
}

// With starts an Entry with a copy of fields.
func With(fields Fields) *Entry {
	copied := make(Fields, len(fields)+1)
	for k, v := range fields {
		copied[k] = v
	}
	return &Entry{fields: copied}
}

// WithField returns a new Entry with one more field.
func (e *Entry) WithField(key string, value interface{}) *Entry {
	next := With(e.fields)
	next.fields[key] = value
	return next
}

// WithDuration records d as whole milliseconds.
func (e *Entry) WithDuration(d time.Duration) *Entry {
	return e.WithField(FieldDurationMs, d.Milliseconds())
}

func (e *Entry) Debug(ctx context.Context, format string, args ...interface{}) {
	e.log(ctx, logrus.DebugLevel, format, args...)
}

func (e *Entry) Info(ctx context.Context, format string, args ...interface{}) {
	e.log(ctx, logrus.InfoLevel, format, args...)
}

func (e *Entry) Warn(ctx context.Context, format string, args ...interface{}) {
	e.log(ctx, logrus.WarnLevel, format, args...)
}

func (e *Entry) Error(ctx context.Context, format string, args ...interface{}) {
	e.log(ctx, logrus.ErrorLevel, format, args...)
}

func (e *Entry) log(ctx context.Context, level logrus.Level, format string, args ...interface{}) {
	FromContext(ctx).Entry.WithFields(logrus.Fields(e.fields)).Logf(level, format, args...)
}

package logger

import (
	"context"
	"sync/atomic"
)

type ctxKey struct{}

// fallback is the logger used when a context carries none.
var fallback atomic.Pointer[Logger]

func init() {
	fallback.Store(New(nil))
}

// GetDefault returns the process-wide fallback logger.
func GetDefault() *Logger {
	return fallback.Load()
}

// SetDefaultLogger replaces the process-wide fallback logger. nil is ignored.
func SetDefaultLogger(l *Logger) {
	if l != nil {
		fallback.Store(l)
	}
}

// WithContext returns a copy of ctx that carries l.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger carried by ctx, or the fallback logger.
// Parameters:
//   - ctx: context to inspect, may be nil.
//
// Returns:
//   - *Logger: never nil.
func FromContext(ctx context.Context) *Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*Logger); ok && l != nil {
			return l
		}
	}
	return GetDefault()
}

// WithField returns a context whose logger carries one more field.
func WithField(ctx context.Context, key string, value interface{}) context.Context {
	return FromContext(ctx).WithField(key, value).WithContext(ctx)
}

// WithFields returns a context whose logger carries additional fields.
func WithFields(ctx context.Context, fields Fields) context.Context {
	return FromContext(ctx).WithFields(fields).WithContext(ctx)
}

// ForJob scopes the context logger to one job. Every line logged through the
// returned context carries the job and row ids.
func ForJob(ctx context.Context, jobID, rowID string) context.Context {
	return WithFields(ctx, Fields{
		FieldJobID:     jobID,
		FieldRowID:     rowID,
		FieldComponent: "orchestrator",
	})
}

// SetStep tags the context logger with the orchestration step (image, site, callback).
func SetStep(ctx context.Context, step string) context.Context {
	return WithField(ctx, FieldStep, step)
}

// GetJobID returns the job id the context logger is scoped to, or "".
func GetJobID(ctx context.Context) string {
	id, _ := FromContext(ctx).Data[FieldJobID].(string)
	return id
}

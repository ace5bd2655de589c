package logger

// Fields is a set of structured log fields.
type Fields map[string]interface{}

// Correlation keys, carried on the context logger for the life of a request or job.
// FieldRowID is the caller-supplied correlation token, FieldChatID the site generator
// conversation and FieldStep one of image, site or callback.
const (
	FieldRequestID = "request_id"
	FieldJobID     = "job_id"
	FieldRowID     = "row_id"
	FieldChatID    = "chat_id"
	FieldStep      = "step"
	FieldComponent = "component"
)

// Per-entry measurement keys. FieldSize is in bytes; FieldStatus holds a job status or an HTTP code.
const (
	FieldDurationMs = "duration_ms"
	FieldSize       = "size"
	FieldStatus     = "status"
)

package interfaces

import "context"

// Logger is the leveled logger every package logs through. Arguments after
// the message are key/value pairs. The method set matches go-logger's glog
// so its loggers fit with a thin adapter.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider returns the logger for a module name such as
// "partials.includes".
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is implemented by loggers that can bind fields to every
// subsequent entry.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}

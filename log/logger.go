package log

import "context"

// Logger is the structured logging interface injected at process start.
// Repositories and middleware use the package-level zerolog logger
// directly; the interface exists so top-level wiring and long-lived
// services can carry a logger with bound fields.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...map[string]interface{})
	Info(ctx context.Context, msg string, fields ...map[string]interface{})
	Warn(ctx context.Context, msg string, fields ...map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	Fatal(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	With(fields map[string]interface{}) Logger
}

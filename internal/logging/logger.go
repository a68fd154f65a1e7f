// Package logging defines the small structured-logging interface shared by
// every layer of the service. Implementations can sit on top of slog, zap,
// or anything else that accepts key-value pairs.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// Variadic args are key-value pairs:
//
//	log.Info(ctx, "flush finished", "profile_id", id, "sections", n)
type Logger interface {
	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always carries the given key-value pairs.
	With(args ...any) Logger
}

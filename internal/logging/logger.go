// Package logging is the structured logger shared by the CLI and the dev
// server. Both log through log/slog: text on the CLI's stderr, JSON on the
// server's stdout.
package logging

import "context"

// Logger takes a message plus alternating key/value pairs:
//
//	logger.Debug(ctx, "api request", "method", "GET", "path", "/auth/me")
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that adds args to every record, e.g. "module".
	With(args ...any) Logger
}

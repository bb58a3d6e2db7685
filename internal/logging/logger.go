// Package logging holds the structured logger shared by the server, the
// data facade and the CLI.
package logging

import "context"

// Logger takes a message followed by alternating keys and values:
//
//	log.Info(ctx, "entry created", "user_id", userID, "date", date)
//
// Components derive their own logger with With("module", name).
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) Logger
}

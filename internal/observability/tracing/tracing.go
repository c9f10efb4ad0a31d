package tracing

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// InjectTraceID attaches a logger carrying a fresh trace id to ctx. Commands
// get one at startup; ledger transactions log under the id of the request or
// command that issued them.
func InjectTraceID(ctx context.Context) context.Context {
	id := uuid.New().String()
	logger := log.With().Str("traceId", id).Logger()
	return logger.WithContext(ctx)
}

// TraceID returns a trace id already attached upstream, or a new one.
func TraceID(header string) string {
	if _, err := uuid.Parse(header); err == nil {
		return header
	}
	return uuid.New().String()
}

// WithTraceID attaches a logger carrying id to ctx.
func WithTraceID(ctx context.Context, id string) context.Context {
	logger := log.With().Str("traceId", id).Logger()
	return logger.WithContext(ctx)
}

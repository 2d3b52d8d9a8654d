package tracing

import (
	"context"
	"fmt"

	"github.com/bwise1/eventbuzz/util/values"
	"github.com/rs/zerolog"
)

// Context identifies a single inbound request across log lines.
type Context struct {
	RequestID     string
	RequestSource string
	Logger        zerolog.Logger
}

func (c Context) String() string {
	return fmt.Sprintf("request_id=%s source=%s", c.RequestID, c.RequestSource)
}

// FromContext returns the tracing context stored by the RequestTracing
// middleware, or a zero Context with a no-op logger.
func FromContext(ctx context.Context) Context {
	if tc, ok := ctx.Value(values.ContextTracingKey).(Context); ok {
		return tc
	}
	return Context{Logger: zerolog.Nop()}
}

package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

const (
	attrTraceID  = "trace_id"
	attrSpanID   = "span_id"
	attrService  = "service"
	attrEnv      = "env"
	attrMode     = "mode"
	attrTemplate = "template"
	attrOwner    = "owner"
)

type templateScopeKey struct{}

// templateScope names the template a log record was emitted for.
type templateScope struct {
	path  string
	owner string
}

// WithTemplate returns a context whose log records carry the template path
// and, when it differs, the component file that declares it.
func WithTemplate(ctx context.Context, path, owner string) context.Context {
	return context.WithValue(ctx, templateScopeKey{}, templateScope{path: path, owner: owner})
}

// TracingHandler is an [slog.Handler] that stamps every record with the
// active span ids and the template scope from the context. The run
// attributes (service, env, mode) are attached up front so groups never
// nest them.
type TracingHandler struct {
	inner slog.Handler
}

// NewTracingHandler wraps inner. Empty env and mode are omitted.
func NewTracingHandler(inner slog.Handler, service, env string, mode AppMode) *TracingHandler {
	attrs := []slog.Attr{slog.String(attrService, service)}

	if mode != "" {
		attrs = append(attrs, slog.String(attrMode, string(mode)))
	}

	if env != "" {
		attrs = append(attrs, slog.String(attrEnv, env))
	}

	return &TracingHandler{inner: inner.WithAttrs(attrs)}
}

// Enabled delegates to the inner handler.
func (th *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return th.inner.Enabled(ctx, level)
}

// Handle adds the context attributes and delegates.
func (th *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	record.AddAttrs(contextAttrs(ctx)...)

	if err := th.inner.Handle(ctx, record); err != nil {
		return fmt.Errorf("tracing handler: %w", err)
	}

	return nil
}

// WithAttrs implements [slog.Handler].
func (th *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TracingHandler{inner: th.inner.WithAttrs(attrs)}
}

// WithGroup implements [slog.Handler].
func (th *TracingHandler) WithGroup(name string) slog.Handler {
	return &TracingHandler{inner: th.inner.WithGroup(name)}
}

func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr

	if scope, ok := ctx.Value(templateScopeKey{}).(templateScope); ok {
		attrs = append(attrs, slog.String(attrTemplate, scope.path))

		if scope.owner != "" && scope.owner != scope.path {
			attrs = append(attrs, slog.String(attrOwner, scope.owner))
		}
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		attrs = append(attrs,
			slog.String(attrTraceID, sc.TraceID().String()),
			slog.String(attrSpanID, sc.SpanID().String()),
		)
	}

	return attrs
}

// internal/logging/context.go
package logging

import (
	"context"

	"github.com/juancollazo-ch/crm-scheduled-jobs/internal/contextkeys"
	"go.uber.org/zap"
)

// GetLoggingFieldsFromContext extrae los campos de logging (trace_id, job, run_id)
// del contexto y los devuelve como un slice de zap.Field.
func GetLoggingFieldsFromContext(ctx context.Context) []zap.Field {
	fields := []zap.Field{}
	if tid, ok := ctx.Value(contextkeys.TraceIDKey).(string); ok && tid != "" {
		fields = append(fields, zap.String("trace_id", tid))
	}
	if job, ok := ctx.Value(contextkeys.JobKey).(string); ok && job != "" {
		fields = append(fields, zap.String("job", job))
	}
	if rid, ok := ctx.Value(contextkeys.RunIDKey).(string); ok && rid != "" {
		fields = append(fields, zap.String("run_id", rid))
	}
	return fields
}

// WithJobFields añade job y run_id al contexto si están presentes.
func WithJobFields(ctx context.Context, job, runID string) context.Context {
	if job != "" {
		ctx = context.WithValue(ctx, contextkeys.JobKey, job)
	}
	if runID != "" {
		ctx = context.WithValue(ctx, contextkeys.RunIDKey, runID)
	}
	return ctx
}

// WithTraceID guarda el trace id de la request entrante.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		return ctx
	}
	return context.WithValue(ctx, contextkeys.TraceIDKey, traceID)
}

// FromContext devuelve logger con los campos del contexto ya agregados.
func FromContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if logger == nil {
		logger = zap.L()
	}
	return logger.With(GetLoggingFieldsFromContext(ctx)...)
}

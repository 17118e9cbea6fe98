package httpapi

import (
	"context"
)

func (s *Server) logOperation(ctx context.Context, operation string, statusCode int, fields ...any) {
	outcome := "success"
	if statusCode >= 400 {
		outcome = "failure"
	}
	fields = append([]any{
		"operation", operation,
		"outcome", outcome,
		"status_code", statusCode,
		"request_id", requestIDFromContext(ctx),
	}, fields...)

	switch {
	case statusCode >= 500:
		s.logger.ErrorContext(ctx, "unlock attempt", fields...)
	case statusCode >= 400:
		s.logger.WarnContext(ctx, "unlock attempt", fields...)
	default:
		s.logger.InfoContext(ctx, "unlock attempt", fields...)
	}
}

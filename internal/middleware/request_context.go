package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/DriveLinkHQ/dl-backend/internal/auth"
	"github.com/DriveLinkHQ/dl-backend/internal/logging"
	"github.com/google/uuid"
)

type contextKey string

const (
	requestIDKey contextKey = "requestID"
	loggerKey    contextKey = "logger"
)

// RequestContext attaches a request id, the caller's user id, and a
// request-scoped logger to the context.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		requestID := uuid.New().String()
		ctx = context.WithValue(ctx, requestIDKey, requestID)

		userID := ""
		if id, ok := auth.GetUserID(ctx); ok {
			userID = id.String()
		}

		logger := logging.With(
			"request_id", requestID,
			"user_id", userID,
			"client_ip", getClientIP(r),
		)
		ctx = context.WithValue(ctx, loggerKey, logger)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetLoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

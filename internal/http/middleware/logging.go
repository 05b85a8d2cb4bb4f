package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gaiheki-navi/broker-api/internal/auth"
)

// Logging logs one line per request, tagged with a generated request ID.
// The ID is echoed back in the X-Request-ID response header so clients
// can quote it when reporting problems.
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := uuid.New().String()

			r.Header.Set("X-Request-ID", requestID)
			w.Header().Set("X-Request-ID", requestID)

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			fields := []zap.Field{
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Int("status_code", ww.Status()),
				zap.Int("response_size", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			}
			if actor, ok := auth.FromContext(r.Context()); ok {
				fields = append(fields,
					zap.Int("account_id", actor.AccountID),
					zap.String("role", string(actor.Role)),
				)
			}

			logger.Info("request", fields...)
		})
	}
}

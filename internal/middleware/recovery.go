package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// PanicHandler writes the response after a recovered panic
type PanicHandler func(w http.ResponseWriter, r *http.Request, v any)

// Recovery creates panic recovery middleware with a pluggable response writer
func Recovery(logger *slog.Logger, onPanic PanicHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					logger.Error("panic recovered",
						slog.Any("panic", v),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)
					onPanic(w, r, v)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// requestIDHeader carries the correlation ID callers and fronting proxies
// use to stitch a request across log streams.
const requestIDHeader = "X-Request-ID"

const maxRequestIDLength = 128

type ctxKeyRequestID struct{}

// RequestID tags every request with a correlation ID. An inbound header is
// honored when it is safe to log; anything else is replaced with a fresh
// UUID so a caller cannot forge log lines through the header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if !validRequestID(id) {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), ctxKeyRequestID{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validRequestID accepts short identifiers made of the characters UUIDs and
// common tracing formats use. Everything else, including whitespace and
// control characters, is rejected.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}

// RequestIDFromContext returns the correlation ID, or "" outside a request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID{}).(string)
	return id
}

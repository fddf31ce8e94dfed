// Package requesttime provides middleware for request-scoped time and request ids.
// All operations within a single HTTP request use the same "now" timestamp, so
// every record touched by one batch carries the same modification time.
package requesttime

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"cis/pkg/requestcontext"
)

// RequestIDHeader is echoed back on every response.
const RequestIDHeader = "X-Request-ID"

// Middleware captures the current time at the start of the request and a
// request id (taken from the incoming header or generated), storing both in the
// context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		ctx := requestcontext.WithTime(r.Context(), time.Now())
		ctx = requestcontext.WithRequestID(ctx, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

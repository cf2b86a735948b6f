package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation ID between client and server.
const RequestIDHeader = "X-Request-ID"

// Inbound IDs longer than this are discarded and replaced. Some SoundTouch
// app builds echo whole URLs into the header.
const maxRequestIDLen = 64

type requestIDCtxKey int

const requestIDKey requestIDCtxKey = 0

// RequestIDMiddleware tags every request with a correlation ID: the
// client's, when it sent a reasonable one, or a fresh UUID. The ID is echoed
// on the response and stashed in the request context.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, requestID)
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFrom returns the correlation ID stored by RequestIDMiddleware,
// or "" when the middleware never ran.
func RequestIDFrom(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDKey).(string)
	return requestID
}

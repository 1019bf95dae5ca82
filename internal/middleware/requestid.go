package middleware

import (
	"context"
	"net/http"

	"github.com/rs/xid"
)

// RequestIDHeader is read from incoming requests and set on every response.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLen bounds a client-supplied id before it lands in the logs.
const maxRequestIDLen = 64

type ctxKey struct{}

// RequestID tags each request with an id. A client-supplied X-Request-ID is
// kept (so ids survive a proxy hop); otherwise a new xid is generated. The id
// is echoed in the response header and stored in the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = xid.New().String()
		}

		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), ctxKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the id RequestID stored in ctx, or "".
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

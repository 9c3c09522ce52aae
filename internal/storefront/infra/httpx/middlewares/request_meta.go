package middlewares

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/cozy-cafe/internal/pkg/constants"
)

// AttachRequestMetadata echoes the chi request id back to the client and stores the
// X-Idempotency-Key header in the request context.
func AttachRequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestID := middleware.GetReqID(r.Context()); requestID != "" {
			w.Header().Set(constants.HeaderXRequestId, requestID)
		}

		ctx := r.Context()
		if key := r.Header.Get(constants.HeaderXIdempotencyKey); key != "" {
			ctx = context.WithValue(ctx, constants.ContextKeyIdempotencyKey, key)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdempotencyKey returns the key stored by AttachRequestMetadata, or "".
func IdempotencyKey(ctx context.Context) string {
	key, _ := ctx.Value(constants.ContextKeyIdempotencyKey).(string)
	return key
}

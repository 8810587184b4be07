package middleware

import (
	"net/http"
	"strings"

	"storefront-backend/pkg/logger"
)

const guestSessionHeader = "X-Guest-Session"

// GuestSession reads the guest cart session header into the request context.
// Anonymous shoppers carry this identifier instead of credentials.
func GuestSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(guestSessionHeader))
			if sessionID == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithGuestSession(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithGuestSession(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

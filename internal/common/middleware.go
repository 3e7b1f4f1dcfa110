package common

import (
	"net/http"
	"strings"
)

// AuthMiddleware enforces a Bearer session token and injects the resolved
// Actor into the request context. Handlers pull it back out with
// ActorFromContext and pass it explicitly into the services.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			WriteErrorStatus(w, http.StatusUnauthorized, "authorization required")
			return
		}

		// header = Bearer <token>
		parts := strings.Fields(header)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			WriteErrorStatus(w, http.StatusUnauthorized, "invalid auth header")
			return
		}

		claims, err := ValidToken(parts[1])
		if err != nil {
			WriteErrorStatus(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := WithActor(r.Context(), Actor{UserID: claims.UserID, Admin: claims.Admin})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireActor is the handler-side companion of AuthMiddleware.
func RequireActor(w http.ResponseWriter, r *http.Request) (Actor, bool) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		WriteErrorStatus(w, http.StatusUnauthorized, "user not authenticated")
	}
	return actor, ok
}

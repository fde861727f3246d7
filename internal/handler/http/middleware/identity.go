package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/peoplecore/hrops-backend-go/internal/domain/user"
	"github.com/peoplecore/hrops-backend-go/internal/handler/http/response"
)

type identityKey struct{}

// Identity resolves the caller once per request from the verified JWT
// claims and stores it in the context. Handlers read it back and pass it
// explicitly into service calls; no service reaches into ambient session
// state.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, "Unauthorized")
			return
		}

		username, ok := claims["username"].(string)
		if !ok || username == "" {
			response.Unauthorized(w, "Invalid access token")
			return
		}

		roleStr, _ := claims["role"].(string)
		role, ok := user.ParseRole(roleStr)
		if !ok {
			response.Unauthorized(w, "Invalid access token")
			return
		}

		identity := user.Identity{Username: username, Role: role}
		ctx := context.WithValue(r.Context(), identityKey{}, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext returns the caller stored by the Identity middleware.
func IdentityFromContext(ctx context.Context) (user.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(user.Identity)
	return identity, ok
}

// WithIdentity injects a caller identity into ctx; handler tests use it to
// bypass the JWT middleware.
func WithIdentity(ctx context.Context, identity user.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

package middleware

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/shift-reconcile/internal/handler/http/response"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/jwt"
)

// AuthRequired runs after jwtauth.Verifier and rejects requests without a
// valid access token. The token subject is added to the request log.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, jwt.ErrInvalidToken)
				return
			}

			tokenType, ok := claims["type"].(string)
			if tokenType != jwt.TokenTypeAccess || !ok {
				response.HandleError(w, jwt.ErrInvalidToken)
				return
			}

			httplog.SetAttrs(r.Context(), slog.String("reviewer", token.Subject()))

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}

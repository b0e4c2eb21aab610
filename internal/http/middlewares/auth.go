package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/jwtvalidator/internal/claims"
	"github.com/dropDatabas3/jwtvalidator/internal/http/errors"
	jwtx "github.com/dropDatabas3/jwtvalidator/internal/jwt"
)

// TokenVerifier es lo que necesitan los middlewares de autenticación.
// *jwt.Verifier lo implementa.
type TokenVerifier interface {
	VerifyAuthorizationHeader(ctx context.Context, header string) (claims.Claims, error)
}

// RequireJWT valida Authorization: Bearer <JWT> y guarda las claims en el contexto.
// Con mandatory=false un request sin header pasa sin claims; un header presente
// pero inválido se rechaza siempre.
func RequireJWT(v TokenVerifier, mandatory bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := r.Header.Get("Authorization")
			if !mandatory && strings.TrimSpace(ah) == "" {
				next.ServeHTTP(w, r)
				return
			}

			c, err := v.VerifyAuthorizationHeader(r.Context(), ah)
			if err != nil {
				writeAuthError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), c)))
		})
	}
}

// RequireUser exige que el token pertenezca al usuario del parámetro de ruta
// (sub o mtlIdentityId). Debe usarse después de RequireJWT.
func RequireUser(param string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := GetClaims(r.Context())
			if c == nil {
				writeAuthError(w, errMissingCredentials)
				return
			}
			if err := jwtx.VerifyUser(c, chi.URLParam(r, param)); err != nil {
				writeAuthError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeAuthError agrega WWW-Authenticate en los 401.
func writeAuthError(w http.ResponseWriter, err error) {
	appErr := errors.FromError(err)
	if appErr.HTTPStatus == http.StatusUnauthorized {
		desc := appErr.Message
		if d := appErr.FirstDetail(); d.Message != "" {
			desc = d.Message
		}
		desc = strings.ReplaceAll(desc, `"`, `'`)
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	}
	errors.WriteError(w, appErr)
}

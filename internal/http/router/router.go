// Package router arma el árbol de rutas HTTP del validador.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	healthctrl "github.com/dropDatabas3/jwtvalidator/internal/http/controllers/health"
	tokenctrl "github.com/dropDatabas3/jwtvalidator/internal/http/controllers/token"
	httperrors "github.com/dropDatabas3/jwtvalidator/internal/http/errors"
	mw "github.com/dropDatabas3/jwtvalidator/internal/http/middlewares"
)

// Deps contiene las dependencias del router.
type Deps struct {
	Verifier mw.TokenVerifier
	Keys     healthctrl.KeyStore
	Version  string

	// AuthMandatory=false deja pasar requests sin Authorization a /v1.
	AuthMandatory bool
	ExposeClaims  bool

	// MetricsHandler se monta en MetricsPath si no es nil.
	MetricsHandler http.Handler
	MetricsPath    string
}

// New construye el handler raíz.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithRecover(),
		mw.WithMetrics(),
	)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})

	health := healthctrl.NewHealthController(deps.Keys, deps.Version)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	if deps.MetricsHandler != nil {
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, deps.MetricsHandler)
	}

	token := tokenctrl.NewTokenController(deps.ExposeClaims)
	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.RequireJWT(deps.Verifier, deps.AuthMandatory))
		r.Get("/me", token.Me)
		r.With(mw.RequireUser("userID")).Get("/users/{userID}", token.User)
	})

	return r
}

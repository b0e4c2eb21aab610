// Package token expone el token verificado del request: claims, identidad y
// los identificadores únicos derivados.
package token

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/jwtvalidator/internal/http/dto/token"
	httperrors "github.com/dropDatabas3/jwtvalidator/internal/http/errors"
	mw "github.com/dropDatabas3/jwtvalidator/internal/http/middlewares"
	"github.com/dropDatabas3/jwtvalidator/internal/identity"
	"github.com/dropDatabas3/jwtvalidator/internal/observability/logger"
)

type TokenController struct {
	// ExposeClaims incluye el payload completo en /v1/me.
	ExposeClaims bool
}

func NewTokenController(exposeClaims bool) *TokenController {
	return &TokenController{ExposeClaims: exposeClaims}
}

// Me maneja GET /v1/me
func (c *TokenController) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Op("TokenController.Me"))

	id, err := mw.GetIdentity(ctx)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	cl := mw.GetClaims(ctx)
	ids := make(map[string]string, len(identity.Formats))
	for _, f := range identity.Formats {
		uid, err := identity.UniqueID(cl, f)
		if err != nil {
			// un token sin name ni id no impide responder la identidad
			log.Debug("unique id not available", logger.String("format", string(f)), logger.Err(err))
			continue
		}
		ids[string(f)] = uid
	}

	resp := dto.MeResponse{Identity: id, Display: id.String(), UniqueIDs: ids}
	if p, err := cl.Decode(); err == nil {
		resp.Payload = &p
	} else {
		log.Debug("typed payload not available", logger.Err(err))
	}
	if c.ExposeClaims {
		resp.Claims = cl
	}
	log.Debug("identity resolved", logger.IdentityType(string(id.Type)), logger.SubType(string(id.Attributes.Type)))
	httperrors.WriteJSON(w, http.StatusOK, resp)
}

// User maneja GET /v1/users/{userID}. La pertenencia del token al usuario la
// valida RequireUser antes de llegar acá.
func (c *TokenController) User(w http.ResponseWriter, r *http.Request) {
	id, err := mw.GetIdentity(r.Context())
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, dto.UserResponse{
		UserID:   chi.URLParam(r, "userID"),
		Identity: id,
	})
}

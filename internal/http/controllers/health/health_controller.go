// Package health contiene el controller para health checks.
package health

import (
	"context"
	"net/http"
	"time"

	dto "github.com/dropDatabas3/jwtvalidator/internal/http/dto/health"
	httperrors "github.com/dropDatabas3/jwtvalidator/internal/http/errors"
	jwtx "github.com/dropDatabas3/jwtvalidator/internal/jwt"
	"github.com/dropDatabas3/jwtvalidator/internal/observability/logger"
)

// KeyStore es la vista de la cache de claves que necesita Readyz.
type KeyStore interface {
	GetAll(ctx context.Context) (map[int]*jwtx.SigningKey, error)
	NextRefreshAt() time.Time
}

// HealthController maneja las rutas de health check.
type HealthController struct {
	keys    KeyStore
	version string
}

func NewHealthController(keys KeyStore, version string) *HealthController {
	return &HealthController{keys: keys, version: version}
}

// Healthz maneja GET /healthz (liveness, no toca dependencias).
func (c *HealthController) Healthz(w http.ResponseWriter, _ *http.Request) {
	httperrors.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz maneja GET /readyz. Responde 503 si el servicio de claves falla o no
// publica ninguna clave activa.
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Op("HealthController.Readyz"))

	resp := dto.HealthResponse{Status: dto.StatusReady, Version: c.version}
	comp := dto.ComponentStatus{Name: "keys", Status: dto.StatusReady}

	keys, err := c.keys.GetAll(ctx)
	active := 0
	for _, k := range keys {
		if k.IsActive() {
			active++
		}
	}
	resp.KeyCount = len(keys)
	if next := c.keys.NextRefreshAt(); !next.IsZero() {
		resp.NextRefreshAt = &next
	}

	switch {
	case err != nil:
		comp.Status = dto.StatusUnavailable
		comp.Error = err.Error()
	case active == 0:
		comp.Status = dto.StatusUnavailable
		comp.Error = "no active public keys"
	}
	resp.Status = comp.Status
	resp.Components = []dto.ComponentStatus{comp}

	status := http.StatusOK
	if resp.Status == dto.StatusUnavailable {
		status = http.StatusServiceUnavailable
	}
	log.Debug("health check completed", logger.String("status", resp.Status), logger.Count(resp.KeyCount))

	w.Header().Set("Cache-Control", "no-store")
	httperrors.WriteJSON(w, status, resp)
}

// Package app arma las dependencias compartidas por el servicio HTTP y el CLI.
package app

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/jwtvalidator/internal/cache"
	"github.com/dropDatabas3/jwtvalidator/internal/config"
	"github.com/dropDatabas3/jwtvalidator/internal/jwt"
	"github.com/dropDatabas3/jwtvalidator/internal/observability/logger"
)

type Container struct {
	Config   *config.Config
	Keys     *jwt.KeyCache
	Verifier *jwt.Verifier

	// Snapshot es nil con snapshot.driver=none.
	Snapshot cache.Client
}

// Build valida la configuración y construye la cache de claves y el verificador.
// No hace llamadas remotas; Warm se invoca aparte.
func Build(cfg *config.Config) (*Container, error) {
	if err := cfg.RequireKeysHost(); err != nil {
		return nil, err
	}

	src, err := jwt.NewHTTPSource(jwt.HTTPSourceConfig{
		Host:            cfg.Keys.Host,
		Endpoint:        cfg.Keys.Endpoint,
		FetchParameters: cfg.Keys.FetchParameters,
		Timeout:         cfg.HTTPTimeout(),
	})
	if err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	opts := []jwt.Option{jwt.WithLogger(logger.Named("keycache"))}

	if cfg.Snapshot.Driver != "none" {
		client, err := cache.New(cache.Config{
			Driver:   cfg.Snapshot.Driver,
			Host:     cfg.Snapshot.Host,
			Port:     cfg.Snapshot.Port,
			Password: cfg.Snapshot.Password,
			DB:       cfg.Snapshot.DB,
			Prefix:   cfg.Snapshot.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("snapshot cache: %w", err)
		}
		c.Snapshot = client
		opts = append(opts, jwt.WithSnapshot(jwt.NewCacheSnapshot(client, cfg.SnapshotTTL())))
	}

	c.Keys = jwt.NewKeyCache(src, cfg.CacheDuration(), opts...)
	c.Verifier = jwt.NewVerifier(c.Keys)
	return c, nil
}

// Warm precarga la cache desde el snapshot. Un fallo solo se loguea: el
// servicio puede arrancar y resolver las claves a demanda.
func (c *Container) Warm(ctx context.Context) {
	if _, err := c.Keys.Warm(ctx); err != nil {
		logger.L().Warn("key cache warm-up failed", logger.Err(err), logger.String("driver", c.Config.Snapshot.Driver))
	}
}

func (c *Container) Close() error {
	if c.Snapshot != nil {
		return c.Snapshot.Close()
	}
	return nil
}

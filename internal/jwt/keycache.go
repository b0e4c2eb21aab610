package jwt

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/jwtvalidator/internal/metrics"
	"github.com/dropDatabas3/jwtvalidator/internal/observability/logger"
)

// KeyCache sirve claves públicas con el mínimo de llamadas remotas.
//
// Todas las claves comparten un único vencimiento (nextRefreshAt): cualquier
// fetch exitoso, individual o masivo, renueva la validez de toda la cache.
// Si refrescar una clave falla por un error transitorio y ya había una copia,
// se devuelve la copia vieja en lugar del error.
type KeyCache struct {
	source   KeySource
	duration time.Duration
	now      func() time.Time
	log      *zap.Logger
	snapshot SnapshotStore

	mu            sync.RWMutex
	keys          map[int]*SigningKey
	nextRefreshAt time.Time

	sf singleflight.Group
}

// Option configura un KeyCache.
type Option func(*KeyCache)

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(c *KeyCache) {
		if now != nil {
			c.now = now
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *KeyCache) {
		if l != nil {
			c.log = l
		}
	}
}

// WithSnapshot agrega un segundo nivel persistente (memory/redis). Cada fetch
// exitoso guarda el mapa completo; Warm lo recarga al arrancar.
func WithSnapshot(s SnapshotStore) Option {
	return func(c *KeyCache) { c.snapshot = s }
}

// NewKeyCache crea la cache. duration <= 0 usa DefaultCacheDuration.
func NewKeyCache(src KeySource, duration time.Duration, opts ...Option) *KeyCache {
	if duration <= 0 {
		duration = DefaultCacheDuration
	}
	c := &KeyCache{
		source:   src,
		duration: duration,
		now:      time.Now,
		keys:     make(map[int]*SigningKey),
	}
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		c.log = logger.Named("keycache")
	}
	return c
}

// validLocked: la cache es válida mientras now < nextRefreshAt. Requiere mu.
func (c *KeyCache) validLocked() bool {
	return !c.nextRefreshAt.IsZero() && c.now().Before(c.nextRefreshAt)
}

// GetAll devuelve todas las claves conocidas. Con la cache vencida hace un fetch
// masivo y mezcla el resultado; un error del fetch masivo se propaga sin fallback.
func (c *KeyCache) GetAll(ctx context.Context) (map[int]*SigningKey, error) {
	c.mu.RLock()
	valid := c.validLocked()
	c.mu.RUnlock()

	if !valid {
		_, err, _ := c.sf.Do("all", func() (any, error) {
			c.mu.RLock()
			valid := c.validLocked()
			c.mu.RUnlock()
			if valid {
				return nil, nil
			}

			keys, err := c.source.FetchAll(ctx)
			if err != nil {
				c.log.Error("fetching public keys failed", logger.Op("all"), logger.Status(StatusOf(err)), logger.Err(err))
				return nil, err
			}
			if keys == nil {
				return nil, nil
			}

			c.mu.Lock()
			for id, k := range keys {
				c.keys[id] = k
			}
			c.nextRefreshAt = c.now().Add(c.duration)
			metrics.KeyCacheSize.Set(float64(len(c.keys)))
			c.mu.Unlock()

			c.persist(ctx)
			return nil, nil
		})
		if err != nil {
			return nil, err
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[int]*SigningKey, len(c.keys))
	for id, k := range c.keys {
		out[id] = k
	}
	return out, nil
}

// GetOne devuelve la clave id. Hace como máximo una llamada remota:
//   - éxito: guarda la clave y renueva la validez de la cache
//   - 404: descarta la copia local y devuelve ErrKeyNotFound
//   - error transitorio con copia local: devuelve la copia (stale)
//   - cualquier otro error: se propaga
func (c *KeyCache) GetOne(ctx context.Context, id int) (*SigningKey, error) {
	c.mu.RLock()
	key, ok := c.keys[id]
	valid := c.validLocked()
	c.mu.RUnlock()
	if ok && valid {
		return key, nil
	}

	v, err, _ := c.sf.Do("one:"+strconv.Itoa(id), func() (any, error) {
		return c.fetchOne(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*SigningKey), nil
}

func (c *KeyCache) fetchOne(ctx context.Context, id int) (*SigningKey, error) {
	c.mu.RLock()
	key, ok := c.keys[id]
	valid := c.validLocked()
	c.mu.RUnlock()
	if ok && valid {
		return key, nil
	}

	fresh, err := c.source.FetchOne(ctx, id)
	if err == nil && fresh == nil {
		err = ErrKeyNotFound
	}

	switch {
	case err == nil:
		c.mu.Lock()
		c.keys[id] = fresh
		c.nextRefreshAt = c.now().Add(c.duration)
		metrics.KeyCacheSize.Set(float64(len(c.keys)))
		c.mu.Unlock()
		c.persist(ctx)
		return fresh, nil

	case errors.Is(err, ErrKeyNotFound):
		// se descarta la copia local: una clave que el servicio ya no publica
		// no vuelve a servirse, ni siquiera como stale.
		c.mu.Lock()
		_, had := c.keys[id]
		delete(c.keys, id)
		metrics.KeyCacheSize.Set(float64(len(c.keys)))
		c.mu.Unlock()
		if had {
			c.persist(ctx)
		}
		return nil, ErrKeyNotFound
	}

	c.mu.RLock()
	stale, ok := c.keys[id]
	c.mu.RUnlock()
	if ok && IsTransient(err) {
		metrics.KeyStaleServedTotal.Inc()
		c.log.Warn("error getting public key, cached value was sent as result",
			logger.KeyID(id), logger.Stale(true), logger.Status(StatusOf(err)), logger.Err(err))
		return stale, nil
	}

	c.log.Error("error getting public key",
		logger.KeyID(id), logger.Status(StatusOf(err)), logger.Err(err))
	return nil, err
}

// Clear descarta todas las claves y fuerza un refetch en el próximo acceso.
func (c *KeyCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = make(map[int]*SigningKey)
	c.nextRefreshAt = c.now()
	metrics.KeyCacheSize.Set(0)
}

// NextRefreshAt devuelve el vencimiento compartido de la cache.
func (c *KeyCache) NextRefreshAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nextRefreshAt
}

// Warm precarga las claves guardadas en el snapshot sin renovar la validez:
// el primer acceso igual consulta el servicio, pero si éste falla de forma
// transitoria hay una copia para servir.
func (c *KeyCache) Warm(ctx context.Context) (int, error) {
	if c.snapshot == nil {
		return 0, nil
	}
	keys, err := c.snapshot.Load(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	c.mu.Lock()
	for _, k := range keys {
		if k == nil || k.ID <= 0 {
			continue
		}
		if _, exists := c.keys[k.ID]; !exists {
			c.keys[k.ID] = k
			n++
		}
	}
	metrics.KeyCacheSize.Set(float64(len(c.keys)))
	c.mu.Unlock()
	c.log.Info("key cache warmed from snapshot", logger.Count(n))
	return n, nil
}

func (c *KeyCache) persist(ctx context.Context) {
	if c.snapshot == nil {
		return
	}
	c.mu.RLock()
	keys := make([]*SigningKey, 0, len(c.keys))
	for _, k := range c.keys {
		keys = append(keys, k)
	}
	c.mu.RUnlock()
	sort.Slice(keys, func(i, j int) bool { return keys[i].ID < keys[j].ID })

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := c.snapshot.Save(ctx, keys); err != nil {
		c.log.Warn("saving key snapshot failed", logger.Err(err))
	}
}

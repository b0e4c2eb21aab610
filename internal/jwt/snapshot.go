package jwt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dropDatabas3/jwtvalidator/internal/cache"
)

// SnapshotStore persiste el conjunto de claves conocidas fuera del proceso.
type SnapshotStore interface {
	Load(ctx context.Context) ([]*SigningKey, error)
	Save(ctx context.Context, keys []*SigningKey) error
}

const snapshotKey = "signing-keys"

// CacheSnapshot guarda las claves como JSON en un cache.Client.
type CacheSnapshot struct {
	client cache.Client
	ttl    time.Duration
}

// NewCacheSnapshot crea un snapshot; ttl 0 significa sin vencimiento.
func NewCacheSnapshot(client cache.Client, ttl time.Duration) *CacheSnapshot {
	return &CacheSnapshot{client: client, ttl: ttl}
}

func (s *CacheSnapshot) Load(ctx context.Context) ([]*SigningKey, error) {
	b, err := s.client.Get(ctx, snapshotKey)
	if cache.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var keys []*SigningKey
	if err := json.Unmarshal(b, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *CacheSnapshot) Save(ctx context.Context, keys []*SigningKey) error {
	b, err := json.Marshal(keys)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, snapshotKey, b, s.ttl)
}

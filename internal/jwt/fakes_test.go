package jwt_test

import (
	"context"
	"sync"
	"time"

	"github.com/dropDatabas3/jwtvalidator/internal/jwt"
)

// fakeSource es un KeySource en memoria con errores inyectables y contadores.
type fakeSource struct {
	mu       sync.Mutex
	keys     map[int]*jwt.SigningKey
	err      error
	allCalls int
	oneCalls int
}

func newFakeSource(keys ...*jwt.SigningKey) *fakeSource {
	f := &fakeSource{keys: map[int]*jwt.SigningKey{}}
	for _, k := range keys {
		f.keys[k.ID] = k
	}
	return f
}

func (f *fakeSource) FetchAll(context.Context) (map[int]*jwt.SigningKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allCalls++
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[int]*jwt.SigningKey, len(f.keys))
	for id, k := range f.keys {
		out[id] = k
	}
	return out, nil
}

func (f *fakeSource) FetchOne(_ context.Context, id int) (*jwt.SigningKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.oneCalls++
	if f.err != nil {
		return nil, f.err
	}
	k, ok := f.keys[id]
	if !ok {
		return nil, jwt.ErrKeyNotFound
	}
	return k, nil
}

func (f *fakeSource) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeSource) put(k *jwt.SigningKey) {
	f.mu.Lock()
	f.keys[k.ID] = k
	f.mu.Unlock()
}

func (f *fakeSource) remove(id int) {
	f.mu.Lock()
	delete(f.keys, id)
	f.mu.Unlock()
}

func (f *fakeSource) calls() (all, one int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.allCalls, f.oneCalls
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 7, 4, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func activeKey(id int) *jwt.SigningKey {
	return &jwt.SigningKey{ID: id, Algorithm: "RS256", PublicKey: "pem", State: jwt.KeyActive}
}

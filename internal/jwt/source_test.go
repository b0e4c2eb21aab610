package jwt_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/jwtvalidator/internal/jwt"
)

func keyServer(t *testing.T, handler http.HandlerFunc) (*jwt.HTTPSource, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	src, err := jwt.NewHTTPSource(jwt.HTTPSourceConfig{
		Host:            srv.URL,
		FetchParameters: jwt.DefaultFetchParameters,
		Timeout:         2 * time.Second,
	})
	require.NoError(t, err)
	return src, srv
}

func TestHTTPSource_FetchAll(t *testing.T) {
	src, _ := keyServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, jwt.DefaultEndpoint, r.URL.Path)
		assert.Equal(t, []string{"active", "revoked"}, r.URL.Query()["state"])
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"paging": map[string]any{"offset": 0, "limit": 25, "totalCount": 2},
			"items": []map[string]any{
				{"id": 1, "algorithm": "RS256", "publicKey": "a", "state": "active", "createdAt": "2024-01-01T00:00:00Z"},
				{"id": 2, "algorithm": "RS256", "publicKey": "b", "state": "revoked"},
			},
		})
	})

	keys, err := src.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, jwt.KeyRevoked, keys[2].State)
	require.NotNil(t, keys[1].CreatedAt)
	assert.Equal(t, 2024, keys[1].CreatedAt.Year())
	assert.Nil(t, keys[1].ExpiresAt)
}

func TestHTTPSource_FetchAll_NoItems(t *testing.T) {
	src, _ := keyServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"paging":{"offset":0,"limit":25,"totalCount":0}}`))
	})
	keys, err := src.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Nil(t, keys)
}

func TestHTTPSource_FetchOne(t *testing.T) {
	src, _ := keyServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case jwt.DefaultEndpoint + "/6":
			_, _ = w.Write([]byte(`{"id":6,"algorithm":"RS256","publicKey":"pem","state":"active"}`))
		default:
			http.NotFound(w, r)
		}
	})

	k, err := src.FetchOne(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, 6, k.ID)
	assert.True(t, k.IsActive())

	_, err = src.FetchOne(context.Background(), 7)
	assert.ErrorIs(t, err, jwt.ErrKeyNotFound)
}

func TestHTTPSource_ErrorStatus(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusTooManyRequests, http.StatusInternalServerError} {
		src, _ := keyServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})
		_, err := src.FetchOne(context.Background(), 1)
		require.Error(t, err)
		assert.Equal(t, status, jwt.StatusOf(err))
		assert.Equal(t, status != http.StatusBadRequest, jwt.IsTransient(err))
	}
}

func TestHTTPSource_BadBodyIsGatewayError(t *testing.T) {
	src, _ := keyServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})
	_, err := src.FetchOne(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, jwt.StatusOf(err))
}

func TestHTTPSource_NetworkErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	src, err := jwt.NewHTTPSource(jwt.HTTPSourceConfig{Host: url, Timeout: time.Second})
	require.NoError(t, err)
	_, err = src.FetchOne(context.Background(), 1)
	require.Error(t, err)
	assert.Zero(t, jwt.StatusOf(err))
	assert.True(t, jwt.IsTransient(err))
}

func TestNewHTTPSource_RequiresHost(t *testing.T) {
	_, err := jwt.NewHTTPSource(jwt.HTTPSourceConfig{})
	assert.Error(t, err)
}

package middlewares

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/jwtvalidator/internal/claims"
	"github.com/dropDatabas3/jwtvalidator/internal/http/errors"
	"github.com/dropDatabas3/jwtvalidator/internal/identity"
)

// stubVerifier acepta solo "Bearer good" y devuelve las claims configuradas.
type stubVerifier struct {
	claims claims.Claims
	calls  int
}

func (s *stubVerifier) VerifyAuthorizationHeader(_ context.Context, header string) (claims.Claims, error) {
	s.calls++
	if header == "Bearer good" {
		return s.claims, nil
	}
	return nil, errors.ErrInvalidJWT.WithDetails(errors.ErrorDetail{
		Code: errors.CodeInvalidValue, Target: "jwt", Message: `jwt "malformed"`,
	})
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	if c := GetClaims(r.Context()); c != nil {
		w.Header().Set("X-Sub", c.String(claims.Subject))
	}
	w.WriteHeader(http.StatusNoContent)
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := ChainFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "h") }, mw("A"), mw("B"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"A", "B", "h"}, order)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := Chain(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}), WithRequestID())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
}

func TestRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }), WithRecover(), WithLogging())
	rec := httptest.NewRecorder()
	require.NotPanics(t, func() { h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil)) })
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internalServerError", errorCode(t, rec))
}

func TestRequireJWT(t *testing.T) {
	v := &stubVerifier{claims: claims.Claims{"sub": "u1"}}

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()
		Chain(http.HandlerFunc(okHandler), RequireJWT(v, true)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "u1", rec.Header().Get("X-Sub"))
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bad")
		rec := httptest.NewRecorder()
		Chain(http.HandlerFunc(okHandler), RequireJWT(v, false)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, errors.CodeInvalidJWT, errorCode(t, rec))
		assert.Equal(t, `Bearer error="invalid_token", error_description="jwt 'malformed'"`, rec.Header().Get("WWW-Authenticate"))
	})

	t.Run("missing header optional", func(t *testing.T) {
		calls := v.calls
		rec := httptest.NewRecorder()
		Chain(http.HandlerFunc(okHandler), RequireJWT(v, false)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Header().Get("X-Sub"))
		assert.Equal(t, calls, v.calls)
	})

	t.Run("missing header mandatory", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Chain(http.HandlerFunc(okHandler), RequireJWT(v, true)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireUser(t *testing.T) {
	v := &stubVerifier{claims: claims.Claims{"sub": "u1", "mtlIdentityId": "m1"}}
	r := chi.NewRouter()
	r.With(RequireJWT(v, true), RequireUser("userID")).Get("/users/{userID}", okHandler)

	do := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, do("/users/u1").Code)
	assert.Equal(t, http.StatusNoContent, do("/users/m1").Code)

	rec := do("/users/someone-else")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, errors.CodeInvalidJWT, errorCode(t, rec))
}

func TestRequireUser_WithoutClaims(t *testing.T) {
	rec := httptest.NewRecorder()
	Chain(http.HandlerFunc(okHandler), RequireUser("userID")).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, errors.CodeInvalidAuthorizationHeader, errorCode(t, rec))
}

func TestGetIdentity(t *testing.T) {
	c := claims.Claims{
		"iss":      "security-identity-token-api",
		"aud":      "a496befa-db7d-45a6-ac7a-11471816b8f1",
		"sub":      "12345",
		"realm":    "employees",
		"userName": "john.doe",
		"userType": "SomeUnknownType",
		"email":    "john.doe@mailinator.com",
	}
	ctx := WithClaims(context.Background(), c)

	id, err := GetIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, identity.TypeUser, id.Type)

	// el contexto guarda una copia
	c["userName"] = "other"
	assert.Equal(t, "john.doe", GetClaims(ctx).String(claims.UserName))

	// la clasificación se memoiza por request
	GetClaims(ctx)["userName"] = "changed"
	again, err := GetIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestGetIdentity_Errors(t *testing.T) {
	_, err := GetIdentity(context.Background())
	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.CodeInvalidAuthorizationHeader, appErr.Code)

	_, err = GetIdentity(WithClaims(context.Background(), claims.Claims{"iss": "x"}))
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.CodeInvalidJWT, appErr.Code)
	assert.Equal(t, errors.CodeInvalidValue, appErr.FirstDetail().Code)

	var ce *identity.ClaimError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, identity.MissingClaim, ce.Kind)
}

func TestMetrics_RoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(WithMetrics())
	r.Get("/users/{userID}", okHandler)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/42", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

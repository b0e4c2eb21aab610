package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError_AppError(t *testing.T) {
	rec := httptest.NewRecorder()
	err := ErrInvalidJWT.WithDetails(ErrorDetail{Code: CodeInvalidValue, Target: "jwt", Message: "jwt expired"})
	WriteError(rec, err)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "invalidJWT", body["error"]["code"])
	assert.Equal(t, "Authorization header", body["error"]["target"])
	details := body["error"]["details"].([]any)
	require.Len(t, details, 1)
	assert.Equal(t, "jwt expired", details[0].(map[string]any)["message"])
}

func TestWriteError_GenericError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, stderrors.New("db exploded"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db exploded")
}

func TestWriteError_ClampsStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrUnableToGetPublicKey.WithStatus(302))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWithHelpersCopy(t *testing.T) {
	e := ErrInvalidJWT.WithDetail("x").WithStatus(http.StatusForbidden)
	assert.Empty(t, ErrInvalidJWT.Detail)
	assert.Equal(t, http.StatusUnauthorized, ErrInvalidJWT.HTTPStatus)
	assert.True(t, Is(e, ErrInvalidJWT))
	assert.False(t, Is(e, ErrUnableToGetPublicKey))
}

func TestFromError_Wrapped(t *testing.T) {
	cause := stderrors.New("boom")
	e := ErrUnableToGetPublicKey.WithCause(cause)
	wrapped := stderrors.Join(stderrors.New("ctx"), e)

	got := FromError(wrapped)
	assert.Equal(t, CodeUnableToGetPublicKey, got.Code)
	assert.ErrorIs(t, got, cause)
}

package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
)

// As y Is re-exportan los helpers de la stdlib para que los llamadores que
// importan este paquete como "errors" no necesiten un alias.
func As(err error, target any) bool { return stderrors.As(err, target) }
func Is(err, target error) bool     { return stderrors.Is(err, target) }

type errorBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Target  string        `json:"target,omitempty"`
	Detail  string        `json:"detail,omitempty"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// WriteError escribe una respuesta HTTP basada en el error proporcionado.
// Los errores que no son *AppError se responden como 500 sin exponer la causa.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	status := appErr.HTTPStatus
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: errorBody{
		Code:    appErr.Code,
		Message: appErr.Message,
		Target:  appErr.Target,
		Detail:  appErr.Detail,
		Details: appErr.Details,
	}})
}

// WriteJSON escribe una respuesta JSON estándar.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

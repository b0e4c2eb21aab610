package jwt

import (
	"net/http"

	apperrors "github.com/dropDatabas3/jwtvalidator/internal/http/errors"
)

// Mensajes de detalle de los errores de verificación.
const (
	MsgEmptyHeader        = "Empty Authorization header"
	MsgBadScheme          = `Bad authentication scheme, "Bearer" required`
	MsgMalformed          = "jwt malformed"
	MsgMissingKeyID       = "missing public key ID"
	MsgKeyNotActive       = "this keyId is no longer active"
	MsgKeyExpired         = "this keyId is expired"
	MsgCreatedAfterKey    = "this jwt can't be created after the expiration of the public key"
	MsgCreatedBeforeKey   = "this jwt can't be created before the public key"
	MsgInvalidAlgorithm   = "invalid algorithm"
	MsgInvalidSignature   = "invalid signature"
	MsgExpired            = "jwt expired"
	MsgNotActive          = "jwt not active"
	MsgInvalidPayload     = "expected a valid JWT payload"
	MsgUnauthorizedAccess = "Unauthorized access"
)

// TargetJWT es el target de los detalles que refieren al token mismo.
const TargetJWT = "jwt"

func invalidHeader(code, msg string) *apperrors.AppError {
	return apperrors.ErrInvalidAuthorizationHeader.WithDetails(apperrors.ErrorDetail{
		Code:    code,
		Target:  apperrors.TargetAuthorizationHeader,
		Message: msg,
	})
}

func invalidJWT(msg string) *apperrors.AppError {
	return apperrors.ErrInvalidJWT.WithDetails(apperrors.ErrorDetail{
		Code:    apperrors.CodeInvalidValue,
		Target:  TargetJWT,
		Message: msg,
	})
}

// unableToGetPublicKey conserva el status del servicio de claves; sin status
// (error de red) se responde 502.
func unableToGetPublicKey(err error) *apperrors.AppError {
	status := StatusOf(err)
	if status < 400 {
		status = http.StatusBadGateway
	}
	return apperrors.ErrUnableToGetPublicKey.
		WithStatus(status).
		WithDetail(err.Error()).
		WithCause(err)
}

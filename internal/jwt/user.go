package jwt

import (
	"github.com/dropDatabas3/jwtvalidator/internal/claims"
	apperrors "github.com/dropDatabas3/jwtvalidator/internal/http/errors"
)

// IsUser indica si el token pertenece al usuario userID, comparando contra
// sub o mtlIdentityId.
func IsUser(c claims.Claims, userID string) bool {
	if userID == "" || c == nil {
		return false
	}
	return c.String(claims.Subject) == userID || c.String(claims.MtlIdentityID) == userID
}

// VerifyUser falla con invalidJWT/unauthorizedAccess si el token no es de userID.
func VerifyUser(c claims.Claims, userID string) error {
	if IsUser(c, userID) {
		return nil
	}
	return apperrors.ErrInvalidJWT.WithDetails(apperrors.ErrorDetail{
		Code:    apperrors.CodeUnauthorizedAccess,
		Target:  TargetJWT,
		Message: MsgUnauthorizedAccess,
	})
}

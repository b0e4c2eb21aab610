package middlewares

import (
	"context"
	"sync"

	"github.com/dropDatabas3/jwtvalidator/internal/claims"
	"github.com/dropDatabas3/jwtvalidator/internal/http/errors"
	"github.com/dropDatabas3/jwtvalidator/internal/identity"
	jwtx "github.com/dropDatabas3/jwtvalidator/internal/jwt"
)

type ctxKey string

const (
	ctxAuthKey      ctxKey = "auth"
	ctxRequestIDKey ctxKey = "request_id"
)

// authState guarda las claims verificadas y la identidad, que se clasifica
// recién cuando alguien la pide y una sola vez por request.
type authState struct {
	claims claims.Claims

	once sync.Once
	id   identity.Identity
	err  error
}

// WithClaims inyecta una copia de las claims ya verificadas en el contexto.
func WithClaims(ctx context.Context, c claims.Claims) context.Context {
	return context.WithValue(ctx, ctxAuthKey, &authState{claims: c.Clone()})
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

func getAuth(ctx context.Context) *authState {
	st, _ := ctx.Value(ctxAuthKey).(*authState)
	return st
}

var errMissingCredentials = errors.ErrInvalidAuthorizationHeader.WithDetails(errors.ErrorDetail{
	Code:    errors.CodeNullValue,
	Target:  errors.TargetAuthorizationHeader,
	Message: jwtx.MsgEmptyHeader,
})

// GetClaims obtiene las claims JWT del contexto.
// Retorna nil si no hay claims (token ausente o middleware no aplicado).
func GetClaims(ctx context.Context) claims.Claims {
	if st := getAuth(ctx); st != nil {
		return st.claims
	}
	return nil
}

// GetIdentity clasifica las claims del request. Los errores de claims se
// devuelven como invalidJWT para que el handler los escriba tal cual.
func GetIdentity(ctx context.Context) (identity.Identity, error) {
	st := getAuth(ctx)
	if st == nil {
		return identity.Identity{}, errMissingCredentials
	}
	st.once.Do(func() {
		st.id, st.err = identity.Classify(st.claims)
		if st.err != nil {
			var ce *identity.ClaimError
			if errors.As(st.err, &ce) {
				st.err = errors.ErrInvalidJWT.
					WithDetails(errors.ErrorDetail{
						Code:    errors.CodeInvalidValue,
						Target:  jwtx.TargetJWT,
						Message: ce.Error(),
					}).
					WithCause(ce)
			}
		}
	})
	return st.id, st.err
}

// GetRequestID obtiene el request ID del contexto.
func GetRequestID(ctx context.Context) string {
	s, _ := ctx.Value(ctxRequestIDKey).(string)
	return s
}

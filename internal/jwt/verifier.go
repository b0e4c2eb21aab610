package jwt

import (
	"context"
	"errors"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/dropDatabas3/jwtvalidator/internal/claims"
	apperrors "github.com/dropDatabas3/jwtvalidator/internal/http/errors"
	"github.com/dropDatabas3/jwtvalidator/internal/metrics"
	"github.com/dropDatabas3/jwtvalidator/internal/observability/logger"
)

// KeyProvider resuelve una clave por id. *KeyCache lo implementa.
type KeyProvider interface {
	GetOne(ctx context.Context, id int) (*SigningKey, error)
}

// Verifier valida tokens emitidos por el servicio de identidad.
type Verifier struct {
	keys KeyProvider
	now  func() time.Time
	log  *zap.Logger
}

// VerifierOption configura un Verifier.
type VerifierOption func(*Verifier)

func WithVerifierClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
		}
	}
}

func WithVerifierLogger(l *zap.Logger) VerifierOption {
	return func(v *Verifier) {
		if l != nil {
			v.log = l
		}
	}
}

func NewVerifier(keys KeyProvider, opts ...VerifierOption) *Verifier {
	v := &Verifier{keys: keys, now: time.Now}
	for _, o := range opts {
		o(v)
	}
	if v.log == nil {
		v.log = logger.Named("verifier")
	}
	return v
}

// VerifyAuthorizationHeader exige un header "Bearer <jwt>" y verifica el token.
func (v *Verifier) VerifyAuthorizationHeader(ctx context.Context, header string) (claims.Claims, error) {
	if strings.TrimSpace(header) == "" {
		return nil, v.reject(invalidHeader(apperrors.CodeNullValue, MsgEmptyHeader))
	}
	parts := strings.Fields(header)
	if parts[0] != "Bearer" {
		return nil, v.reject(invalidHeader(apperrors.CodeInvalidValue, MsgBadScheme))
	}
	token := ""
	if len(parts) > 1 {
		token = parts[1]
	}
	return v.VerifyToken(ctx, token)
}

// VerifyToken verifica el token y devuelve sus claims:
//  1. decodifica sin verificar la firma
//  2. resuelve la clave por keyId (debe estar activa)
//  3. valida iat contra la vida de la clave
//  4. verifica firma y exp
//  5. valida la forma mínima del payload
func (v *Verifier) VerifyToken(ctx context.Context, token string) (claims.Claims, error) {
	unverified, alg, err := decodeUnverified(token)
	if err != nil {
		return nil, v.reject(invalidJWT(MsgMalformed))
	}

	keyID, ok := unverified.KeyIdentifier()
	if !ok {
		return nil, v.reject(invalidJWT(MsgMissingKeyID))
	}

	key, err := v.keys.GetOne(ctx, keyID)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, v.reject(invalidJWT(MsgKeyNotActive))
		}
		return nil, v.reject(unableToGetPublicKey(err))
	}
	if !key.IsActive() {
		return nil, v.reject(invalidJWT(MsgKeyNotActive))
	}

	if appErr := v.checkKeyLifetime(unverified, key); appErr != nil {
		return nil, v.reject(appErr)
	}

	verified, appErr := v.verifySignature(token, alg, key)
	if appErr != nil {
		return nil, v.reject(appErr)
	}
	if !verified.HasShape() {
		return nil, v.reject(invalidJWT(MsgInvalidPayload))
	}

	metrics.TokenVerifyTotal.WithLabelValues(metrics.ResultOK).Inc()
	return verified, nil
}

// DecodeUnverified devuelve los claims sin verificar firma ni vigencia.
// Solo para diagnóstico: nunca usar el resultado para autorizar.
func DecodeUnverified(token string) (claims.Claims, error) {
	c, _, err := decodeUnverified(token)
	if err != nil {
		return nil, invalidJWT(MsgMalformed).WithCause(err)
	}
	return c, nil
}

// decodeUnverified exige tres segmentos con firma no vacía y un payload objeto.
func decodeUnverified(token string) (claims.Claims, string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[2] == "" {
		return nil, "", jwtv5.ErrTokenMalformed
	}
	mc := jwtv5.MapClaims{}
	t, _, err := jwtv5.NewParser().ParseUnverified(token, mc)
	if err != nil {
		return nil, "", err
	}
	return claims.Claims(mc), t.Method.Alg(), nil
}

// checkKeyLifetime: el token no puede ser anterior a la clave ni posterior a su
// vencimiento, y la clave no puede estar vencida.
func (v *Verifier) checkKeyLifetime(c claims.Claims, key *SigningKey) *apperrors.AppError {
	iat, hasIat := c.IssuedAtTime()

	if hasIat && key.CreatedAt != nil && iat.Before(*key.CreatedAt) {
		return invalidJWT(MsgCreatedBeforeKey)
	}
	if key.ExpiresAt != nil {
		if v.now().After(*key.ExpiresAt) {
			return invalidJWT(MsgKeyExpired)
		}
		if hasIat && iat.After(*key.ExpiresAt) {
			return invalidJWT(MsgCreatedAfterKey)
		}
	}
	return nil
}

func (v *Verifier) verifySignature(token, alg string, key *SigningKey) (claims.Claims, *apperrors.AppError) {
	pub, err := key.Parsed()
	if err != nil {
		// la clave se obtuvo bien; lo que falla es verificar con ella
		return nil, invalidJWT(err.Error())
	}

	methods := key.Methods()
	if !contains(methods, alg) {
		return nil, invalidJWT(MsgInvalidAlgorithm)
	}

	mc := jwtv5.MapClaims{}
	_, err = jwtv5.ParseWithClaims(token, mc,
		func(*jwtv5.Token) (any, error) { return pub, nil },
		jwtv5.WithValidMethods(methods),
		jwtv5.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, invalidJWT(verificationMessage(err))
	}
	return claims.Claims(mc), nil
}

// verificationMessage traduce los errores de golang-jwt al detalle público.
func verificationMessage(err error) string {
	switch {
	case errors.Is(err, jwtv5.ErrTokenMalformed):
		return MsgMalformed
	case errors.Is(err, jwtv5.ErrTokenExpired):
		return MsgExpired
	case errors.Is(err, jwtv5.ErrTokenNotValidYet), errors.Is(err, jwtv5.ErrTokenUsedBeforeIssued):
		return MsgNotActive
	case errors.Is(err, jwtv5.ErrTokenSignatureInvalid):
		return MsgInvalidSignature
	default:
		return err.Error()
	}
}

func (v *Verifier) reject(appErr *apperrors.AppError) error {
	metrics.TokenVerifyTotal.WithLabelValues(appErr.Code).Inc()
	detail := appErr.FirstDetail().Message
	if detail == "" {
		detail = appErr.Detail
	}
	v.log.Debug("token rejected",
		logger.String("code", appErr.Code),
		logger.String("detail", detail),
		logger.Status(appErr.HTTPStatus),
	)
	return appErr
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

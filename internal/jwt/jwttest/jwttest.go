// Package jwttest genera claves y tokens firmados para tests.
package jwttest

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/jwtvalidator/internal/jwt"
)

// Signer firma tokens RS256 con un keyId fijo.
type Signer struct {
	KeyID   int
	Private *rsa.PrivateKey
}

// NewSigner genera un par RSA de 2048 bits.
func NewSigner(t testing.TB, keyID int) *Signer {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return &Signer{KeyID: keyID, Private: priv}
}

// PublicPEM devuelve la clave pública en formato PKIX PEM.
func (s *Signer) PublicPEM(t testing.TB) string {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(&s.Private.PublicKey)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

// Key devuelve la SigningKey activa correspondiente, válida entre created y expires.
func (s *Signer) Key(t testing.TB, created, expires time.Time) *jwt.SigningKey {
	t.Helper()
	return &jwt.SigningKey{
		ID:        s.KeyID,
		Algorithm: "RS256",
		PublicKey: s.PublicPEM(t),
		State:     jwt.KeyActive,
		CreatedAt: &created,
		ExpiresAt: &expires,
	}
}

// Sign firma los claims dados. Si no traen keyId se agrega el del signer.
func (s *Signer) Sign(t testing.TB, c map[string]any) string {
	t.Helper()
	mc := jwtv5.MapClaims{}
	for k, v := range c {
		mc[k] = v
	}
	if _, ok := mc["keyId"]; !ok {
		mc["keyId"] = s.KeyID
	}
	tok, err := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, mc).SignedString(s.Private)
	require.NoError(t, err)
	return tok
}

// ValidClaims arma un payload completo emitido en iat y vigente por una hora.
func ValidClaims(iat time.Time) map[string]any {
	return map[string]any{
		"accessToken": "opaque-access-token",
		"iss":         "security-identity-token-api",
		"sub":         "0b642a04-5fb1-4bb4-bd44-9a9ef4a5b3c1",
		"iat":         iat.Unix(),
		"exp":         iat.Add(time.Hour).Unix(),
	}
}

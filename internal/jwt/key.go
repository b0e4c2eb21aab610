package jwt

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// KeyState es el estado de una clave pública en el servicio de claves.
type KeyState string

const (
	KeyActive  KeyState = "active"
	KeyExpired KeyState = "expired"
	KeyRevoked KeyState = "revoked"
)

// SigningKey es una clave pública tal como la publica el servicio de claves.
// Es inmutable una vez obtenida; la clave parseada se deriva una sola vez.
type SigningKey struct {
	ID        int        `json:"id"`
	Algorithm string     `json:"algorithm"`
	PublicKey string     `json:"publicKey"` // PEM
	State     KeyState   `json:"state"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`

	parseOnce sync.Once
	parsed    crypto.PublicKey
	parseErr  error
}

// IsActive indica si la clave puede usarse para verificar tokens.
func (k *SigningKey) IsActive() bool {
	return k != nil && k.State == KeyActive
}

// Parsed devuelve la clave pública parseada desde el PEM (RSA, EC o Ed25519).
func (k *SigningKey) Parsed() (crypto.PublicKey, error) {
	k.parseOnce.Do(func() {
		k.parsed, k.parseErr = parsePublicKeyPEM([]byte(k.PublicKey))
	})
	return k.parsed, k.parseErr
}

// Methods devuelve los algoritmos JWS aceptados para esta clave. Si el servicio
// informa el algoritmo se usa tal cual; si no, se deducen del tipo de clave.
func (k *SigningKey) Methods() []string {
	if alg := strings.TrimSpace(k.Algorithm); alg != "" {
		return []string{alg}
	}
	pub, err := k.Parsed()
	if err != nil {
		return nil
	}
	switch pub.(type) {
	case *rsa.PublicKey:
		return []string{"RS256", "RS384", "RS512", "PS256", "PS384", "PS512"}
	case *ecdsa.PublicKey:
		return []string{"ES256", "ES384", "ES512"}
	case ed25519.PublicKey:
		return []string{"EdDSA"}
	}
	return nil
}

// Clone devuelve una copia sin el estado de parseo (para serializar).
func (k *SigningKey) Clone() *SigningKey {
	return &SigningKey{
		ID:        k.ID,
		Algorithm: k.Algorithm,
		PublicKey: k.PublicKey,
		State:     k.State,
		CreatedAt: k.CreatedAt,
		ExpiresAt: k.ExpiresAt,
	}
}

func (k *SigningKey) String() string {
	return fmt.Sprintf("key(id=%d, alg=%s, state=%s)", k.ID, k.Algorithm, k.State)
}

var errUnsupportedKey = errors.New("unsupported public key format")

func parsePublicKeyPEM(pem []byte) (crypto.PublicKey, error) {
	if pub, err := jwtv5.ParseRSAPublicKeyFromPEM(pem); err == nil {
		return pub, nil
	}
	if pub, err := jwtv5.ParseECPublicKeyFromPEM(pem); err == nil {
		return pub, nil
	}
	if pub, err := jwtv5.ParseEdPublicKeyFromPEM(pem); err == nil {
		return pub, nil
	}
	return nil, errUnsupportedKey
}

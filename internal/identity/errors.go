package identity

import (
	"fmt"

	"github.com/dropDatabas3/jwtvalidator/internal/claims"
)

// ClaimErrorKind es la causa de un fallo de clasificación.
type ClaimErrorKind int

const (
	MissingClaim ClaimErrorKind = iota + 1
	WrongClaimType
	RealmMismatch
)

func (k ClaimErrorKind) String() string {
	switch k {
	case MissingClaim:
		return "missingClaim"
	case WrongClaimType:
		return "wrongClaimType"
	case RealmMismatch:
		return "realmMismatch"
	}
	return "unknown"
}

// ClaimError describe por qué los claims no alcanzan para construir la identidad.
type ClaimError struct {
	Kind    ClaimErrorKind
	Claim   string // MissingClaim / WrongClaimType
	Value   any    // WrongClaimType
	Realm   string // RealmMismatch: realm esperado
	Type    Type   // contexto, si se conoce
	SubType string
}

func (e *ClaimError) Error() string {
	switch e.Kind {
	case WrongClaimType:
		return fmt.Sprintf("Expected claim '%s' to contain a string but received: %s", e.Claim, claims.FormatValue(e.Value))
	case RealmMismatch:
		label := string(e.Type)
		if e.SubType != "" {
			label += ":" + e.SubType
		}
		return fmt.Sprintf("%s: expected token to belong to the %q realm", label, e.Realm)
	default:
		prefix := ""
		if e.Type != "" {
			prefix = string(e.Type) + ": "
		}
		if e.SubType != "" {
			prefix += e.SubType + ": "
		}
		return fmt.Sprintf("%sexpected to find the %q claim in the JWT", prefix, e.Claim)
	}
}

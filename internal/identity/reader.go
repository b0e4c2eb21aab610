package identity

import (
	"errors"

	"github.com/dropDatabas3/jwtvalidator/internal/claims"
)

// reader lee claims string y guarda el primer error, para que los builders
// puedan leer varios campos seguidos y chequear una sola vez.
type reader struct {
	c   claims.Claims
	typ Type
	sub string
	err error
}

// lookup devuelve el claim y si estaba presente (no null). Un tipo distinto de
// string es WrongClaimType.
func (r *reader) lookup(name string) (string, bool) {
	if r.err != nil {
		return "", false
	}
	v, ok, err := r.c.OptionalString(name)
	if err != nil {
		var te *claims.TypeError
		if errors.As(err, &te) {
			r.err = &ClaimError{Kind: WrongClaimType, Claim: te.Claim, Value: te.Value}
		} else {
			r.err = err
		}
		return "", false
	}
	return v, ok
}

func (r *reader) optional(name string) string {
	v, _ := r.lookup(name)
	return v
}

// required exige un string no vacío.
func (r *reader) required(name string) string {
	v := r.optional(name)
	if v == "" && r.err == nil {
		r.err = &ClaimError{Kind: MissingClaim, Claim: name, Type: r.typ, SubType: r.sub}
	}
	return v
}

func (r *reader) hasNames() bool {
	name := r.optional(claims.Name)
	first := r.optional(claims.GivenName)
	last := r.optional(claims.FamilyName)
	return name != "" && first != "" && last != ""
}

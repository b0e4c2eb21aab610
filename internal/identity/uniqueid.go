package identity

import (
	"encoding/json"
	"fmt"

	"github.com/dropDatabas3/jwtvalidator/internal/claims"
)

// UniqueIDFormat define qué datos incluye un id único y cómo se serializa.
//
// Los ids opacos (oid, sub, aud) no se reutilizan pero cambian si se cambia de
// proveedor de identidad. Los legibles (userName, email, displayName) sobreviven
// a un cambio de proveedor pero pueden reasignarse. Los formatos URN agregan
// tipo, realm y entorno.
type UniqueIDFormat string

const (
	Opaque           UniqueIDFormat = "Opaque"
	OpaqueURN        UniqueIDFormat = "OpaqueURN"
	HumanReadable    UniqueIDFormat = "HumanReadable"
	HumanReadableURN UniqueIDFormat = "HumanReadableURN"
	VerboseURN       UniqueIDFormat = "VerboseURN"
)

// Formats lista los formatos soportados.
var Formats = []UniqueIDFormat{Opaque, OpaqueURN, HumanReadable, HumanReadableURN, VerboseURN}

// Tipos de URN.
const (
	URNTypeUser             = "user"
	URNTypeServicePrincipal = "sp"
)

// urnParts son los componentes de un URN. Los punteros distinguen ausente de
// vacío en el mensaje de error.
type urnParts struct {
	Type  string  `json:"type"`
	Realm string  `json:"realm"`
	Env   *string `json:"env,omitempty"`
	Name  *string `json:"name,omitempty"`
	ID    *string `json:"id,omitempty"`
}

// UniqueID construye el id único de la cuenta del token en el formato pedido.
// Si no se sabe cuál usar, HumanReadableURN es la opción por defecto razonable.
//
// Layout URN: urn:{user|sp}:{realm}:{env}:{name}[:{id}]
func UniqueID(c claims.Claims, format UniqueIDFormat) (string, error) {
	switch format {
	case Opaque:
		return raw(c, nil, ptr(opaqueID(c)))
	case OpaqueURN:
		return buildURN(c, nil, ptr(opaqueID(c)))
	case HumanReadable:
		return raw(c, ptr(humanReadableID(c)), nil)
	case HumanReadableURN:
		return buildURN(c, ptr(humanReadableID(c)), nil)
	case VerboseURN:
		return buildURN(c, ptr(humanReadableID(c)), ptr(opaqueID(c)))
	default:
		return "", fmt.Errorf("Unknown format '%s'", format)
	}
}

// ParseUniqueIDFormat valida un nombre de formato.
func ParseUniqueIDFormat(s string) (UniqueIDFormat, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("Unknown format '%s'", s)
}

func raw(c claims.Claims, name, id *string) (string, error) {
	p := newParts(c, name, id)
	if err := p.check(); err != nil {
		return "", err
	}
	if name != nil {
		return *name, nil
	}
	return *id, nil
}

func buildURN(c claims.Claims, name, id *string) (string, error) {
	p := newParts(c, name, id)
	if err := p.check(); err != nil {
		return "", err
	}
	components := []string{p.Type, p.Realm, deref(p.Env), deref(p.Name)}
	if p.ID != nil {
		components = append(components, *p.ID)
	}
	return "urn:" + JoinComponents(components...), nil
}

func newParts(c claims.Claims, name, id *string) urnParts {
	p := urnParts{
		Type:  URNTypeUser,
		Realm: c.String(claims.Realm),
		Name:  name,
		ID:    id,
	}
	if c.String(claims.UserType) == UserTypeClient {
		p.Type = URNTypeServicePrincipal
	}
	if env, ok := c[claims.Env].(string); ok {
		p.Env = &env
	}
	return p
}

func (p urnParts) check() error {
	if deref(p.Name) != "" || deref(p.ID) != "" {
		return nil
	}
	b, _ := json.Marshal(p)
	return fmt.Errorf("Expected to receive at least a name or an id but received: %s", b)
}

// opaqueID: aud para clientes, oid para empleados, sub para el resto.
func opaqueID(c claims.Claims) string {
	if c.String(claims.UserType) == UserTypeClient {
		return c.String(claims.Audience)
	}
	if oid := c.String(claims.OID); oid != "" && c.String(claims.Realm) == RealmEmployees {
		return oid
	}
	return c.String(claims.Subject)
}

// humanReadableID: userName, email, y para clientes displayName (solo realm
// employees) o aud. Si no hay nada, sub.
func humanReadableID(c claims.Claims) string {
	if v := c.String(claims.UserName); v != "" {
		return v
	}
	if v := c.String(claims.Email); v != "" {
		return v
	}
	if c.String(claims.UserType) == UserTypeClient {
		if v := c.String(claims.DisplayName); v != "" && c.String(claims.Realm) == RealmEmployees {
			return v
		}
		if v := c.String(claims.Audience); v != "" {
			return v
		}
	}
	return c.String(claims.Subject)
}

func ptr(s string) *string { return &s }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

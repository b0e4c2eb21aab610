// Package claims modela el payload decodificado de un JWT como una bolsa de
// claims con accesores tipados. Las invariantes por campo se validan más
// adelante (verificación de firma y clasificación de identidad).
package claims

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Nombres de claims conocidos.
const (
	AccessToken       = "accessToken"
	AccessTokenIssuer = "accessTokenIssuer"
	Issuer            = "iss"
	Audience          = "aud"
	Subject           = "sub"
	Expiration        = "exp"
	IssuedAt          = "iat"
	KeyID             = "keyId"
	Realm             = "realm"
	Env               = "env"
	OID               = "oid"
	UserType          = "userType"
	UserName          = "userName"
	DisplayName       = "displayName"
	Name              = "name"
	GivenName         = "givenName"
	FamilyName        = "familyName"
	Email             = "email"
	EmployeeNumber    = "employeeNumber"
	Department        = "department"
	MtlIdentityID     = "mtlIdentityId"
	IsGenericAccount  = "isGenericAccount"
)

// Claims es el payload de un token: claves string, valores escalares u opacos.
type Claims map[string]any

// TypeError indica que un claim existe pero no tiene el tipo esperado.
type TypeError struct {
	Claim string
	Value any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("Expected claim '%s' to contain a string but received: %s", e.Claim, FormatValue(e.Value))
}

// FormatValue muestra un valor JSON como texto plano: los números sin
// notación exponencial (100674051, no 1.00674051e+08) y las listas separadas
// por coma.
func FormatValue(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = FormatValue(e)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		return "[object Object]"
	}
	return fmt.Sprintf("%v", v)
}

// Has indica si el claim está presente y no es null.
func (c Claims) Has(name string) bool {
	v, ok := c[name]
	return ok && v != nil
}

// OptionalString devuelve el claim si es un string.
// Ausente o null devuelve ("", false, nil); cualquier otro tipo devuelve *TypeError.
func (c Claims) OptionalString(name string) (string, bool, error) {
	v, ok := c[name]
	if !ok || v == nil {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", false, &TypeError{Claim: name, Value: v}
	}
	return s, true, nil
}

// String devuelve el claim si es un string, o "" en cualquier otro caso.
func (c Claims) String(name string) string {
	s, _ := c[name].(string)
	return s
}

// Bool devuelve true solo si el claim es el booleano true.
func (c Claims) Bool(name string) bool {
	b, ok := c[name].(bool)
	return ok && b
}

// Number decodifica un claim numérico (acepta números y strings numéricos).
func (c Claims) Number(name string) (float64, bool) {
	v, ok := c[name]
	if !ok || v == nil {
		return 0, false
	}
	if _, isBool := v.(bool); isBool {
		return 0, false
	}
	var out float64
	if err := weakDecode(v, &out); err != nil {
		return 0, false
	}
	return out, true
}

// KeyIdentifier devuelve el keyId del token; debe ser un entero positivo.
// Se acepta tanto 25 como "25".
func (c Claims) KeyIdentifier() (int, bool) {
	f, ok := c.Number(KeyID)
	if !ok || f != math.Trunc(f) || f <= 0 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// IssuedAtTime devuelve el iat como time.Time.
func (c Claims) IssuedAtTime() (time.Time, bool) {
	f, ok := c.Number(IssuedAt)
	if !ok {
		return time.Time{}, false
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
}

// Clone devuelve una copia superficial.
func (c Claims) Clone() Claims {
	out := make(Claims, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

func weakDecode(input, result any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           result,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

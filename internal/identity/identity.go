// Package identity clasifica los claims de un token verificado en una identidad
// tipada (empleado, ciudadano, cuenta de servicio...) y construye sus ids únicos.
package identity

// Type es la variante de primer nivel de una Identity.
type Type string

const (
	TypeAnonymous      Type = "anonymous"
	TypeUser           Type = "user"
	TypeServiceAccount Type = "service-account"
	TypeUnknown        Type = "unknown"
)

// AttributesType es el subtipo de la identidad. Determina qué atributos están
// garantizados.
type AttributesType string

const (
	AttrAnonymous AttributesType = "anonymous"
	AttrCitizen   AttributesType = "citizen"
	AttrEmployee  AttributesType = "employee"
	AttrExternal  AttributesType = "external"
	AttrGeneric   AttributesType = "generic"
	AttrGuest     AttributesType = "guest"
	AttrUnknown   AttributesType = "unknown"
	AttrClient    AttributesType = "client" // service-account, client_credentials
	AttrUser      AttributesType = "user"   // service-account, password flow
)

// AccountProfile es el perfil elegido al loguearse por usuarios con varias
// cuentas (p.ej. un empleado con email del SPVM).
type AccountProfile string

const (
	ProfileVDM      AccountProfile = "vdm"
	ProfileVDMAdmin AccountProfile = "vdm-admin"
	ProfileSPVM     AccountProfile = "spvm"
)

// Attributes agrupa los atributos de todas las variantes. Qué campos vienen
// garantizados depende de Type; los demás quedan vacíos.
type Attributes struct {
	Type               AttributesType `json:"type"`
	Username           string         `json:"username,omitempty"`
	Email              string         `json:"email,omitempty"`
	FirstName          string         `json:"firstName,omitempty"`
	LastName           string         `json:"lastName,omitempty"`
	RegistrationNumber string         `json:"registrationNumber,omitempty"`
	Department         string         `json:"department,omitempty"`
	AccountProfile     AccountProfile `json:"accountProfile,omitempty"`
}

// Source indica de dónde viene la identidad y qué claim se usó como id.
type Source struct {
	Audience          string `json:"aud"`
	Issuer            string `json:"issuer"`
	AccessTokenIssuer string `json:"accessTokenIssuer,omitempty"`
	Env               string `json:"env,omitempty"`
	Realm             string `json:"realm"`
	Claim             string `json:"claim"`
	InternalID        string `json:"internalId"`
}

// Identity es el resultado de clasificar un token. Es un valor plano e inmutable.
type Identity struct {
	Type        Type       `json:"type"`
	ID          string     `json:"id"`
	DisplayName string     `json:"displayName"`
	Source      Source     `json:"source"`
	Attributes  Attributes `json:"attributes"`
}

// String devuelve Format(id).
func (id Identity) String() string {
	return Format(id)
}

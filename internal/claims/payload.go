package claims

import "github.com/mitchellh/mapstructure"

// Payload es la vista tipada de un token ya verificado.
// Los campos ausentes quedan en su valor cero.
type Payload struct {
	AccessToken       string `mapstructure:"accessToken" json:"accessToken"`
	AccessTokenIssuer string `mapstructure:"accessTokenIssuer" json:"accessTokenIssuer,omitempty"`
	Issuer            string `mapstructure:"iss" json:"iss"`
	Expiration        int64  `mapstructure:"exp" json:"exp"`
	IssuedAt          int64  `mapstructure:"iat" json:"iat"`
	KeyID             int    `mapstructure:"keyId" json:"keyId"`
	DisplayName       string `mapstructure:"displayName" json:"displayName,omitempty"`
	Audience          string `mapstructure:"aud" json:"aud"`
	Name              string `mapstructure:"name" json:"name,omitempty"`
	Subject           string `mapstructure:"sub" json:"sub"`
	OID               string `mapstructure:"oid" json:"oid,omitempty"`
	UserName          string `mapstructure:"userName" json:"userName,omitempty"`
	GivenName         string `mapstructure:"givenName" json:"givenName,omitempty"`
	FamilyName        string `mapstructure:"familyName" json:"familyName,omitempty"`
	UserType          string `mapstructure:"userType" json:"userType,omitempty"`
	Email             string `mapstructure:"email" json:"email,omitempty"`
	Realm             string `mapstructure:"realm" json:"realm,omitempty"`
	Env               string `mapstructure:"env" json:"env,omitempty"`
	IsGenericAccount  bool   `mapstructure:"isGenericAccount" json:"isGenericAccount,omitempty"`
	MtlIdentityID     string `mapstructure:"mtlIdentityId" json:"mtlIdentityId,omitempty"`
	EmployeeNumber    string `mapstructure:"employeeNumber" json:"employeeNumber,omitempty"`
	Department        string `mapstructure:"department" json:"department,omitempty"`
	PhoneNumber       string `mapstructure:"phoneNumber" json:"phoneNumber,omitempty"`
	PhoneMobileNumber string `mapstructure:"phoneMobileNumber" json:"phoneMobileNumber,omitempty"`
	CustomData        any    `mapstructure:"customData" json:"customData,omitempty"`

	// Extra guarda los claims que no tienen campo propio.
	Extra map[string]any `mapstructure:",remain" json:"-"`
}

// Decode convierte los claims en un Payload (decodificación tolerante:
// "25" se acepta como entero, 1720130328.0 como int64).
func (c Claims) Decode() (Payload, error) {
	var p Payload
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &p,
		TagName:          "mapstructure",
	})
	if err != nil {
		return Payload{}, err
	}
	if err := dec.Decode(map[string]any(c)); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// HasShape indica si el payload contiene los campos mínimos de un token emitido
// por el servicio de identidad.
func (c Claims) HasShape() bool {
	for _, name := range []string{AccessToken, Issuer, Expiration, IssuedAt, Subject, KeyID} {
		if _, ok := c[name]; !ok {
			return false
		}
	}
	return true
}

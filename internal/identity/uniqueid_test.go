package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/jwtvalidator/internal/claims"
	"github.com/dropDatabas3/jwtvalidator/internal/identity"
)

func uniqueIDClaims() claims.Claims {
	return claims.Claims{
		"accessToken":       "<redacted>",
		"iss":               tokenAPI,
		"exp":               1720130328.0,
		"iat":               1720124899.0,
		"keyId":             6.0,
		"displayName":       "infra-auth-auth-playground-dev",
		"aud":               "e5dd632b-cb97-48d7-a310-5147be717cde",
		"name":              "Morgan MARTINET",
		"sub":               "uuUOZLMFfuURgumF2hE2VLqLoDy8Z0ZIr5AeicCJSHQ",
		"oid":               "0b642a04-9cce-42dc-b456-1cbbc179cd72",
		"userName":          "umartw8",
		"givenName":         "Morgan",
		"familyName":        "MARTINET",
		"userType":          "employee",
		"employeeNumber":    "100175062",
		"department":        "421408000000",
		"realm":             "employees",
		"accessTokenIssuer": entraIssuer,
		"email":             "morgan.martinet@montreal.ca",
		"env":               "dev",
	}
}

func uniqueID(t *testing.T, c claims.Claims, f identity.UniqueIDFormat) string {
	t.Helper()
	s, err := identity.UniqueID(c, f)
	require.NoError(t, err)
	return s
}

func TestUniqueID_Formats(t *testing.T) {
	const (
		oid      = "0b642a04-9cce-42dc-b456-1cbbc179cd72"
		aud      = "e5dd632b-cb97-48d7-a310-5147be717cde"
		b2cAud   = "a496befa-db7d-45a6-ac7a-11471816b8f1"
		citizen  = "@!4025.CA62.9BB6.16C5!0001!2212.0010!0000!BEDB.3F39.4ADB.F74D"
		citEmail = "morgan.japon@mailinator.com"
	)
	employee := uniqueIDClaims()
	client := claims.Claims{
		"iss": tokenAPI, "aud": aud, "sub": "18e8a9b0", "oid": "18e8a9b0",
		"displayName": "infra-auth-auth-playground-dev", "userType": "client",
		"realm": "employees", "env": "dev",
	}
	b2cClient := with(client, "aud", b2cAud, "realm", "citizens")
	citizenClaims := claims.Claims{
		"iss": tokenAPI, "aud": b2cAud, "sub": citizen, "userType": "",
		"userName": citEmail, "email": citEmail, "realm": "citizens", "env": "dev",
		"oid": "7d69384b-dcf4-4972-ebb3-d546551c700f",
	}

	cases := []struct {
		name   string
		c      claims.Claims
		format identity.UniqueIDFormat
		want   string
	}{
		{"employee opaque", employee, identity.Opaque, oid},
		{"employee opaque urn", employee, identity.OpaqueURN, "urn:user:employees:dev::" + oid},
		{"employee human", employee, identity.HumanReadable, "umartw8"},
		{"employee human urn", employee, identity.HumanReadableURN, "urn:user:employees:dev:umartw8"},
		{"employee verbose", employee, identity.VerboseURN, "urn:user:employees:dev:umartw8:" + oid},

		{"citizen opaque urn", citizenClaims, identity.OpaqueURN, "urn:user:citizens:dev::" + citizen},
		{"citizen human urn", citizenClaims, identity.HumanReadableURN, "urn:user:citizens:dev:" + citEmail},
		{"citizen verbose", citizenClaims, identity.VerboseURN, "urn:user:citizens:dev:" + citEmail + ":" + citizen},

		{"client opaque", client, identity.Opaque, aud},
		{"client opaque urn", client, identity.OpaqueURN, "urn:sp:employees:dev::" + aud},
		{"client human", client, identity.HumanReadable, "infra-auth-auth-playground-dev"},
		{"client verbose", client, identity.VerboseURN, "urn:sp:employees:dev:infra-auth-auth-playground-dev:" + aud},

		{"b2c client human", b2cClient, identity.HumanReadable, b2cAud},
		{"b2c client verbose", b2cClient, identity.VerboseURN, "urn:sp:citizens:dev:" + b2cAud + ":" + b2cAud},

		{"missing env", with(employee, "env", nil), identity.OpaqueURN, "urn:user:employees:::" + oid},
		{"other env", with(employee, "env", "staging"), identity.OpaqueURN, "urn:user:employees:staging::" + oid},
		{"colon", with(employee, "userName", "foo:bar"), identity.HumanReadableURN, `urn:user:employees:dev:foo\:bar`},
		{"unknown realm uses sub", with(employee, "realm", "foobar"), identity.OpaqueURN, "urn:user:foobar:dev::uuUOZLMFfuURgumF2hE2VLqLoDy8Z0ZIr5AeicCJSHQ"},
		{"email fallback", with(employee, "userName", ""), identity.HumanReadableURN, "urn:user:employees:dev:morgan.martinet@montreal.ca"},
		{"sub fallback", with(employee, "oid", nil), identity.OpaqueURN, "urn:user:employees:dev::uuUOZLMFfuURgumF2hE2VLqLoDy8Z0ZIr5AeicCJSHQ"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, uniqueID(t, tc.c, tc.format))
		})
	}
}

// Un cliente sin oid usa el aud, nunca el sub.
func TestUniqueID_ClientPrefersAudience(t *testing.T) {
	c := claims.Claims{"aud": "the-app", "sub": "the-sub", "userType": "client", "realm": "employees"}
	assert.Equal(t, "the-app", uniqueID(t, c, identity.Opaque))
}

func TestUniqueID_NoNameNorID(t *testing.T) {
	c := with(uniqueIDClaims(), "sub", "", "userName", "", "email", "", "oid", nil)
	_, err := identity.UniqueID(c, identity.HumanReadableURN)
	require.EqualError(t, err,
		`Expected to receive at least a name or an id but received: {"type":"user","realm":"employees","env":"dev","name":""}`)

	_, err = identity.UniqueID(c, identity.Opaque)
	require.Error(t, err)
}

func TestUniqueID_UnknownFormat(t *testing.T) {
	_, err := identity.UniqueID(uniqueIDClaims(), "Fancy")
	require.EqualError(t, err, "Unknown format 'Fancy'")

	_, err = identity.ParseUniqueIDFormat("Fancy")
	require.Error(t, err)
	f, err := identity.ParseUniqueIDFormat("VerboseURN")
	require.NoError(t, err)
	assert.Equal(t, identity.VerboseURN, f)
}

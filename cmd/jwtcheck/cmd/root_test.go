package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/jwtvalidator/internal/jwt/jwttest"
)

func TestReadToken(t *testing.T) {
	tok, err := readToken(strings.NewReader("ignored"), []string{" abc "})
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	tok, err = readToken(strings.NewReader("xyz\n"), []string{"-"})
	require.NoError(t, err)
	assert.Equal(t, "xyz", tok)

	_, err = readToken(strings.NewReader("  "), nil)
	assert.Error(t, err)
}

func TestStripBearer(t *testing.T) {
	assert.Equal(t, "abc", stripBearer("Bearer abc"))
	assert.Equal(t, "abc", stripBearer("abc"))
}

func TestUniqueID_NoVerify(t *testing.T) {
	signer := jwttest.NewSigner(t, 3)
	c := jwttest.ValidClaims(time.Now())
	c["sub"] = "12345"
	c["userName"] = "john.doe"
	c["realm"] = "employees"
	tok := signer.Sign(t, c)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"uniqueid", "--no-verify", "--format", "HumanReadable", tok})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		noVerify = false
		uniqueIDFormat = ""
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "john.doe\n", out.String())
}

func TestClassify_ClaimsJSON(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(`{
		"iss": "security-identity-token-api",
		"aud": "a496befa-db7d-45a6-ac7a-11471816b8f1",
		"sub": "12345",
		"realm": "employees",
		"userType": "SomeUnknownType",
		"userName": "john.doe",
		"name": "John Doe",
		"email": "john.doe@mailinator.com"
	}`))
	rootCmd.SetArgs([]string{"classify", "--claims", "-o", "text"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		claimsJSON = false
		classifyFormat = "json"
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "user:unknown:john.doe:John Doe:john.doe@mailinator.com:::vdm\n", out.String())
}

func TestVerify_PayloadFromClaimsJSON(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(`{"sub":"12345","keyId":"25","iat":1720130328.0,"custom":"x"}`))
	rootCmd.SetArgs([]string{"verify", "--claims", "--payload"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		claimsJSON = false
		asPayload = false
	})

	require.NoError(t, rootCmd.Execute())
	var p struct {
		Subject  string `json:"sub"`
		KeyID    int    `json:"keyId"`
		IssuedAt int64  `json:"iat"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &p))
	assert.Equal(t, "12345", p.Subject)
	assert.Equal(t, 25, p.KeyID)
	assert.Equal(t, int64(1720130328), p.IssuedAt)
}

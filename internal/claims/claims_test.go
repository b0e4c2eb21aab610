package claims

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalString(t *testing.T) {
	c := Claims{"a": "x", "b": nil, "c": 42.0, "d": ""}

	v, ok, err := c.OptionalString("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	_, ok, err = c.OptionalString("b")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = c.OptionalString("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err = c.OptionalString("d")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, v)

	_, _, err = c.OptionalString("c")
	require.EqualError(t, err, "Expected claim 'c' to contain a string but received: 42")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "100674051", FormatValue(100674051.0))
	assert.Equal(t, "1.5", FormatValue(1.5))
	assert.Equal(t, "true", FormatValue(true))
	assert.Equal(t, "a,2", FormatValue([]any{"a", 2.0}))
	assert.Equal(t, "[object Object]", FormatValue(map[string]any{"k": "v"}))

	_, _, err := Claims{"n": 100674051.0}.OptionalString("n")
	require.EqualError(t, err, "Expected claim 'n' to contain a string but received: 100674051")
}

func TestKeyIdentifier(t *testing.T) {
	cases := []struct {
		v    any
		want int
		ok   bool
	}{
		{6.0, 6, true},
		{"25", 25, true},
		{int64(3), 3, true},
		{0.0, 0, false},
		{-1.0, 0, false},
		{2.5, 0, false},
		{"abc", 0, false},
		{true, 0, false},
		{nil, 0, false},
		{1e12, 0, false},
	}
	for _, tc := range cases {
		got, ok := Claims{KeyID: tc.v}.KeyIdentifier()
		assert.Equal(t, tc.ok, ok, "%v", tc.v)
		assert.Equal(t, tc.want, got, "%v", tc.v)
	}
}

func TestIssuedAtTime(t *testing.T) {
	at, ok := Claims{IssuedAt: 1720124899.0}.IssuedAtTime()
	require.True(t, ok)
	assert.Equal(t, time.Unix(1720124899, 0).UTC(), at)

	_, ok = Claims{}.IssuedAtTime()
	assert.False(t, ok)
}

func TestHasShape(t *testing.T) {
	c := Claims{
		AccessToken: "t", Issuer: "i", Expiration: 1.0, IssuedAt: 1.0, Subject: "s", KeyID: 1.0,
	}
	assert.True(t, c.HasShape())

	delete(c, KeyID)
	assert.False(t, c.HasShape())
}

func TestDecode(t *testing.T) {
	c := Claims{
		AccessToken: "t",
		Issuer:      "security-identity-token-api",
		Expiration:  1720130328.0,
		IssuedAt:    1720124899.0,
		KeyID:       "6",
		Subject:     "s",
		UserName:    "umartw8",
		"inum":      "",
	}
	p, err := c.Decode()
	require.NoError(t, err)
	assert.Equal(t, 6, p.KeyID)
	assert.Equal(t, int64(1720130328), p.Expiration)
	assert.Equal(t, "umartw8", p.UserName)
	assert.Contains(t, p.Extra, "inum")
}

func TestCloneIsIndependent(t *testing.T) {
	c := Claims{Subject: "a"}
	d := c.Clone()
	d[Subject] = "b"
	assert.Equal(t, "a", c.String(Subject))
}

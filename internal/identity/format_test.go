package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dropDatabas3/jwtvalidator/internal/identity"
)

func TestJoinAndSplitComponents(t *testing.T) {
	cases := [][]string{
		{"user", "employee", "udoejo3"},
		{"a:b", "c::d", ""},
		{`back\slash`, `\:`, `:\`},
		{""},
	}
	for _, parts := range cases {
		joined := identity.JoinComponents(parts...)
		assert.Equal(t, parts, identity.SplitComponents(joined), joined)
	}
	assert.Equal(t, `foo\:bar:x\\y`, identity.JoinComponents("foo:bar", `x\y`))
}

func TestFormat_EscapesEveryColon(t *testing.T) {
	id := identity.Identity{
		Type:        identity.TypeUnknown,
		ID:          "a:b:c",
		DisplayName: "John: Doe",
		Attributes:  identity.Attributes{Type: identity.AttrUnknown},
	}
	s := identity.Format(id)
	assert.Equal(t, `unknown:a\:b\:c:John\: Doe`, s)
	assert.Equal(t, []string{"unknown", "a:b:c", "John: Doe"}, identity.SplitComponents(s))
}

func TestFormat_MissingFieldsAreEmpty(t *testing.T) {
	id := identity.Identity{
		Type:        identity.TypeUser,
		ID:          "jdoe",
		DisplayName: "jdoe",
		Attributes:  identity.Attributes{Type: identity.AttrUnknown, AccountProfile: identity.ProfileVDM},
	}
	assert.Equal(t, "user:unknown:jdoe:jdoe:::vdm", id.String())
}

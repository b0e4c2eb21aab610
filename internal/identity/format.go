package identity

import "strings"

var componentEscaper = strings.NewReplacer(`\`, `\\`, `:`, `\:`)

// EscapeComponent escapa ":" y "\" para poder unir componentes con ":" sin
// ambigüedad.
func EscapeComponent(s string) string {
	return componentEscaper.Replace(s)
}

// JoinComponents escapa cada componente y los une con ":".
func JoinComponents(components ...string) string {
	out := make([]string, len(components))
	for i, c := range components {
		out[i] = EscapeComponent(c)
	}
	return strings.Join(out, ":")
}

// SplitComponents es la inversa de JoinComponents.
func SplitComponents(s string) []string {
	var (
		out     []string
		cur     strings.Builder
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ':':
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(out, cur.String())
}

// Format devuelve la representación de la identidad para auditoría y logs,
// p.ej. "user:employee:udoejo3:John DOE:john.doe@montreal.ca:100674051:421408000000:vdm".
// Los campos dependen de la variante; los ausentes quedan vacíos.
func Format(id Identity) string {
	a := id.Attributes
	switch id.Type {
	case TypeAnonymous, TypeUnknown:
		return JoinComponents(string(id.Type), id.ID, id.DisplayName)
	case TypeServiceAccount:
		return JoinComponents(string(id.Type), string(a.Type), id.ID, id.DisplayName)
	case TypeUser:
		switch a.Type {
		case AttrCitizen:
			return JoinComponents(string(id.Type), string(a.Type), id.ID, id.DisplayName, a.Email)
		case AttrEmployee:
			return JoinComponents(string(id.Type), string(a.Type), id.ID, id.DisplayName,
				a.Email, a.RegistrationNumber, a.Department, string(a.AccountProfile))
		case AttrGuest:
			return JoinComponents(string(id.Type), string(a.Type), id.Source.Realm, id.ID, id.DisplayName, a.Email)
		default:
			return JoinComponents(string(id.Type), string(a.Type), id.ID, id.DisplayName,
				a.Email, a.Department, string(a.AccountProfile))
		}
	}
	return JoinComponents(string(id.Type), id.ID, id.DisplayName)
}

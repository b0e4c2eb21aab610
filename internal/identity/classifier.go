package identity

import (
	"errors"
	"strings"

	"github.com/dropDatabas3/jwtvalidator/internal/claims"
	"github.com/dropDatabas3/jwtvalidator/internal/metrics"
)

// Valores de userType emitidos por el servicio de identidad.
const (
	UserTypeAnonymous      = "anonymous"
	UserTypeClient         = "client"
	UserTypeServiceAccount = "serviceAccount"
	UserTypeCitizen        = "citizen"
	UserTypeEmployee       = "employee"
)

// Realms conocidos.
const (
	RealmAnonymous = "anonymous"
	RealmCitizens  = "citizens"
	RealmEmployees = "employees"
)

// Sufijos de userName de los invitados del tenant.
var guestSuffixes = []string{
	"#EXT#@lavilledemontreal.omnicrosoft.com",
	"#EXT#@MontrealVille.onmicrosoft.com",
}

// input es lo que todas las reglas necesitan: los claims y los campos comunes
// ya validados.
type input struct {
	c        claims.Claims
	userType string
	source   Source // Claim e InternalID los completa cada regla
	oid      string
}

func (in *input) internalID() string {
	if in.oid != "" {
		return in.oid
	}
	return in.source.InternalID
}

// rule es un paso de la clasificación. La primera que matchea construye la
// identidad; el orden importa.
type rule struct {
	name  string
	match func(in *input) (bool, error)
	build func(in *input) (Identity, error)
}

var rules = []rule{
	{"anonymous", userTypeIs(UserTypeAnonymous), buildAnonymous},
	{"service-account/client", userTypeIs(UserTypeClient), buildClient},
	{"service-account/user", userTypeIs(UserTypeServiceAccount), buildServiceUser},
	{"citizen", userTypeIs(UserTypeCitizen), buildCitizen},
	{"generic", isGeneric, buildGeneric},
	{"employee", both(userTypeIs(UserTypeEmployee), isEmployee), buildEmployee},
	{"external", both(userTypeIs(UserTypeEmployee), isExternal), buildExternal},
	{"guest", isGuest, buildGuest},
	{"unknown-user", hasUserNameOrEmail, buildUnknownUser},
	{"unknown", func(*input) (bool, error) { return true, nil }, buildUnknown},
}

// Classify construye la identidad a partir de los claims de un token ya
// verificado. Es determinística: mismos claims, misma identidad.
func Classify(c claims.Claims) (Identity, error) {
	if c == nil {
		return Identity{}, &ClaimError{Kind: MissingClaim, Claim: claims.Issuer}
	}
	in, err := newInput(c)
	if err != nil {
		return Identity{}, err
	}
	for _, r := range rules {
		ok, err := r.match(in)
		if err != nil {
			return Identity{}, err
		}
		if !ok {
			continue
		}
		id, err := r.build(in)
		if err != nil {
			return Identity{}, err
		}
		metrics.IdentityClassifiedTotal.WithLabelValues(string(id.Type), string(id.Attributes.Type)).Inc()
		return id, nil
	}
	// inalcanzable: la última regla siempre matchea
	return Identity{}, errors.New("identity: no rule matched")
}

func newInput(c claims.Claims) (*input, error) {
	r := reader{c: c}
	iss := r.required(claims.Issuer)
	realm := r.required(claims.Realm)
	aud := r.required(claims.Audience)
	sub := r.required(claims.Subject)
	oid := r.optional(claims.OID)
	env := r.optional(claims.Env)
	userType, hasUserType := r.lookup(claims.UserType)
	ati := r.optional(claims.AccessTokenIssuer)
	if r.err != nil {
		return nil, r.err
	}
	if !hasUserType {
		userType = UserTypeCitizen
	}
	return &input{
		c:        c,
		userType: userType,
		oid:      oid,
		source: Source{
			Audience:          aud,
			Issuer:            iss,
			AccessTokenIssuer: ati,
			Env:               env,
			Realm:             realm,
			InternalID:        sub,
		},
	}, nil
}

// ------------------------------------------------------------------
// Matchers
// ------------------------------------------------------------------

func userTypeIs(t string) func(*input) (bool, error) {
	return func(in *input) (bool, error) { return in.userType == t, nil }
}

func both(a, b func(*input) (bool, error)) func(*input) (bool, error) {
	return func(in *input) (bool, error) {
		ok, err := a(in)
		if err != nil || !ok {
			return false, err
		}
		return b(in)
	}
}

func isGeneric(in *input) (bool, error) {
	v, ok := in.c[claims.IsGenericAccount].(bool)
	return ok && v, nil
}

// isEmployee: código U, número de empleado, departamento y nombres completos.
// Sin userName no se mira ningún otro claim.
func isEmployee(in *input) (bool, error) {
	r := reader{c: in.c}
	username := r.optional(claims.UserName)
	if r.err != nil || username == "" {
		return false, r.err
	}
	employeeNumber := r.optional(claims.EmployeeNumber)
	department := r.optional(claims.Department)
	hasNames := r.hasNames()
	if r.err != nil {
		return false, r.err
	}
	return strings.HasPrefix(strings.ToLower(username), "u") &&
		employeeNumber != "" &&
		department != "" &&
		hasNames, nil
}

// isExternal: nombres completos y código X o email ".ext@".
func isExternal(in *input) (bool, error) {
	r := reader{c: in.c}
	username := r.optional(claims.UserName)
	if r.err != nil || username == "" {
		return false, r.err
	}
	if !r.hasNames() {
		return false, r.err
	}
	email := r.optional(claims.Email)
	if r.err != nil {
		return false, r.err
	}
	return strings.HasPrefix(strings.ToLower(username), "x") ||
		strings.Contains(strings.ToLower(email), ".ext@"), nil
}

// isGuest corta en el primer claim ausente: userName, email, name.
func isGuest(in *input) (bool, error) {
	r := reader{c: in.c}
	for _, name := range []string{claims.UserName, claims.Email, claims.Name} {
		if r.optional(name) == "" {
			return false, r.err
		}
	}
	username := in.c.String(claims.UserName)
	for _, s := range guestSuffixes {
		if strings.HasSuffix(username, s) {
			return true, nil
		}
	}
	return false, nil
}

func hasUserNameOrEmail(in *input) (bool, error) {
	r := reader{c: in.c}
	username := r.optional(claims.UserName)
	email := r.optional(claims.Email)
	return username != "" || email != "", r.err
}

// ------------------------------------------------------------------
// Builders
// ------------------------------------------------------------------

func buildAnonymous(in *input) (Identity, error) {
	if in.source.Realm != RealmAnonymous {
		return Identity{}, &ClaimError{Kind: RealmMismatch, Realm: RealmAnonymous, Type: TypeAnonymous}
	}
	r := reader{c: in.c, typ: TypeAnonymous}
	username := r.required(claims.UserName)
	name := r.required(claims.Name)
	if r.err != nil {
		return Identity{}, r.err
	}
	src := in.source
	src.Claim = claims.UserName
	return Identity{
		Type:        TypeAnonymous,
		ID:          username,
		DisplayName: name,
		Source:      src,
		Attributes:  Attributes{Type: AttrAnonymous, Username: username},
	}, nil
}

func buildClient(in *input) (Identity, error) {
	r := reader{c: in.c, typ: TypeServiceAccount, sub: string(AttrClient)}
	displayName := r.required(claims.DisplayName)
	if r.err != nil {
		return Identity{}, r.err
	}
	src := in.source
	src.Claim = claims.Audience
	src.InternalID = in.internalID()
	return Identity{
		Type:        TypeServiceAccount,
		ID:          src.Audience,
		DisplayName: displayName,
		Source:      src,
		Attributes:  Attributes{Type: AttrClient},
	}, nil
}

func buildServiceUser(in *input) (Identity, error) {
	r := reader{c: in.c, typ: TypeServiceAccount, sub: string(AttrUser)}
	username := r.required(claims.UserName)
	name := r.required(claims.Name)
	if r.err != nil {
		return Identity{}, r.err
	}
	src := in.source
	src.Claim = claims.UserName
	return Identity{
		Type:        TypeServiceAccount,
		ID:          username,
		DisplayName: name,
		Source:      src,
		Attributes:  Attributes{Type: AttrUser, Username: username},
	}, nil
}

func buildCitizen(in *input) (Identity, error) {
	if in.source.Realm != RealmCitizens {
		return Identity{}, &ClaimError{Kind: RealmMismatch, Realm: RealmCitizens, Type: TypeUser, SubType: string(AttrCitizen)}
	}
	r := reader{c: in.c, typ: TypeUser, sub: string(AttrCitizen)}
	id := r.required(claims.MtlIdentityID)
	name := r.required(claims.Name)
	attrs := Attributes{
		Type:      AttrCitizen,
		Username:  r.required(claims.UserName),
		Email:     r.required(claims.Email),
		FirstName: r.required(claims.GivenName),
		LastName:  r.required(claims.FamilyName),
	}
	if r.err != nil {
		return Identity{}, r.err
	}
	return in.user(id, name, claims.MtlIdentityID, attrs), nil
}

func buildGeneric(in *input) (Identity, error) {
	r := reader{c: in.c, typ: TypeUser, sub: "generic-user"}
	username := r.required(claims.UserName)
	name := r.required(claims.Name)
	attrs := Attributes{
		Type:       AttrGeneric,
		Username:   username,
		Email:      r.optional(claims.Email),
		Department: r.optional(claims.Department),
		FirstName:  r.required(claims.GivenName),
		LastName:   r.required(claims.FamilyName),
	}
	if r.err != nil {
		return Identity{}, r.err
	}
	attrs.AccountProfile = accountProfile(attrs.Email)
	return in.user(username, name, claims.UserName, attrs), nil
}

func buildEmployee(in *input) (Identity, error) {
	if in.source.Realm != RealmEmployees {
		return Identity{}, &ClaimError{Kind: RealmMismatch, Realm: RealmEmployees, Type: TypeUser, SubType: string(AttrEmployee)}
	}
	r := reader{c: in.c, typ: TypeUser, sub: string(AttrEmployee)}
	username := r.required(claims.UserName)
	name := r.required(claims.Name)
	attrs := Attributes{
		Type:               AttrEmployee,
		Email:              r.required(claims.Email),
		Username:           username,
		RegistrationNumber: r.required(claims.EmployeeNumber),
		Department:         r.required(claims.Department),
		FirstName:          r.required(claims.GivenName),
		LastName:           r.required(claims.FamilyName),
	}
	if r.err != nil {
		return Identity{}, r.err
	}
	attrs.AccountProfile = accountProfile(attrs.Email)
	return in.user(username, name, claims.UserName, attrs), nil
}

func buildExternal(in *input) (Identity, error) {
	if in.source.Realm != RealmEmployees {
		return Identity{}, &ClaimError{Kind: RealmMismatch, Realm: RealmEmployees, Type: TypeUser, SubType: string(AttrExternal)}
	}
	r := reader{c: in.c, typ: TypeUser, sub: string(AttrExternal)}
	username := r.required(claims.UserName)
	name := r.required(claims.Name)
	attrs := Attributes{
		Type:       AttrExternal,
		Email:      r.optional(claims.Email),
		Username:   username,
		Department: r.optional(claims.Department),
		FirstName:  r.required(claims.GivenName),
		LastName:   r.required(claims.FamilyName),
	}
	if r.err != nil {
		return Identity{}, r.err
	}
	attrs.AccountProfile = accountProfile(attrs.Email)
	return in.user(username, name, claims.UserName, attrs), nil
}

func buildGuest(in *input) (Identity, error) {
	r := reader{c: in.c, typ: TypeUser, sub: "guest-user"}
	username := r.required(claims.UserName)
	name := r.required(claims.Name)
	attrs := Attributes{
		Type:       AttrGuest,
		Email:      r.required(claims.Email),
		Username:   username,
		Department: r.optional(claims.Department),
		FirstName:  r.optional(claims.GivenName),
		LastName:   r.optional(claims.FamilyName),
	}
	if r.err != nil {
		return Identity{}, r.err
	}
	attrs.AccountProfile = accountProfile(attrs.Email)
	return in.user(username, name, claims.UserName, attrs), nil
}

func buildUnknownUser(in *input) (Identity, error) {
	r := reader{c: in.c, typ: TypeUser, sub: string(AttrUnknown)}
	username := r.optional(claims.UserName)
	email := r.optional(claims.Email)
	claim := claims.UserName
	if username == "" {
		claim = claims.Email
	}
	id := r.required(claim)
	displayName, hasName := r.lookup(claims.Name)
	attrs := Attributes{
		Type:       AttrUnknown,
		Email:      email,
		Username:   username,
		Department: r.optional(claims.Department),
		FirstName:  r.optional(claims.GivenName),
		LastName:   r.optional(claims.FamilyName),
	}
	if r.err != nil {
		return Identity{}, r.err
	}
	if !hasName {
		displayName = firstNonEmpty(email, username)
	}
	attrs.AccountProfile = accountProfile(email)
	return in.user(id, displayName, claim, attrs), nil
}

func buildUnknown(in *input) (Identity, error) {
	r := reader{c: in.c}
	displayName, hasName := r.lookup(claims.Name)
	username := r.optional(claims.UserName)
	if r.err != nil {
		return Identity{}, r.err
	}
	if !hasName {
		displayName = "unknown"
	}
	src := in.source
	src.Claim = claims.Subject
	if username != "" {
		src.Claim = claims.UserName
	}
	sub := src.InternalID
	src.InternalID = in.internalID()
	return Identity{
		Type:        TypeUnknown,
		ID:          sub,
		DisplayName: displayName,
		Source:      src,
		Attributes:  Attributes{Type: AttrUnknown},
	}, nil
}

// user arma una identidad de tipo user; internalId es oid ?? sub.
func (in *input) user(id, displayName, claim string, attrs Attributes) Identity {
	src := in.source
	src.Claim = claim
	src.InternalID = in.internalID()
	return Identity{
		Type:        TypeUser,
		ID:          id,
		DisplayName: displayName,
		Source:      src,
		Attributes:  attrs,
	}
}

// accountProfile deduce el perfil a partir del email.
func accountProfile(email string) AccountProfile {
	switch {
	case email == "":
		return ProfileVDM
	case strings.HasSuffix(email, "@spvm.qc.ca"):
		return ProfileSPVM
	case strings.HasSuffix(email, ".adm@lavilledemontreal.omnicrosoft.com"),
		strings.HasSuffix(strings.ToLower(email), ".adm@montrealville.omnicrosoft.com"):
		return ProfileVDMAdmin
	}
	return ProfileVDM
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

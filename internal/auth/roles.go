package auth

import (
	"sort"
	"strings"
)

type Role string

const (
	RoleMoviesAdmin   Role = "MOVIES_ADMIN"
	RoleMoviesManager Role = "MOVIES_MANAGER"
	RoleMoviesUser    Role = "MOVIES_USER"
	RoleUser          Role = "USER"
)

// Roles is a set of roles. A nil Roles means no credential was presented.
type Roles map[Role]struct{}

func NewRoles(roles ...Role) Roles {
	out := make(Roles, len(roles))
	for _, r := range roles {
		if r != "" {
			out[r] = struct{}{}
		}
	}
	return out
}

// ParseRoles reads a comma separated role list. Blank entries are skipped.
func ParseRoles(csv string) Roles {
	out := Roles{}
	for _, part := range strings.Split(csv, ",") {
		if r := strings.TrimSpace(part); r != "" {
			out[Role(r)] = struct{}{}
		}
	}
	return out
}

func (rs Roles) Has(r Role) bool {
	_, ok := rs[r]
	return ok
}

func (rs Roles) Add(roles ...string) {
	for _, r := range roles {
		if r != "" {
			rs[Role(r)] = struct{}{}
		}
	}
}

// Sorted returns the roles in lexical order.
func (rs Roles) Sorted() []Role {
	out := make([]Role, 0, len(rs))
	for r := range rs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (rs Roles) String() string {
	sorted := rs.Sorted()
	parts := make([]string, len(sorted))
	for i, r := range sorted {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}

type Decision bool

const (
	Deny  Decision = false
	Allow Decision = true
)

func (d Decision) String() string {
	if d {
		return "allow"
	}
	return "deny"
}

// Authorize allows when presented holds at least one of the required roles.
// A nil presented set (no credential) is always denied.
func Authorize(required, presented Roles) Decision {
	if presented == nil {
		return Deny
	}
	for r := range required {
		if presented.Has(r) {
			return Allow
		}
	}
	return Deny
}

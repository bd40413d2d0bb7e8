package models

// Role is the marketplace role a user registers with
type Role string

// Known roles
const (
	RoleSeller Role = "seller"
	RoleBuyer  Role = "buyer"
)

// ParseRole converts a raw role string into a Role, reporting whether it is known
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleSeller, RoleBuyer:
		return true
	}
	return false
}

// RoleSet is an allow-set of roles used by route gates
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from the given roles
func NewRoleSet(roles ...Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

// Contains reports whether r is in the set
func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

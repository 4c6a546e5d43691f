package models

import "strings"

type Role string

const (
	RoleDirector  Role = "director"
	RoleTreasurer Role = "treasurer"
)

func (r Role) IsValid() bool {
	return r == RoleDirector || r == RoleTreasurer
}

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.IsValid()
}

// Principal is the authenticated actor behind an operation.
type Principal struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Name     string `json:"name,omitempty"`
}

func (p Principal) IsDirector() bool { return p.Role == RoleDirector }

func (p Principal) Valid() bool {
	return strings.TrimSpace(p.Username) != "" && p.Role.IsValid()
}

package model

import "strings"

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
	RoleCarrier  Role = "CARRIER"
)

// ParseRole is the single normalization point for role strings. Seed data and
// older tokens carry mixed-case roles, so everything entering the system goes
// through here.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleCustomer:
		return RoleCustomer, true
	case RoleCarrier:
		return RoleCarrier, true
	default:
		return "", false
	}
}

// Principal is the authenticated caller as resolved by the identity boundary.
// Services receive it explicitly; nothing below the HTTP layer reads request
// state.
type Principal struct {
	UserID   uint
	Role     Role
	Approved bool
	Active   bool
}

func (p Principal) IsAdmin() bool    { return p.Role == RoleAdmin }
func (p Principal) IsCustomer() bool { return p.Role == RoleCustomer }
func (p Principal) IsCarrier() bool  { return p.Role == RoleCarrier }

// Package authz is the single place that decides whether a caller may use a route.
package authz

import "github.com/Skotchmaster/restaurant_pos/internal/models"

type Result int

const (
	Authorized Result = iota
	Unauthenticated
	Forbidden
)

func (r Result) String() string {
	switch r {
	case Authorized:
		return "authorized"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// RoleAny accepts every signed-in staff member.
const RoleAny models.Role = ""

// Principal is the resolved caller handed to the core.
type Principal struct {
	UserID    uint
	Role      models.Role
	SessionID string
}

func Check(p *Principal, required models.Role) Result {
	if p == nil || p.UserID == 0 || !p.Role.Valid() {
		return Unauthenticated
	}
	if required == RoleAny || p.Role == required {
		return Authorized
	}
	return Forbidden
}

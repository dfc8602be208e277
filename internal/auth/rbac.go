package auth

import "helpdesk/internal/domain"

// AllowSet is a set of roles permitted to call an operation.
type AllowSet uint8

const (
	AllowClient AllowSet = 1 << iota
	AllowAgent
	AllowAdmin

	AllowStaff  = AllowAdmin | AllowAgent
	AllowAnyone = AllowAdmin | AllowAgent | AllowClient
)

func roleBit(r domain.Role) AllowSet {
	switch r {
	case domain.RoleClient:
		return AllowClient
	case domain.RoleAgent:
		return AllowAgent
	case domain.RoleAdmin:
		return AllowAdmin
	}
	return 0
}

// Has reports whether r is in the set. There is no role hierarchy.
func (s AllowSet) Has(r domain.Role) bool {
	bit := roleBit(r)
	return bit != 0 && s&bit != 0
}

// Allow checks p against set.
func Allow(p domain.Principal, set AllowSet) error {
	if p.IsZero() {
		return domain.UnauthorizedError{Msg: "authentication required", Module: domain.ModuleAuth}
	}
	if !set.Has(p.Role) {
		return domain.ForbiddenError{Msg: "you do not have permission to perform this action", Module: domain.ModuleAuth}
	}
	return nil
}

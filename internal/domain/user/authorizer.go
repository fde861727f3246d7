package user

// Authorizer classifies roles as leave approvers. The role set comes from
// configuration; by default HR and Leaders may approve.
type Authorizer struct {
	approvers map[Role]struct{}
}

func NewAuthorizer(roles []Role) *Authorizer {
	approvers := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		approvers[r] = struct{}{}
	}
	return &Authorizer{approvers: approvers}
}

// IsApprover reports whether the role may decide leave requests and set
// balances. Pure predicate, no side effects.
func (a *Authorizer) IsApprover(role Role) bool {
	_, ok := a.approvers[role]
	return ok
}

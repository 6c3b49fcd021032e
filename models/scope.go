package models

// ActorScope is the resolved authorization context of the caller.
// It is computed once per request from the JWT claims (or a User row)
// and passed explicitly into every service call; there is no
// process-global notion of "the current user".
type ActorScope struct {
	UserID    uint `json:"user_id"`
	Role      Role `json:"role"`
	CompanyID uint `json:"company_id"` // home company; admins keep one for record-keeping
}

// IsAdmin reports whether the actor has cross-company scope.
func (s *ActorScope) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// IsManager reports whether the actor manages their own company.
func (s *ActorScope) IsManager() bool {
	return s.Role == RoleManager
}

// CanViewCompany reports whether the actor may read records of the given company.
func (s *ActorScope) CanViewCompany(companyID uint) bool {
	if s.IsAdmin() {
		return true
	}
	return s.CompanyID == companyID
}

// CanManageCompany reports whether the actor may mutate records of the given
// company. Plain users never can, managers only within their own company.
func (s *ActorScope) CanManageCompany(companyID uint) bool {
	if s.IsAdmin() {
		return true
	}
	return s.IsManager() && s.CompanyID == companyID
}

// CanActOnUser reports whether the actor may read user-scoped data of the
// given user: themselves, or anyone their management scope covers.
func (s *ActorScope) CanActOnUser(u *User) bool {
	if s.UserID == u.ID {
		return true
	}
	return s.CanManageCompany(u.CompanyID)
}

// CanGrantRole reports whether the actor may create or elevate a user to the
// given role. Managers may never hand out admin.
func (s *ActorScope) CanGrantRole(r Role) bool {
	if s.IsAdmin() {
		return true
	}
	return s.IsManager() && r != RoleAdmin
}

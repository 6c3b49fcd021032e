package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeCompanyVisibility(t *testing.T) {
	admin := &ActorScope{UserID: 1, Role: RoleAdmin, CompanyID: 1}
	manager := &ActorScope{UserID: 2, Role: RoleManager, CompanyID: 2}
	user := &ActorScope{UserID: 3, Role: RoleUser, CompanyID: 2}

	// Admins cross company boundaries, everyone else stays home.
	assert.True(t, admin.CanViewCompany(99))
	assert.True(t, admin.CanManageCompany(99))

	assert.True(t, manager.CanViewCompany(2))
	assert.True(t, manager.CanManageCompany(2))
	assert.False(t, manager.CanViewCompany(3))
	assert.False(t, manager.CanManageCompany(3))

	assert.True(t, user.CanViewCompany(2))
	assert.False(t, user.CanManageCompany(2))
}

func TestScopeRoleGrants(t *testing.T) {
	admin := &ActorScope{Role: RoleAdmin}
	manager := &ActorScope{Role: RoleManager}
	user := &ActorScope{Role: RoleUser}

	assert.True(t, admin.CanGrantRole(RoleAdmin))
	assert.True(t, manager.CanGrantRole(RoleManager))
	assert.True(t, manager.CanGrantRole(RoleUser))
	assert.False(t, manager.CanGrantRole(RoleAdmin))
	assert.False(t, user.CanGrantRole(RoleUser))
}

func TestScopeCanActOnUser(t *testing.T) {
	manager := &ActorScope{UserID: 2, Role: RoleManager, CompanyID: 2}
	target := &User{BaseModel: BaseModel{ID: 5}, CompanyID: 2}
	foreign := &User{BaseModel: BaseModel{ID: 6}, CompanyID: 3}

	assert.True(t, manager.CanActOnUser(target))
	assert.False(t, manager.CanActOnUser(foreign))

	self := &ActorScope{UserID: 6, Role: RoleUser, CompanyID: 3}
	assert.True(t, self.CanActOnUser(foreign))
}

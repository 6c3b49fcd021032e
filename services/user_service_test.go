package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenhouse-http-service/models"
)

func TestCreateUserRoleGrants(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db, testConfig(), nil)

	company := seedCompany(t, db, "GH001")
	manager := seedUser(t, db, company.ID, models.RoleManager, "manager@gh001.test")
	admin := seedUser(t, db, company.ID, models.RoleAdmin, "admin@platform.test")

	// Managers may create users and managers in their own company.
	err := svc.CreateUser(scopeFor(manager), &models.User{
		Name: "Alice", Email: "alice@gh001.test", Password: "secret123",
		CompanyID: company.ID, Role: models.RoleUser,
	})
	require.NoError(t, err)

	// But never admins.
	err = svc.CreateUser(scopeFor(manager), &models.User{
		Name: "Eve", Email: "eve@gh001.test", Password: "secret123",
		CompanyID: company.ID, Role: models.RoleAdmin,
	})
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Admins may.
	err = svc.CreateUser(scopeFor(admin), &models.User{
		Name: "Root", Email: "root@platform.test", Password: "secret123",
		CompanyID: company.ID, Role: models.RoleAdmin,
	})
	require.NoError(t, err)
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db, testConfig(), nil)

	company := seedCompany(t, db, "GH001")
	manager := seedUser(t, db, company.ID, models.RoleManager, "manager@gh001.test")

	err := svc.CreateUser(scopeFor(manager), &models.User{
		Name: "Dup", Email: "manager@gh001.test", Password: "secret123",
		CompanyID: company.ID, Role: models.RoleUser,
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateUserHashesPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db, testConfig(), nil)

	company := seedCompany(t, db, "GH001")
	manager := seedUser(t, db, company.ID, models.RoleManager, "manager@gh001.test")

	user := &models.User{
		Name: "Alice", Email: "alice@gh001.test", Password: "secret123",
		CompanyID: company.ID, Role: models.RoleUser,
	}
	require.NoError(t, svc.CreateUser(scopeFor(manager), user))

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.NotEqual(t, "secret123", stored.Password)
	assert.True(t, models.CheckPasswordHash("secret123", stored.Password))
}

func TestGetAllUsersIsRoleScoped(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db, testConfig(), nil)

	companyA := seedCompany(t, db, "GH001")
	companyB := seedCompany(t, db, "GH002")
	admin := seedUser(t, db, companyA.ID, models.RoleAdmin, "admin@platform.test")
	manager := seedUser(t, db, companyA.ID, models.RoleManager, "manager@gh001.test")
	alice := seedUser(t, db, companyA.ID, models.RoleUser, "alice@gh001.test")
	seedUser(t, db, companyB.ID, models.RoleUser, "bob@gh002.test")

	_, total, err := svc.GetAllUsers(scopeFor(admin), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	_, total, err = svc.GetAllUsers(scopeFor(manager), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	mine, total, err := svc.GetAllUsers(scopeFor(alice), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, mine, 1)
	assert.Equal(t, alice.ID, mine[0].ID)
}

func TestUpdateUserCompanyMoveIsValidatedBeforeWriting(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db, testConfig(), nil)

	companyA := seedCompany(t, db, "GH001")
	companyB := seedCompany(t, db, "GH002")
	admin := seedUser(t, db, companyA.ID, models.RoleAdmin, "admin@platform.test")
	manager := seedUser(t, db, companyA.ID, models.RoleManager, "manager@gh001.test")
	alice := seedUser(t, db, companyA.ID, models.RoleUser, "alice@gh001.test")

	// A manager cannot push a user into a company they do not manage,
	// and the rejected call must leave the row untouched.
	_, err := svc.UpdateUser(scopeFor(manager), alice.ID, map[string]interface{}{
		"name":       "Moved",
		"company_id": companyB.ID,
	})
	assert.ErrorIs(t, err, ErrUnauthorized)

	var stored models.User
	require.NoError(t, db.First(&stored, alice.ID).Error)
	assert.Equal(t, companyA.ID, stored.CompanyID)
	assert.NotEqual(t, "Moved", stored.Name)

	// A move to a company that does not exist is refused too.
	_, err = svc.UpdateUser(scopeFor(admin), alice.ID, map[string]interface{}{
		"company_id": uint(999),
	})
	assert.ErrorIs(t, err, ErrNotFound)

	// Admins move users across companies, including via the float64
	// values a decoded JSON body carries.
	updated, err := svc.UpdateUser(scopeFor(admin), alice.ID, map[string]interface{}{
		"company_id": float64(companyB.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, companyB.ID, updated.CompanyID)
}

func TestDeleteUserDeactivatesWhenAssigned(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserService(db, testConfig(), nil)
	assignments := NewAssignmentService(db, testConfig())

	company := seedCompany(t, db, "GH001")
	manager := seedUser(t, db, company.ID, models.RoleManager, "manager@gh001.test")
	alice := seedUser(t, db, company.ID, models.RoleUser, "alice@gh001.test")
	device := seedDevice(t, db, company.ID, "DEV001")

	scope := scopeFor(manager)
	_, err := assignments.Assign(scope, device.ID, alice.ID, models.AccessRead)
	require.NoError(t, err)

	require.NoError(t, users.DeleteUser(scope, alice.ID))

	var stored models.User
	require.NoError(t, db.First(&stored, alice.ID).Error)
	assert.False(t, stored.IsActive)

	// Without assignments the row goes away for real.
	require.NoError(t, assignments.Unassign(scope, device.ID, alice.ID))
	require.NoError(t, users.DeleteUser(scope, alice.ID))
	err = db.First(&stored, alice.ID).Error
	assert.Error(t, err)
}

func TestDeleteUserBlocksSelfDelete(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db, testConfig(), nil)

	company := seedCompany(t, db, "GH001")
	manager := seedUser(t, db, company.ID, models.RoleManager, "manager@gh001.test")

	assert.ErrorIs(t, svc.DeleteUser(scopeFor(manager), manager.ID), ErrValidation)
}

func TestGetDevicesForUserSelfOrManagerRule(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserService(db, testConfig(), nil)
	assignments := NewAssignmentService(db, testConfig())

	company := seedCompany(t, db, "GH001")
	manager := seedUser(t, db, company.ID, models.RoleManager, "manager@gh001.test")
	alice := seedUser(t, db, company.ID, models.RoleUser, "alice@gh001.test")
	bob := seedUser(t, db, company.ID, models.RoleUser, "bob@gh001.test")

	devA := seedDevice(t, db, company.ID, "DEV001")
	seedDevice(t, db, company.ID, "DEV002")

	scope := scopeFor(manager)
	_, err := assignments.Assign(scope, devA.ID, alice.ID, models.AccessRead)
	require.NoError(t, err)

	// Alice sees her own assigned devices.
	devices, err := users.GetDevicesForUser(scopeFor(alice), alice.ID)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, devA.ID, devices[0].ID)

	// Bob may not ask about Alice.
	_, err = users.GetDevicesForUser(scopeFor(bob), alice.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// The manager may, and sees the whole company when asking about
	// themselves.
	devices, err = users.GetDevicesForUser(scope, alice.ID)
	require.NoError(t, err)
	assert.Len(t, devices, 1)

	devices, err = users.GetDevicesForUser(scope, manager.ID)
	require.NoError(t, err)
	assert.Len(t, devices, 2)
}

package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenhouse-http-service/models"
)

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig(), nil)

	company := seedCompany(t, db, "GH001")
	seedUser(t, db, company.ID, models.RoleManager, "manager@gh001.test")

	user, err := svc.Login("manager@gh001.test", "secret123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, user.Role)

	// Wrong password and unknown email fail identically.
	_, badPassword := svc.Login("manager@gh001.test", "wrong")
	_, badEmail := svc.Login("nobody@gh001.test", "secret123")
	assert.ErrorIs(t, badPassword, ErrUnauthorized)
	assert.ErrorIs(t, badEmail, ErrUnauthorized)
	assert.Equal(t, badPassword.Error(), badEmail.Error())
}

func TestLoginRejectsInactiveAccounts(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig(), nil)

	company := seedCompany(t, db, "GH001")
	user := seedUser(t, db, company.ID, models.RoleUser, "alice@gh001.test")
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, err := svc.Login("alice@gh001.test", "secret123")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestScopeForUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig(), nil)

	company := seedCompany(t, db, "GH001")
	user := seedUser(t, db, company.ID, models.RoleManager, "manager@gh001.test")

	scope, err := svc.ScopeForUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, scope.UserID)
	assert.Equal(t, models.RoleManager, scope.Role)
	assert.Equal(t, company.ID, scope.CompanyID)

	_, err = svc.ScopeForUser(9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

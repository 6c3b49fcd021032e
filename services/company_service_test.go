package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenhouse-http-service/models"
)

func TestCreateCompanyAdminOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCompanyService(db, testConfig())

	home := seedCompany(t, db, "PLATFORM")
	admin := seedUser(t, db, home.ID, models.RoleAdmin, "admin@platform.test")
	manager := seedUser(t, db, home.ID, models.RoleManager, "manager@platform.test")

	err := svc.CreateCompany(scopeFor(manager), &models.Company{Name: "Nope", Code: "GH009"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, svc.CreateCompany(scopeFor(admin), &models.Company{Name: "Yes", Code: "GH001"}))

	err = svc.CreateCompany(scopeFor(admin), &models.Company{Name: "Dup", Code: "GH001"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestGetAllCompaniesScoped(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCompanyService(db, testConfig())

	companyA := seedCompany(t, db, "GH001")
	seedCompany(t, db, "GH002")
	admin := seedUser(t, db, companyA.ID, models.RoleAdmin, "admin@platform.test")
	manager := seedUser(t, db, companyA.ID, models.RoleManager, "manager@gh001.test")

	_, total, err := svc.GetAllCompanies(scopeFor(admin), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	mine, total, err := svc.GetAllCompanies(scopeFor(manager), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, mine, 1)
	assert.Equal(t, companyA.ID, mine[0].ID)
}

func TestDeleteCompanyGuardsNonEmpty(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCompanyService(db, testConfig())

	home := seedCompany(t, db, "PLATFORM")
	admin := seedUser(t, db, home.ID, models.RoleAdmin, "admin@platform.test")
	target := seedCompany(t, db, "GH001")
	seedDevice(t, db, target.ID, "DEV001")

	err := svc.DeleteCompany(scopeFor(admin), target.ID)
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, db.Where("company_id = ?", target.ID).Delete(&models.Device{}).Error)
	require.NoError(t, svc.DeleteCompany(scopeFor(admin), target.ID))

	var count int64
	require.NoError(t, db.Model(&models.Company{}).Where("id = ?", target.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCompanyListingsAreOutOfScopeNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCompanyService(db, testConfig())

	companyA := seedCompany(t, db, "GH001")
	companyB := seedCompany(t, db, "GH002")
	manager := seedUser(t, db, companyA.ID, models.RoleManager, "manager@gh001.test")

	_, err := svc.GetCompanyByID(scopeFor(manager), companyB.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetCompanyDevices(scopeFor(manager), companyB.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetCompanyUsers(scopeFor(manager), companyB.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

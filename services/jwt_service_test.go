package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenhouse-http-service/models"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewJWTService(testConfig())

	user := &models.User{
		BaseModel: models.BaseModel{ID: 42},
		Role:      models.RoleManager,
		CompanyID: 7,
	}

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	scope, err := svc.ExtractScope(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), scope.UserID)
	assert.Equal(t, models.RoleManager, scope.Role)
	assert.Equal(t, uint(7), scope.CompanyID)
}

func TestExtractScopeRejectsTamperedTokens(t *testing.T) {
	svc := NewJWTService(testConfig())

	user := &models.User{BaseModel: models.BaseModel{ID: 1}, Role: models.RoleUser, CompanyID: 1}
	token, err := svc.GenerateToken(user)
	require.NoError(t, err)

	_, err = svc.ExtractScope(token + "x")
	assert.Error(t, err)

	_, err = svc.ExtractScope("not-a-token")
	assert.Error(t, err)
}

func TestTokensSignedWithAnotherKeyAreRejected(t *testing.T) {
	issuer := NewJWTService(testConfig())

	other := testConfig()
	other.JWTSecretKey = "different-secret"
	verifier := NewJWTService(other)

	user := &models.User{BaseModel: models.BaseModel{ID: 1}, Role: models.RoleUser, CompanyID: 1}
	token, err := issuer.GenerateToken(user)
	require.NoError(t, err)

	_, err = verifier.ExtractScope(token)
	assert.Error(t, err)
}

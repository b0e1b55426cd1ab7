package auth

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/aethra/catalog-admin/internal/errors"
	"github.com/aethra/catalog-admin/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testOperator() *models.Operator {
	return &models.Operator{
		ID:    uuid.New(),
		Email: "ops@example.com",
		Role:  models.RoleEditor,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("s3cret", time.Hour, zap.NewNop())
	op := testOperator()

	tok, err := svc.GenerateToken(op)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.SessionID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, time.Minute)

	claims, err := svc.ValidateToken(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, op.ID, claims.OperatorID)
	assert.Equal(t, op.Email, claims.Email)
	assert.Equal(t, models.RoleEditor, claims.Role)
	assert.Equal(t, tok.SessionID, claims.SessionID())
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	tok, err := NewJWTService("one", time.Hour, nil).GenerateToken(testOperator())
	require.NoError(t, err)

	_, err = NewJWTService("two", time.Hour, nil).ValidateToken(tok.Value)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := NewJWTService("s3cret", time.Hour, nil)
	claims := &Claims{
		OperatorID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			Issuer:    "catalog-admin",
			ID:        "sid",
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPassword("correct horse", hash))
	assert.False(t, CheckPassword("wrong", hash))
}

func TestRoleGrants(t *testing.T) {
	assert.True(t, Can(models.RoleAdmin, ActionAudit))
	assert.True(t, Can(models.RoleEditor, ActionEdit))
	assert.False(t, Can(models.RoleEditor, ActionDelete))
	assert.True(t, Can(models.RoleViewer, ActionView))
	assert.False(t, Can(models.RoleViewer, ActionEdit))
	assert.False(t, Can(models.Role("root"), ActionView))

	err := Require(models.RoleViewer, ActionDelete, "track")
	var pde *errors.PermissionDeniedError
	require.True(t, stderrors.As(err, &pde))
	assert.Equal(t, "delete", pde.Action)
	assert.NoError(t, Require(models.RoleAdmin, ActionDelete, "track"))
}

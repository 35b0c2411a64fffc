package auth

import (
	"context"
	"testing"
	"time"

	"github.com/DriveLinkHQ/dl-backend/internal/authz"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_GenerateToken(t *testing.T) {
	service, err := NewJWTService([]byte("test-secret-key"), "test-issuer", time.Hour)
	require.NoError(t, err)

	userID := uuid.New()
	ctx := context.Background()

	token, err := service.GenerateToken(ctx, userID, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Contains(t, token, ".")
}

func TestJWTService_ValidateToken(t *testing.T) {
	service, err := NewJWTService([]byte("test-secret-key"), "test-issuer", time.Hour)
	require.NoError(t, err)

	userID := uuid.New()
	ctx := context.Background()
	perms := authz.PermissionSet{
		{Resource: "request", Actions: []string{"review"}},
		{Resource: "staff", Actions: []string{"update"}, Metadata: map[string]any{
			"allowedStaffTypes": []any{"nurse"},
		}},
	}

	token, err := service.GenerateToken(ctx, userID, perms)
	require.NoError(t, err)

	claims, err := service.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	require.Len(t, claims.Permissions, 2)
	assert.True(t, claims.Permissions.Grants("request", "review"))
	assert.True(t, claims.Permissions.Grants("staff", "update"))
	assert.NotNil(t, claims.Permissions[1].Metadata)
}

func TestJWTService_ValidateToken_InvalidToken(t *testing.T) {
	service, err := NewJWTService([]byte("test-secret-key"), "test-issuer", time.Hour)
	require.NoError(t, err)

	_, err = service.ValidateToken(context.Background(), "invalid-token")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse token")
}

func TestJWTService_ValidateToken_WrongSecret(t *testing.T) {
	service1, err := NewJWTService([]byte("secret-1"), "test-issuer", time.Hour)
	require.NoError(t, err)

	service2, err := NewJWTService([]byte("secret-2"), "test-issuer", time.Hour)
	require.NoError(t, err)

	token, err := service1.GenerateToken(context.Background(), uuid.New(), nil)
	require.NoError(t, err)

	_, err = service2.ValidateToken(context.Background(), token)
	assert.Error(t, err)
}

func TestJWTService_ValidateToken_ExpiredToken(t *testing.T) {
	service, err := NewJWTService([]byte("test-secret-key"), "test-issuer", time.Millisecond)
	require.NoError(t, err)

	token, err := service.GenerateToken(context.Background(), uuid.New(), nil)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = service.ValidateToken(context.Background(), token)
	assert.Error(t, err)
}

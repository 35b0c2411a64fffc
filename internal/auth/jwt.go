package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/DriveLinkHQ/dl-backend/internal/authz"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type JWTService struct {
	signingKey jwk.Key
	issuer     string
	expiry     time.Duration
}

// TokenClaims is what the permission service needs from a session token:
// who the caller is and what their session grants them. The permissions
// claim arrives either as a structured list or as the compact string
// encoding; both normalize into a PermissionSet here.
type TokenClaims struct {
	UserID      uuid.UUID
	Permissions authz.PermissionSet
}

func NewJWTService(signingKey []byte, issuer string, expiry time.Duration) (*JWTService, error) {
	key, err := jwk.FromRaw(signingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWK: %w", err)
	}

	if err := key.Set(jwk.AlgorithmKey, jwa.HS256); err != nil {
		return nil, fmt.Errorf("failed to set algorithm: %w", err)
	}

	return &JWTService{
		signingKey: key,
		issuer:     issuer,
		expiry:     expiry,
	}, nil
}

// GenerateToken issues a session token carrying the user's permission
// set. The compact string form is accepted on validation too, so tokens
// minted by the legacy session service keep working.
func (s *JWTService) GenerateToken(ctx context.Context, userID uuid.UUID, perms authz.PermissionSet) (string, error) {
	now := time.Now()

	claims := make([]map[string]any, 0, len(perms))
	for _, p := range perms {
		c := map[string]any{
			"resource": p.Resource,
			"actions":  p.Actions,
		}
		if p.Metadata != nil {
			c["metadata"] = p.Metadata
		}
		claims = append(claims, c)
	}

	token, err := jwt.NewBuilder().
		Issuer(s.issuer).
		Subject(userID.String()).
		IssuedAt(now).
		Expiration(now.Add(s.expiry)).
		Claim("user_id", userID.String()).
		Claim("permissions", claims).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, s.signingKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return string(signed), nil
}

func (s *JWTService) ValidateToken(ctx context.Context, tokenString string) (*TokenClaims, error) {
	parsedToken, err := jwt.Parse([]byte(tokenString), jwt.WithKey(jwa.HS256, s.signingKey), jwt.WithIssuer(s.issuer))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if err := jwt.Validate(parsedToken); err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	userIDStr, ok := parsedToken.Get("user_id")
	if !ok {
		return nil, fmt.Errorf("user_id claim not found")
	}

	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		return nil, fmt.Errorf("invalid user_id format: %w", err)
	}

	var perms authz.PermissionSet
	if raw, ok := parsedToken.Get("permissions"); ok {
		perms = authz.PermissionSetFromClaim(raw)
	}

	return &TokenClaims{
		UserID:      userID,
		Permissions: perms,
	}, nil
}

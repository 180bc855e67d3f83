package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/japanesestudent/content-service/internal/models"
)

const accessTokenType = "access"

// accessClaims is the payload of an access token issued by the auth service
type accessClaims struct {
	UserID int    `json:"user_id"`
	Role   int    `json:"role"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// TokenValidator validates access tokens issued by the auth service.
// It can also issue access tokens, which the tests and local tooling rely on.
type TokenValidator struct {
	secret            []byte
	accessTokenExpiry time.Duration
}

// NewTokenValidator creates a new token validator sharing the auth service's secret
func NewTokenValidator(secret string, accessExpiry time.Duration) *TokenValidator {
	return &TokenValidator{
		secret:            []byte(secret),
		accessTokenExpiry: accessExpiry,
	}
}

// GenerateAccessToken creates an access token carrying userID and role
func (tv *TokenValidator) GenerateAccessToken(userID int, role models.Role) (string, error) {
	now := time.Now()
	claims := accessClaims{
		UserID: userID,
		Role:   int(role),
		Type:   accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tv.accessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tv.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// ValidateAccessToken validates an access token and returns the principal it was issued to
func (tv *TokenValidator) ValidateAccessToken(tokenString string) (models.Principal, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return tv.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return models.Principal{}, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return models.Principal{}, errors.New("token is invalid")
	}

	if claims.Type != accessTokenType {
		return models.Principal{}, errors.New("token is not an access token")
	}

	if claims.UserID <= 0 {
		return models.Principal{}, errors.New("user_id not found in token")
	}

	if claims.Role < int(models.RoleUser) || claims.Role > int(models.RoleAdmin) {
		return models.Principal{}, fmt.Errorf("unknown role %d in token", claims.Role)
	}

	return models.Principal{UserID: claims.UserID, Role: models.Role(claims.Role)}, nil
}

package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"

	accessLifetime  = time.Hour
	refreshLifetime = 24 * time.Hour
)

var jwtSecret string

func InitJWTSecret() error {
	jwtSecret = os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is not set")
	}
	return nil
}

// SetJWTSecret overrides the secret directly; used by tests.
func SetJWTSecret(secret string) {
	jwtSecret = secret
}

func generateToken(userID uint, tokenType string, lifetime time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"type":    tokenType,
		"jti":     uuid.NewString(),
		"exp":     time.Now().Add(lifetime).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// GenerateTokenPair issues the access/refresh pair returned by
// POST /auth/token.
func GenerateTokenPair(userID uint) (access string, refresh string, err error) {
	access, err = generateToken(userID, TokenAccess, accessLifetime)
	if err != nil {
		return "", "", err
	}
	refresh, err = generateToken(userID, TokenRefresh, refreshLifetime)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// GenerateAccessToken issues a fresh access token from a refresh grant.
func GenerateAccessToken(userID uint) (string, error) {
	return generateToken(userID, TokenAccess, accessLifetime)
}

// VerifyToken parses a token and checks it carries the wanted type
// ("access" or "refresh"), returning the user ID claim.
func VerifyToken(tokenString, wantType string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})

	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid token claims")
	}

	if tokenType, _ := claims["type"].(string); tokenType != wantType {
		return 0, fmt.Errorf("token is not a %s token", wantType)
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, fmt.Errorf("invalid user ID in token claims")
	}

	return uint(userIDFloat), nil
}

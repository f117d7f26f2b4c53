package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "librarian"

// Sentinel errors distinguishing why token verification failed. The HTTP
// layer maps both to the same 403 response; the distinction exists for
// logging and tests.
var (
	// ErrTokenExpired indicates a well-formed, correctly signed token whose
	// expiry has elapsed.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates a malformed token, a bad signature, or a
	// token signed with a different secret.
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the JWT payload carried by both access and refresh tokens.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies signed access and refresh tokens. The two
// token kinds share a claim shape but are signed with distinct secrets, so a
// leaked refresh token never validates as an access token (and vice versa)
// and the secrets can be rotated independently.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenManager creates a token manager with the given secrets and expiry durations.
func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// GenerateAccessToken creates a signed access token carrying userID and role.
func (m *TokenManager) GenerateAccessToken(userID, role string) (string, error) {
	return m.generate(userID, role, m.accessSecret, m.accessTTL)
}

// GenerateRefreshToken creates a signed refresh token carrying userID and role.
func (m *TokenManager) GenerateRefreshToken(userID, role string) (string, error) {
	return m.generate(userID, role, m.refreshSecret, m.refreshTTL)
}

// ValidateAccessToken verifies an access token against the access secret and
// returns its claims.
func (m *TokenManager) ValidateAccessToken(tokenString string) (*Claims, error) {
	return m.validate(tokenString, m.accessSecret)
}

// ValidateRefreshToken verifies a refresh token against the refresh secret
// and returns its claims.
func (m *TokenManager) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return m.validate(tokenString, m.refreshSecret)
}

// AccessTTL returns the configured access token lifetime.
func (m *TokenManager) AccessTTL() time.Duration {
	return m.accessTTL
}

// RefreshTTL returns the configured refresh token lifetime.
func (m *TokenManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

func (m *TokenManager) generate(userID, role string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signedToken, nil
}

func (m *TokenManager) validate(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: unexpected claims type", ErrTokenInvalid)
	}

	return claims, nil
}

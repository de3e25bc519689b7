package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
)

// PendingUser identifies the unverified account an activation token belongs
// to. The stored record is looked up by email when the code comes back.
type PendingUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AccessClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

type ActivationClaims struct {
	User PendingUser `json:"user"`
	Code string      `json:"activation_code"`
	jwt.RegisteredClaims
}

// TokenManager issues and parses the three token kinds. Access and refresh
// tokens are signed with separate secrets so a leaked access secret cannot
// mint refresh tokens.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	activationTTL time.Duration
}

func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL, activationTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		activationTTL: activationTTL,
	}
}

func (m *TokenManager) AccessTTL() time.Duration  { return m.accessTTL }
func (m *TokenManager) RefreshTTL() time.Duration { return m.refreshTTL }

func (m *TokenManager) IssueAccessToken(userID string) (string, error) {
	return m.signUserToken(userID, m.accessSecret, m.accessTTL)
}

func (m *TokenManager) IssueRefreshToken(userID string) (string, error) {
	return m.signUserToken(userID, m.refreshSecret, m.refreshTTL)
}

func (m *TokenManager) signUserToken(userID string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *TokenManager) ParseAccessToken(tokenString string) (*AccessClaims, error) {
	return m.parseUserToken(tokenString, m.accessSecret)
}

func (m *TokenManager) ParseRefreshToken(tokenString string) (*AccessClaims, error) {
	return m.parseUserToken(tokenString, m.refreshSecret)
}

func (m *TokenManager) parseUserToken(tokenString string, secret []byte) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, mapJWTError(err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// IssueActivationToken binds an unverified account to a short code. The
// account stays unverified until the user echoes the code back.
func (m *TokenManager) IssueActivationToken(user PendingUser, code string) (string, error) {
	now := time.Now()
	claims := ActivationClaims{
		User: user,
		Code: code,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.activationTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.accessSecret)
	if err != nil {
		return "", fmt.Errorf("sign activation token: %w", err)
	}
	return signed, nil
}

func (m *TokenManager) ParseActivationToken(tokenString string) (*ActivationClaims, error) {
	claims := &ActivationClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.accessSecret, nil
	})
	if err != nil {
		return nil, mapJWTError(err)
	}
	if !token.Valid || claims.User.Email == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	default:
		return ErrTokenInvalid
	}
}

// GenerateActivationCode returns a 4-character hex code.
func GenerateActivationCode() (string, error) {
	buf := make([]byte, 2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate activation code: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

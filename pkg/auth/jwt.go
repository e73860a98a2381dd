package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carried by both access and refresh tokens. TenantID is empty
// for cross-tenant administrator accounts.
type Claims struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secretKey  string
	tokenExp   time.Duration
	refreshExp time.Duration
}

func NewJWTManager(secretKey string, tokenExp, refreshExp time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:  secretKey,
		tokenExp:   tokenExp,
		refreshExp: refreshExp,
	}
}

func (m *JWTManager) GenerateToken(userID, tenantID, role string) (string, error) {
	return m.generate(userID, tenantID, role, m.tokenExp)
}

func (m *JWTManager) GenerateRefreshToken(userID string) (string, error) {
	return m.generate(userID, "", "", m.refreshExp)
}

func (m *JWTManager) generate(userID, tenantID, role string, exp time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		TenantID: tenantID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(exp)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secretKey))
}

func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(m.secretKey), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (m *JWTManager) GetTokenDuration() time.Duration {
	return m.tokenExp
}

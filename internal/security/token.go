package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleAdmin    Role = "admin"
)

// Caller is the resolved identity behind a request. VendorID is set for
// vendor-role callers only.
type Caller struct {
	UserID   int32
	Role     Role
	VendorID *int32
}

// IsAdmin reports whether the caller has platform-admin privileges.
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// OwnsVendor reports whether the caller acts for the given vendor.
func (c Caller) OwnsVendor(vendorID int32) bool {
	return c.Role == RoleVendor && c.VendorID != nil && *c.VendorID == vendorID
}

// Claims defines the token claims issued by the platform's auth service.
type Claims struct {
	UserID   int32  `json:"user_id"`
	Role     Role   `json:"role"`
	VendorID *int32 `json:"vendor_id,omitempty"`
	jwt.RegisteredClaims
}

type TokenManager interface {
	Generate(caller Caller, ttl time.Duration) (string, error)
	Validate(tokenString string) (*Caller, error)
}

type tokenManager struct {
	secret []byte
}

func NewTokenManager(secret string) TokenManager {
	return &tokenManager{
		secret: []byte(secret),
	}
}

func (m *tokenManager) Generate(caller Caller, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:   caller.UserID,
		Role:     caller.Role,
		VendorID: caller.VendorID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", caller.UserID),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) Validate(tokenString string) (*Caller, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	switch claims.Role {
	case RoleCustomer, RoleVendor, RoleAdmin:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}

	return &Caller{
		UserID:   claims.UserID,
		Role:     claims.Role,
		VendorID: claims.VendorID,
	}, nil
}

package jwt

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Tokens are issued elsewhere; this service verifies them and mints tokens
// for tests and local tooling.

// Roles that act on behalf of other employees.
const (
	RoleOwner    = "owner"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// AccessClaims are the claims the API reads from an access token.
type AccessClaims struct {
	UserID     string
	EmployeeID string
	Role       string
	IsAdmin    bool
}

// Privileged reports whether the claims allow approving and acting for others.
func (c AccessClaims) Privileged() bool {
	return c.IsAdmin || c.Role == RoleOwner || c.Role == RoleManager
}

var ErrInvalidClaims = errors.New("invalid token claims")

type Service interface {
	GenerateAccessToken(claims AccessClaims, ttl time.Duration) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(claims AccessClaims, ttl time.Duration) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(ttl).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":     claims.UserID,
		"employee_id": claims.EmployeeID,
		"role":        claims.Role,
		"is_admin":    claims.IsAdmin,
		"type":        "access",
		"exp":         expiresAt,
	})
	return tokenString, expiresAt, err
}

// ClaimsFromMap reads AccessClaims from decoded token claims. Only access
// tokens with a user id are accepted.
func ClaimsFromMap(m map[string]interface{}) (AccessClaims, error) {
	if tokenType, _ := m["type"].(string); tokenType != "access" {
		return AccessClaims{}, ErrInvalidClaims
	}

	var c AccessClaims
	c.UserID, _ = m["user_id"].(string)
	if c.UserID == "" {
		return AccessClaims{}, ErrInvalidClaims
	}
	c.EmployeeID, _ = m["employee_id"].(string)
	c.Role, _ = m["role"].(string)
	c.IsAdmin, _ = m["is_admin"].(bool)
	return c, nil
}

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Profile is the User Registry view the gate checks on every
// authentication and on every authenticated request. A profile with
// DeletedAt set or IsActive false is never a valid session principal.
type Profile struct {
	ID        string
	Email     string
	Name      string
	Role      string
	IsActive  bool
	DeletedAt *time.Time
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrAccountDeleted     = errors.New("account is deleted")
	// ErrProfileNotFound means the credential row resolved but no
	// profile exists. That is a data inconsistency, not a retry case.
	ErrProfileNotFound = errors.New("profile not found for principal")
)

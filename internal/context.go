package internal

import (
	"context"
	"time"
)

type ctxKey string

const ContextSessionKey ctxKey = "session"

// Session carries the authenticated caller through every core
// operation. Handlers build it from the validated token plus the
// per-request profile lookup; services never consult global state.
type Session struct {
	UserID      string
	Email       string
	Role        string
	Permissions []string
}

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

func (s *Session) HasPermission(code string) bool {
	if s == nil {
		return false
	}
	if s.IsAdmin() {
		return true
	}
	for _, p := range s.Permissions {
		if p == code {
			return true
		}
	}
	return false
}

func SessionFromContext(ctx context.Context) (*Session, bool) {
	if ctx == nil {
		return nil, false
	}
	if s, ok := ctx.Value(ContextSessionKey).(*Session); ok && s != nil {
		return s, true
	}
	return nil, false
}

func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ContextSessionKey, s)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}

package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenStore persists the auth token and user id for the session.
type TokenStore interface {
	Token() string
	UserID() string
	Save(token, userID string) error
	Clear() error
}

// MemoryTokens is a TokenStore with no backing storage.
type MemoryTokens struct {
	mu     sync.RWMutex
	token  string
	userID string
}

func (m *MemoryTokens) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *MemoryTokens) UserID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userID
}

func (m *MemoryTokens) Save(token, userID string) error {
	m.mu.Lock()
	m.token, m.userID = token, userID
	m.mu.Unlock()
	return nil
}

func (m *MemoryTokens) Clear() error { return m.Save("", "") }

// TokenExpired reports whether token is a JWT whose exp claim is before now.
// The signature is not checked; the backend remains the authority. Opaque or
// exp-less tokens are treated as live.
func TokenExpired(token string, now time.Time) bool {
	if token == "" {
		return true
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.Before(now)
}

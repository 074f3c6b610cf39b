package store

import (
	"context"
	"errors"
	"sync"
)

const (
	keyAuthToken = "authToken"
	keyUserID    = "userId"
)

// Tokens keeps the auth token and user id in the session store. Reads are
// served from memory so gateway goroutines never hit SQLite.
type Tokens struct {
	db *DB

	mu     sync.RWMutex
	token  string
	userID string
}

// NewTokens loads any token already present in db.
func NewTokens(ctx context.Context, db *DB) (*Tokens, error) {
	t := &Tokens{db: db}
	tok, err := db.Get(ctx, keyAuthToken)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	uid, err := db.Get(ctx, keyUserID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	t.token, t.userID = tok, uid
	return t, nil
}

func (t *Tokens) Token() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token
}

func (t *Tokens) UserID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.userID
}

// Save persists both values.
func (t *Tokens) Save(token, userID string) error {
	ctx := context.Background()
	if err := t.db.Put(ctx, keyAuthToken, token); err != nil {
		return err
	}
	if err := t.db.Put(ctx, keyUserID, userID); err != nil {
		return err
	}
	t.mu.Lock()
	t.token, t.userID = token, userID
	t.mu.Unlock()
	return nil
}

// Clear drops both values. Memory is cleared even if the delete fails.
func (t *Tokens) Clear() error {
	t.mu.Lock()
	t.token, t.userID = "", ""
	t.mu.Unlock()
	return t.db.Delete(context.Background(), keyAuthToken, keyUserID)
}

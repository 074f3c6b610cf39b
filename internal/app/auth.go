package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hottakes/internal/backend"
	"hottakes/internal/logging"
	"hottakes/internal/model"
	"hottakes/internal/session"
)

// ValidateLogin checks the login form before any network call.
func ValidateLogin(username, password string) error {
	if username == "" || password == "" {
		return ErrMissingFields
	}
	return nil
}

// ValidateRegister checks the registration form before any network call.
func ValidateRegister(username, email, password, confirm string) error {
	if username == "" || email == "" || password == "" || confirm == "" {
		return ErrMissingFields
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	if len([]rune(password)) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	return nil
}

// AuthResult is a finished login or registration, ready to apply.
type AuthResult struct {
	User     model.AuthUser
	Location *model.LocationInfo
}

// Auth drives the login and register screens.
type Auth struct {
	gw     backend.Gateway
	sess   *session.Store
	tokens session.TokenStore
	now    func() time.Time
}

func NewAuth(gw backend.Gateway, sess *session.Store, tokens session.TokenStore) *Auth {
	return &Auth{gw: gw, sess: sess, tokens: tokens, now: time.Now}
}

// Login validates, authenticates and stores the token, then looks up the
// location best-effort. It does not touch the session store; pass the
// result to Apply on the UI loop.
func (a *Auth) Login(ctx context.Context, username, password string) (AuthResult, error) {
	if err := ValidateLogin(username, password); err != nil {
		return AuthResult{}, err
	}
	resp, err := a.gw.Login(ctx, username, password)
	if err != nil {
		return AuthResult{}, authFailure("Login failed", err)
	}
	return a.finish(ctx, resp)
}

// Register validates, creates the account and signs in.
func (a *Auth) Register(ctx context.Context, username, email, password, confirm string) (AuthResult, error) {
	if err := ValidateRegister(username, email, password, confirm); err != nil {
		return AuthResult{}, err
	}
	resp, err := a.gw.Register(ctx, username, email, password)
	if err != nil {
		return AuthResult{}, authFailure("Registration failed", err)
	}
	return a.finish(ctx, resp)
}

// Resume restores a stored, unexpired token by re-reading its user.
func (a *Auth) Resume(ctx context.Context) (AuthResult, error) {
	tok, uid := a.tokens.Token(), a.tokens.UserID()
	if uid == "" || session.TokenExpired(tok, a.now()) {
		return AuthResult{}, ErrNotLoggedIn
	}
	u, err := a.gw.CurrentUser(ctx, uid)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			_ = a.tokens.Clear()
		}
		return AuthResult{}, err
	}
	return AuthResult{User: u, Location: a.location(ctx)}, nil
}

func (a *Auth) finish(ctx context.Context, resp model.AuthResponse) (AuthResult, error) {
	if resp.Token == "" || resp.User.ID == "" {
		return AuthResult{}, errors.New("Login failed: malformed response")
	}
	if err := a.tokens.Save(resp.Token, resp.User.ID); err != nil {
		return AuthResult{}, fmt.Errorf("store token: %w", err)
	}
	return AuthResult{User: resp.User, Location: a.location(ctx)}, nil
}

func (a *Auth) location(ctx context.Context) *model.LocationInfo {
	loc, err := a.gw.Location(ctx)
	if err != nil {
		logging.Warn("location_lookup_failed", map[string]any{"error": err.Error()})
		return nil
	}
	return &loc
}

// Apply writes the result into the session store.
func (a *Auth) Apply(res AuthResult) {
	a.sess.SetIdentity(res.User.ID, res.User.Username)
	a.sess.ApplyAggregates(res.User.Aggregates)
	a.sess.SetLocation(res.Location)
	logging.Info("session_started", map[string]any{"user_id": res.User.ID, "session_id": a.sess.ID().String()})
}

func authFailure(prefix string, err error) error {
	var se *backend.StatusError
	if errors.As(err, &se) && se.Message != "" {
		return fmt.Errorf("%s: %s", prefix, se.Message)
	}
	return fmt.Errorf("%s: %w", prefix, err)
}

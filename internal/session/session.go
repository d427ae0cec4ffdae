// Package session owns the login token: it exchanges credentials for a
// token, keeps the token in the keyring between runs, and decodes the
// user it describes.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	log "github.com/sirupsen/logrus"

	"github.com/nhle/kanban/internal/api"
	"github.com/nhle/kanban/internal/credential"
	"github.com/nhle/kanban/internal/model"
)

const tokenKey = "session-token"

// ErrNoSession is returned by Restore when no usable token is stored.
var ErrNoSession = errors.New("no session")

// Claims is the payload of a session token.
type Claims struct {
	TeamID  string `json:"teamID"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// LoginAPI is the subset of the API client used to log in.
type LoginAPI interface {
	Login(ctx context.Context, req api.LoginReq) (api.LoginResp, error)
}

// TokenStore persists the token between runs.
type TokenStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// TokenSink receives the active token (the API client).
type TokenSink interface {
	SetToken(token string)
}

// Manager ties the login endpoint, the keyring and the API client
// together.
type Manager struct {
	api   LoginAPI
	store TokenStore
	sink  TokenSink
	log   log.FieldLogger
	now   func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger for keyring failures that do not fail the
// call.
func WithLogger(l log.FieldLogger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager creates a Manager.
func NewManager(loginAPI LoginAPI, store TokenStore, sink TokenSink, opts ...Option) *Manager {
	m := &Manager{
		api:   loginAPI,
		store: store,
		sink:  sink,
		log:   log.StandardLogger(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Login exchanges credentials for a token, stores it and returns the user.
func (m *Manager) Login(ctx context.Context, username, password string) (model.User, error) {
	resp, err := m.api.Login(ctx, api.LoginReq{Username: username, Password: password})
	if err != nil {
		return model.User{}, err
	}

	user, err := ParseToken(resp.Token, m.now())
	if err != nil {
		return model.User{}, err
	}

	if err := m.store.Set(tokenKey, resp.Token); err != nil {
		return model.User{}, fmt.Errorf("saving session: %w", err)
	}
	m.sink.SetToken(resp.Token)
	return user, nil
}

// Restore loads a stored token. It returns ErrNoSession when nothing is
// stored or the stored token has expired; an expired token is removed.
func (m *Manager) Restore() (model.User, error) {
	token, err := m.store.Get(tokenKey)
	if errors.Is(err, credential.ErrNotFound) {
		return model.User{}, ErrNoSession
	}
	if err != nil {
		return model.User{}, fmt.Errorf("loading session: %w", err)
	}

	user, err := ParseToken(token, m.now())
	if err != nil {
		if derr := m.store.Delete(tokenKey); derr != nil {
			m.log.WithError(derr).Warn("removing unusable session token")
		}
		return model.User{}, ErrNoSession
	}

	m.sink.SetToken(token)
	return user, nil
}

// Logout forgets the stored token.
func (m *Manager) Logout() error {
	m.sink.SetToken("")
	if err := m.store.Delete(tokenKey); err != nil {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}

// ParseToken decodes the user from a session token. The signature is not
// checked here; the server verifies it on every request.
func ParseToken(token string, now time.Time) (model.User, error) {
	var claims Claims
	if _, _, err := new(jwt.Parser).ParseUnverified(token, &claims); err != nil {
		return model.User{}, fmt.Errorf("decoding session token: %w", err)
	}
	if claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time) {
		return model.User{}, errors.New("session token expired")
	}
	if claims.Subject == "" {
		return model.User{}, errors.New("session token has no subject")
	}
	return model.User{
		Username: claims.Subject,
		TeamID:   claims.TeamID,
		IsAdmin:  claims.IsAdmin,
	}, nil
}

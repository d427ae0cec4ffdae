package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/kanban/internal/api"
	"github.com/nhle/kanban/internal/credential"
)

type stubLogin struct {
	token string
	err   error
	calls int
}

func (s *stubLogin) Login(context.Context, api.LoginReq) (api.LoginResp, error) {
	s.calls++
	return api.LoginResp{Token: s.token}, s.err
}

type sink struct{ token string }

func (s *sink) SetToken(token string) { s.token = token }

func sign(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		TeamID:  "t9",
		IsAdmin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "carol",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	s, err := tok.SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

func TestLoginStoresToken(t *testing.T) {
	token := sign(t, time.Now().Add(time.Hour))
	store := credential.NewMemory()
	sk := &sink{}
	m := NewManager(&stubLogin{token: token}, store, sk)

	user, err := m.Login(context.Background(), "carol", "pw")
	require.NoError(t, err)
	assert.Equal(t, "carol", user.Username)
	assert.Equal(t, "t9", user.TeamID)
	assert.True(t, user.IsAdmin)
	assert.Equal(t, token, sk.token)

	stored, err := store.Get(tokenKey)
	require.NoError(t, err)
	assert.Equal(t, token, stored)
}

func TestLoginFailureStoresNothing(t *testing.T) {
	store := credential.NewMemory()
	m := NewManager(&stubLogin{err: errors.New("nope")}, store, &sink{})

	_, err := m.Login(context.Background(), "carol", "bad")
	require.Error(t, err)
	_, err = store.Get(tokenKey)
	assert.True(t, errors.Is(err, credential.ErrNotFound))
}

func TestRestore(t *testing.T) {
	store := credential.NewMemory()
	sk := &sink{}
	m := NewManager(&stubLogin{}, store, sk)

	_, err := m.Restore()
	assert.True(t, errors.Is(err, ErrNoSession))

	token := sign(t, time.Now().Add(time.Hour))
	require.NoError(t, store.Set(tokenKey, token))
	user, err := m.Restore()
	require.NoError(t, err)
	assert.Equal(t, "carol", user.Username)
	assert.Equal(t, token, sk.token)
}

func TestRestoreDropsExpiredToken(t *testing.T) {
	store := credential.NewMemory()
	m := NewManager(&stubLogin{}, store, &sink{})
	require.NoError(t, store.Set(tokenKey, sign(t, time.Now().Add(-time.Minute))))

	_, err := m.Restore()
	assert.True(t, errors.Is(err, ErrNoSession))
	_, err = store.Get(tokenKey)
	assert.True(t, errors.Is(err, credential.ErrNotFound))
}

// brokenStore serves a token but cannot delete it.
type brokenStore struct{ token string }

func (b *brokenStore) Get(string) (string, error) { return b.token, nil }
func (b *brokenStore) Set(string, string) error   { return nil }
func (b *brokenStore) Delete(string) error        { return errors.New("keyring locked") }

func TestRestoreLogsFailedCleanup(t *testing.T) {
	logger, hook := test.NewNullLogger()
	m := NewManager(&stubLogin{}, &brokenStore{token: "garbage"}, &sink{}, WithLogger(logger))

	_, err := m.Restore()
	assert.ErrorIs(t, err, ErrNoSession)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "removing unusable session token", entry.Message)
	assert.EqualError(t, entry.Data[logrus.ErrorKey].(error), "keyring locked")
}

func TestLogout(t *testing.T) {
	store := credential.NewMemory()
	sk := &sink{token: "x"}
	m := NewManager(&stubLogin{}, store, sk)
	require.NoError(t, store.Set(tokenKey, "x"))

	require.NoError(t, m.Logout())
	assert.Empty(t, sk.token)
	_, err := store.Get(tokenKey)
	assert.True(t, errors.Is(err, credential.ErrNotFound))
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken("not-a-jwt", time.Now())
	assert.Error(t, err)
}

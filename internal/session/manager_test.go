package session

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/formulacardz/cardz/internal/localstore"
	"github.com/formulacardz/cardz/pkg/domain"
)

type fakeRemote struct {
	loginAuth    *domain.AuthResponse
	loginErr     error
	loginCalls   int
	registerAuth *domain.AuthResponse
	registerErr  error
	lastRegister domain.NewUser
}

func (f *fakeRemote) Login(_ context.Context, email, password string) (*domain.AuthResponse, error) {
	f.loginCalls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginAuth, nil
}

func (f *fakeRemote) Register(_ context.Context, nu domain.NewUser) (*domain.AuthResponse, error) {
	f.lastRegister = nu
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.registerAuth, nil
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type fixture struct {
	remote *fakeRemote
	store  *localstore.Store
	mgr    *Manager
	now    time.Time
}

func setup(t *testing.T) *fixture {
	t.Helper()

	store, err := localstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	f := &fixture{
		remote: &fakeRemote{
			loginAuth: &domain.AuthResponse{
				Profile: domain.Profile{ID: "u1", Username: "lewis", Email: "lewis@example.com"},
				Token:   "tok-123",
			},
			registerAuth: &domain.AuthResponse{
				Profile: domain.Profile{ID: "u2", Username: "max", Email: "max@example.com"},
				Token:   "tok-456",
			},
		},
		store: store,
		now:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.mgr = New(f.remote, store, testLogger(), WithNow(func() time.Time { return f.now }))
	return f
}

func TestLogin(t *testing.T) {
	f := setup(t)

	sess, err := f.mgr.Login(context.Background(), "lewis@example.com", "box-box", true)
	require.NoError(t, err)
	require.Equal(t, "tok-123", sess.Token)
	require.True(t, sess.RememberMe)
	require.Equal(t, f.now, sess.IssuedAt)
	require.Same(t, sess, f.mgr.Current())

	// All four entries land in the store.
	for _, key := range []string{keyToken, keyProfile, keyIssuedAt, keyRememberMe} {
		_, ok, err := f.store.Get(key)
		require.NoError(t, err)
		require.True(t, ok, "missing persisted entry %q", key)
	}
}

func TestLoginMalformedEmail(t *testing.T) {
	f := setup(t)

	_, err := f.mgr.Login(context.Background(), "not-an-email", "pw", false)
	require.True(t, domain.IsValidation(err), "want ValidationError, got %v", err)
	require.Zero(t, f.remote.loginCalls, "validation must happen before the remote call")
}

func TestLoginRejectedSurfacesMessageVerbatim(t *testing.T) {
	f := setup(t)
	f.remote.loginErr = errors.New("HTTP 401: invalid credentials")

	_, err := f.mgr.Login(context.Background(), "lewis@example.com", "wrong", false)
	require.True(t, domain.IsAuth(err))
	require.EqualError(t, err, "HTTP 401: invalid credentials")
	require.Nil(t, f.mgr.Current())

	_, ok, getErr := f.store.Get(keyToken)
	require.NoError(t, getErr)
	require.False(t, ok, "failed login must not persist anything")
}

func TestRegisterForcesShortPolicy(t *testing.T) {
	f := setup(t)

	sess, err := f.mgr.Register(context.Background(), domain.NewUser{
		Username: "max",
		Email:    "max@example.com",
		Password: "secret",
	})
	require.NoError(t, err)
	require.False(t, sess.RememberMe)

	remember, ok, err := f.store.Get(keyRememberMe)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "false", remember)

	// 25 hours later the fresh account's session is gone, 60-day policy or not.
	f.now = f.now.Add(25 * time.Hour)
	require.True(t, f.mgr.IsExpired())
}

func TestIsExpired(t *testing.T) {
	cases := []struct {
		name       string
		rememberMe bool
		elapsed    time.Duration
		want       bool
	}{
		{"default 23h59m", false, 23*time.Hour + 59*time.Minute, false},
		{"default 24h01m", false, 24*time.Hour + time.Minute, true},
		{"remember 59d", true, 59 * 24 * time.Hour, false},
		{"remember 61d", true, 61 * 24 * time.Hour, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := setup(t)
			_, err := f.mgr.Login(context.Background(), "lewis@example.com", "pw", tc.rememberMe)
			require.NoError(t, err)

			f.now = f.now.Add(tc.elapsed)
			require.Equal(t, tc.want, f.mgr.IsExpired())
		})
	}
}

func TestIsExpiredNoTimestamp(t *testing.T) {
	f := setup(t)
	require.True(t, f.mgr.IsExpired())
}

func TestRestore(t *testing.T) {
	f := setup(t)
	_, err := f.mgr.Login(context.Background(), "lewis@example.com", "pw", true)
	require.NoError(t, err)

	// Simulate a process restart with the same backing store.
	mgr2 := New(f.remote, f.store, testLogger(), WithNow(func() time.Time { return f.now.Add(time.Hour) }))
	sess, err := mgr2.Restore()
	require.NoError(t, err)
	require.NotNil(t, sess)
	require.Equal(t, "tok-123", sess.Token)
	require.Equal(t, "lewis", sess.Profile.Username)
	require.True(t, sess.RememberMe)
	require.Equal(t, f.now, sess.IssuedAt)
}

func TestRestoreExpiredClearsEverything(t *testing.T) {
	f := setup(t)
	_, err := f.mgr.Login(context.Background(), "lewis@example.com", "pw", false)
	require.NoError(t, err)

	mgr2 := New(f.remote, f.store, testLogger(), WithNow(func() time.Time { return f.now.Add(25 * time.Hour) }))
	sess, err := mgr2.Restore()
	require.NoError(t, err)
	require.Nil(t, sess)
	require.Nil(t, mgr2.Current())

	for _, key := range []string{keyToken, keyProfile, keyIssuedAt, keyRememberMe} {
		_, ok, err := f.store.Get(key)
		require.NoError(t, err)
		require.False(t, ok, "entry %q should have been cleared", key)
	}
}

func TestRestoreNothingPersisted(t *testing.T) {
	f := setup(t)

	sess, err := f.mgr.Restore()
	require.NoError(t, err)
	require.Nil(t, sess)
}

func TestRefresh(t *testing.T) {
	f := setup(t)
	_, err := f.mgr.Login(context.Background(), "lewis@example.com", "pw", false)
	require.NoError(t, err)

	sess, err := f.mgr.Refresh(domain.UpdatedUser{
		ID:              "u1",
		Username:        "lewis44",
		Email:           "lewis@example.com",
		FavoriteDrivers: []string{"Lewis Hamilton"},
		HasPremium:      true,
	})
	require.NoError(t, err)
	require.Equal(t, "tok-123", sess.Token, "refresh must keep the existing token")
	require.Equal(t, "lewis44", sess.Profile.Username)
	require.True(t, sess.Profile.HasPremium)

	// The refreshed profile survives a restart.
	mgr2 := New(f.remote, f.store, testLogger(), WithNow(func() time.Time { return f.now }))
	restored, err := mgr2.Restore()
	require.NoError(t, err)
	require.NotNil(t, restored)
	require.Equal(t, "lewis44", restored.Profile.Username)
}

func TestRefreshAnonymous(t *testing.T) {
	f := setup(t)

	_, err := f.mgr.Refresh(domain.UpdatedUser{ID: "u1"})
	var se *domain.StateError
	require.ErrorAs(t, err, &se)
}

func TestLogout(t *testing.T) {
	f := setup(t)
	_, err := f.mgr.Login(context.Background(), "lewis@example.com", "pw", true)
	require.NoError(t, err)

	f.mgr.Logout()
	require.Nil(t, f.mgr.Current())
	require.True(t, f.mgr.IsExpired())

	// Logging out twice is fine.
	f.mgr.Logout()
}

func TestTokenSinkTracksLifecycle(t *testing.T) {
	f := setup(t)
	var tokens []string
	mgr := New(f.remote, f.store, testLogger(),
		WithNow(func() time.Time { return f.now }),
		WithTokenSink(func(tok string) { tokens = append(tokens, tok) }))

	_, err := mgr.Login(context.Background(), "lewis@example.com", "pw", false)
	require.NoError(t, err)
	mgr.Logout()

	require.Equal(t, []string{"tok-123", ""}, tokens)

	// A fresh manager restoring a persisted session feeds the sink too.
	_, err = mgr.Login(context.Background(), "lewis@example.com", "pw", true)
	require.NoError(t, err)

	var restored []string
	mgr2 := New(f.remote, f.store, testLogger(),
		WithNow(func() time.Time { return f.now }),
		WithTokenSink(func(tok string) { restored = append(restored, tok) }))
	sess, err := mgr2.Restore()
	require.NoError(t, err)
	require.NotNil(t, sess)
	require.Equal(t, []string{"tok-123"}, restored)
}

// Package session owns the authenticated-session lifecycle: login, register,
// restore at startup, profile refresh, expiry, and logout.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/formulacardz/cardz/internal/localstore"
	"github.com/formulacardz/cardz/pkg/domain"
)

// Persisted entry keys. The four session keys are written and cleared as a
// set; see persist and clearPersisted.
const (
	keyToken      = "auth.token"
	keyProfile    = "auth.profile"
	keyIssuedAt   = "auth.issued_at"
	keyRememberMe = "auth.remember_me"
)

// Remote is the slice of the API the session lifecycle needs.
type Remote interface {
	Login(ctx context.Context, email, password string) (*domain.AuthResponse, error)
	Register(ctx context.Context, nu domain.NewUser) (*domain.AuthResponse, error)
}

// Manager holds the current session and its persistence. All methods are
// safe for concurrent use.
type Manager struct {
	remote    Remote
	store     *localstore.Store
	log       zerolog.Logger
	now       func() time.Time
	tokenSink func(token string)

	mu      sync.Mutex
	current *domain.Session
}

// Option configures a Manager.
type Option func(*Manager)

// WithNow sets the clock function (primarily for testing).
func WithNow(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithTokenSink registers a callback invoked with the bearer token whenever
// a session is installed or restored, and with the empty string on logout.
// It keeps an API client's credentials in step with the session.
func WithTokenSink(sink func(token string)) Option {
	return func(m *Manager) {
		m.tokenSink = sink
	}
}

// New creates a session manager backed by the given remote and local store.
func New(remote Remote, store *localstore.Store, log zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		remote: remote,
		store:  store,
		log:    log.With().Str("component", "session").Logger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current returns the active session, or nil when anonymous.
func (m *Manager) Current() *domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Login verifies credentials against the remote service and, on success,
// installs and persists a new session, replacing any current one. Credential
// rejection and transport failures both surface as AuthError with the
// underlying message preserved for display.
func (m *Manager) Login(ctx context.Context, email, password string, rememberMe bool) (*domain.Session, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, &domain.ValidationError{Msg: "password is required"}
	}

	auth, err := m.remote.Login(ctx, email, password)
	if err != nil {
		m.log.Warn().Err(err).Str("email", email).Msg("login rejected")
		return nil, &domain.AuthError{Msg: err.Error()}
	}

	return m.install(auth, rememberMe)
}

// Register creates a new account. New accounts always get the 1-day session
// policy: remember-me is forced off regardless of what the caller wanted.
func (m *Manager) Register(ctx context.Context, nu domain.NewUser) (*domain.Session, error) {
	if nu.Username == "" {
		return nil, &domain.ValidationError{Msg: "username is required"}
	}
	if err := validateEmail(nu.Email); err != nil {
		return nil, err
	}
	if nu.Password == "" {
		return nil, &domain.ValidationError{Msg: "password is required"}
	}

	auth, err := m.remote.Register(ctx, nu)
	if err != nil {
		m.log.Warn().Err(err).Str("email", nu.Email).Msg("registration rejected")
		return nil, &domain.AuthError{Msg: err.Error()}
	}

	return m.install(auth, false)
}

// install builds the session, persists its four entries atomically, and
// makes it current.
func (m *Manager) install(auth *domain.AuthResponse, rememberMe bool) (*domain.Session, error) {
	sess := &domain.Session{
		Token:      auth.Token,
		IssuedAt:   m.now(),
		RememberMe: rememberMe,
		Profile:    auth.Profile,
	}

	profileJSON, err := json.Marshal(sess.Profile)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	err = m.store.SetMany(map[string]string{
		keyToken:      sess.Token,
		keyProfile:    string(profileJSON),
		keyIssuedAt:   strconv.FormatInt(sess.IssuedAt.UnixMilli(), 10),
		keyRememberMe: strconv.FormatBool(sess.RememberMe),
	})
	if err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()
	if m.tokenSink != nil {
		m.tokenSink(sess.Token)
	}

	m.log.Info().Str("user_id", sess.Profile.ID).Bool("remember_me", rememberMe).Msg("session established")
	return sess, nil
}

// IsExpired reports whether the persisted session is past its validity
// window. A missing timestamp counts as expired.
func (m *Manager) IsExpired() bool {
	issuedStr, ok, err := m.store.Get(keyIssuedAt)
	if err != nil {
		m.log.Error().Err(err).Msg("read issued-at")
		return true
	}
	if !ok {
		return true
	}
	millis, err := strconv.ParseInt(issuedStr, 10, 64)
	if err != nil {
		return true
	}

	rememberStr, _, err := m.store.Get(keyRememberMe)
	if err != nil {
		m.log.Error().Err(err).Msg("read remember-me")
		return true
	}
	rememberMe := rememberStr == "true"

	return domain.Expired(time.UnixMilli(millis), rememberMe, m.now())
}

// Restore reconstructs the session persisted by a previous run. It returns
// nil (with no error) when nothing usable is stored or the session has
// expired; in both cases the persisted entries are cleared, equivalent to an
// implicit logout.
func (m *Manager) Restore() (*domain.Session, error) {
	token, hasToken, err := m.store.Get(keyToken)
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	profileJSON, hasProfile, err := m.store.Get(keyProfile)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	if !hasToken || !hasProfile || m.IsExpired() {
		m.clearPersisted()
		m.log.Debug().Msg("no restorable session")
		return nil, nil
	}

	var profile domain.Profile
	if err := json.Unmarshal([]byte(profileJSON), &profile); err != nil {
		// Unreadable state is treated like an expired session.
		m.log.Warn().Err(err).Msg("discarding corrupt session profile")
		m.clearPersisted()
		return nil, nil
	}

	issuedStr, _, _ := m.store.Get(keyIssuedAt)
	millis, _ := strconv.ParseInt(issuedStr, 10, 64)
	rememberStr, _, _ := m.store.Get(keyRememberMe)

	sess := &domain.Session{
		Token:      token,
		IssuedAt:   time.UnixMilli(millis).UTC(),
		RememberMe: rememberStr == "true",
		Profile:    profile,
	}

	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()
	if m.tokenSink != nil {
		m.tokenSink(sess.Token)
	}

	m.log.Info().Str("user_id", profile.ID).Msg("session restored")
	return sess, nil
}

// Refresh merges server-confirmed profile fields into the current session,
// keeping the existing token and policy. Returns StateError when anonymous.
func (m *Manager) Refresh(updated domain.UpdatedUser) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil, &domain.StateError{Msg: "no active session to refresh"}
	}

	m.current.Profile = domain.Profile{
		ID:                   updated.ID,
		Username:             updated.Username,
		Email:                updated.Email,
		ProfileImageURL:      updated.ProfileImageURL,
		FavoriteDrivers:      updated.FavoriteDrivers,
		FavoriteConstructors: updated.FavoriteConstructors,
		HasPremium:           updated.HasPremium,
	}

	profileJSON, err := json.Marshal(m.current.Profile)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	if err := m.store.Set(keyProfile, string(profileJSON)); err != nil {
		return nil, fmt.Errorf("persist profile: %w", err)
	}

	m.log.Info().Str("user_id", updated.ID).Msg("profile refreshed")
	return m.current, nil
}

// Logout clears the in-memory session and all persisted entries. It never
// fails; storage errors are logged and swallowed.
func (m *Manager) Logout() {
	m.clearPersisted()

	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	if m.tokenSink != nil {
		m.tokenSink("")
	}

	m.log.Info().Msg("logged out")
}

func (m *Manager) clearPersisted() {
	err := m.store.DeleteMany([]string{keyToken, keyProfile, keyIssuedAt, keyRememberMe})
	if err != nil {
		m.log.Error().Err(err).Msg("clear persisted session")
	}
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &domain.ValidationError{Msg: "email is required"}
	}
	at := strings.Index(email, "@")
	if at <= 0 || !strings.Contains(email[at:], ".") {
		return &domain.ValidationError{Msg: "email address is malformed"}
	}
	return nil
}

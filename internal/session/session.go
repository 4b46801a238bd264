// Package session owns the bearer token lifecycle and the signed-in user.
//
// The token is persisted under TokenKey so a later process can resume the
// session with Verify. After Verify returns, either a user is set and its
// token is persisted, or neither is.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shashiranjanraj/storefront/internal/api"
	"github.com/shashiranjanraj/storefront/pkg/crypt"
	"github.com/shashiranjanraj/storefront/pkg/store"
)

// TokenKey is the store key holding the bearer token.
const TokenKey = "token"

// RouteLogin is where Logout and Register send the caller.
const RouteLogin = "/login"

// State is the session's position in its lifecycle.
type State int

const (
	Unauthenticated State = iota
	Verifying
	Authenticated
)

func (s State) String() string {
	switch s {
	case Verifying:
		return "verifying"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Snapshot is a consistent read of the session.
type Snapshot struct {
	User    *api.User
	Token   string
	Loading bool
	State   State
}

// Backend is the subset of api.Client the session needs.
type Backend interface {
	Verify(ctx context.Context, token string) (*api.User, error)
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)
	Register(ctx context.Context, r api.Registration) error
	UpdateProfile(ctx context.Context, token string, p api.Profile) (*api.User, error)
	ChangePassword(ctx context.Context, token, current, next string) error
	ResetPassword(ctx context.Context, email string) error
	CompleteReset(ctx context.Context, resetToken, newPassword string) error
}

// Navigator moves the caller to another view.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a func to Navigator.
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

// Options configures a Manager. API and Store are required.
type Options struct {
	API       Backend
	Store     store.Store
	Sealer    *crypt.Sealer // seals the token at rest when set
	Navigator Navigator
	Logger    *slog.Logger
	Now       func() time.Time
}

// Manager is safe for concurrent use.
type Manager struct {
	api    Backend
	store  store.Store
	sealer *crypt.Sealer
	nav    Navigator
	log    *slog.Logger
	now    func() time.Time

	mu        sync.RWMutex
	user      *api.User
	token     string
	loading   bool
	state     State
	listeners map[int]func(Snapshot)
	nextID    int
}

// New returns an unauthenticated Manager. Call Verify to resume a
// persisted session.
func New(opts Options) *Manager {
	m := &Manager{
		api:       opts.API,
		store:     opts.Store,
		sealer:    opts.Sealer,
		nav:       opts.Navigator,
		log:       opts.Logger,
		now:       opts.Now,
		listeners: map[int]func(Snapshot){},
	}
	if m.nav == nil {
		m.nav = NavigatorFunc(func(string) {})
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	m.log = m.log.With("component", "session")
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// ------------------- Read side -------------------

func (m *Manager) User() *api.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil && m.token != ""
}

// State returns a consistent snapshot.
func (m *Manager) State() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot()
}

func (m *Manager) snapshot() Snapshot {
	s := Snapshot{Token: m.token, Loading: m.loading, State: m.state}
	if m.user != nil {
		u := *m.user
		s.User = &u
	}
	return s
}

// Subscribe calls fn after every change. The returned func unsubscribes.
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// update applies fn under the lock and then notifies listeners.
func (m *Manager) update(fn func()) {
	m.mu.Lock()
	fn()
	snap := m.snapshot()
	ls := make([]func(Snapshot), 0, len(m.listeners))
	for _, l := range m.listeners {
		ls = append(ls, l)
	}
	m.mu.Unlock()

	for _, l := range ls {
		l(snap)
	}
}

func (m *Manager) setUser(u *api.User, token string) {
	m.update(func() {
		m.user, m.token, m.state = u, token, Authenticated
	})
}

func (m *Manager) clearUser() {
	m.update(func() {
		m.user, m.token, m.state = nil, "", Unauthenticated
	})
}

// ------------------- Token persistence -------------------

// readToken returns the persisted token. present is true whenever a value is
// stored, even one that cannot be read or opened.
func (m *Manager) readToken(ctx context.Context) (token string, present bool) {
	raw, err := store.GetString(ctx, m.store, TokenKey)
	if errors.Is(err, store.ErrNotFound) {
		return "", false
	}
	if err != nil {
		m.log.Warn("session: read token", "error", err)
		return "", true
	}
	if m.sealer == nil || raw == "" {
		return raw, true
	}
	tok, err := m.sealer.Open(raw)
	if err != nil {
		m.log.Warn("session: persisted token cannot be opened", "error", err)
		return "", true
	}
	return tok, true
}

func (m *Manager) writeToken(ctx context.Context, token string) error {
	v := token
	if m.sealer != nil {
		sealed, err := m.sealer.Seal(token)
		if err != nil {
			return err
		}
		v = sealed
	}
	return store.SetString(ctx, m.store, TokenKey, v)
}

func (m *Manager) dropToken(ctx context.Context) {
	if err := m.store.Remove(ctx, TokenKey); err != nil {
		m.log.Warn("session: remove token", "error", err)
	}
}

// expired reports whether token is a JWT whose exp has passed. Opaque
// tokens are never considered expired here.
func (m *Manager) expired(token string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !m.now().Before(claims.ExpiresAt.Time)
}

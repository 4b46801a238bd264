package session_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/internal/api"
	"github.com/shashiranjanraj/storefront/internal/session"
	"github.com/shashiranjanraj/storefront/pkg/crypt"
	sfhttp "github.com/shashiranjanraj/storefront/pkg/http"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/store"
	"github.com/shashiranjanraj/storefront/pkg/testkit"
)

const (
	email    = "ada@example.com"
	password = "secret"
)

type fixture struct {
	backend *testkit.Backend
	client  *api.Client
	store   *store.Memory
	routes  []string
	mu      sync.Mutex
}

func newFixture(t *testing.T, rt http.RoundTripper) *fixture {
	t.Helper()
	f := &fixture{backend: testkit.NewBackend(t), store: store.NewMemory()}
	f.backend.AddUser(email, password, "Ada", "Lovelace")
	if rt == nil {
		rt = http.DefaultTransport
	}
	c := sfhttp.NewClient(sfhttp.Options{BaseURL: f.backend.URL(), Transport: rt, Logger: logger.Discard()})
	f.client = api.New(c, logger.Discard())
	return f
}

func (f *fixture) manager(sealer *crypt.Sealer) *session.Manager {
	return session.New(session.Options{
		API:    f.client,
		Store:  f.store,
		Sealer: sealer,
		Navigator: session.NavigatorFunc(func(route string) {
			f.mu.Lock()
			f.routes = append(f.routes, route)
			f.mu.Unlock()
		}),
		Logger: logger.Discard(),
	})
}

func (f *fixture) persisted(t *testing.T) (string, bool) {
	t.Helper()
	v, err := store.GetString(context.Background(), f.store, session.TokenKey)
	if err == store.ErrNotFound {
		return "", false
	}
	require.NoError(t, err)
	return v, true
}

// assertConsistent checks that a user is set exactly when a token is persisted.
func assertConsistent(t *testing.T, f *fixture, m *session.Manager) {
	t.Helper()
	_, stored := f.persisted(t)
	assert.Equal(t, m.User() != nil, stored, "user set iff token persisted")
	assert.Equal(t, m.User() != nil, m.Token() != "")
	assert.False(t, m.Loading())
}

func TestVerifyWithoutToken(t *testing.T) {
	f := newFixture(t, nil)
	m := f.manager(nil)

	require.NoError(t, m.Verify(context.Background()))
	assert.Nil(t, m.User())
	assert.Equal(t, session.Unauthenticated, m.State().State)
	assert.Zero(t, f.backend.Hits("GET", "/api/auth/verify"))
	assertConsistent(t, f, m)
}

func TestLoginThenVerifyInNewProcess(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first := f.manager(nil)
	require.NoError(t, first.Login(ctx, email, password))
	assert.True(t, first.IsAuthenticated())
	assert.Equal(t, "Ada", first.User().FirstName)
	assertConsistent(t, f, first)

	second := f.manager(nil)
	require.NoError(t, second.Verify(ctx))
	assert.Equal(t, session.Authenticated, second.State().State)
	assert.Equal(t, email, second.User().Email)
	assert.Equal(t, first.Token(), second.Token())
	assertConsistent(t, f, second)
}

func TestVerifyFailureDropsToken(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, store.SetString(ctx, f.store, session.TokenKey, "not-a-jwt"))

	m := f.manager(nil)
	err := m.Verify(ctx)
	assert.ErrorIs(t, err, api.ErrAuthRejected)
	assert.Equal(t, 1, f.backend.Hits("GET", "/api/auth/verify"))
	assertConsistent(t, f, m)
}

func TestVerifyNetworkFailureReleasesLoading(t *testing.T) {
	mt := testkit.NewMockTransport(nil, testkit.MockStep{MatchURL: "/api/auth/verify", Fail: true})
	f := newFixture(t, mt)
	ctx := context.Background()
	require.NoError(t, store.SetString(ctx, f.store, session.TokenKey, "opaque"))

	m := f.manager(nil)
	var seen []session.Snapshot
	var mu sync.Mutex
	defer m.Subscribe(func(s session.Snapshot) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})()

	err := m.Verify(ctx)
	assert.ErrorIs(t, err, api.ErrNetwork)
	assertConsistent(t, f, m)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	assert.True(t, seen[0].Loading)
	assert.Equal(t, session.Verifying, seen[0].State)
	last := seen[len(seen)-1]
	assert.False(t, last.Loading)
	assert.Equal(t, session.Unauthenticated, last.State)
}

func TestExpiredTokenSkipsNetwork(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, store.SetString(ctx, f.store, session.TokenKey, f.backend.Token(email, -time.Minute)))

	m := f.manager(nil)
	err := m.Verify(ctx)
	assert.ErrorIs(t, err, api.ErrAuthRejected)
	assert.Equal(t, "Session expired", session.ResultOf(err).Error)
	assert.Zero(t, f.backend.Hits("GET", "/api/auth/verify"))
	assertConsistent(t, f, m)
}

func TestSealedToken(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	sealer, err := crypt.New("app-key-1")
	require.NoError(t, err)

	m := f.manager(sealer)
	require.NoError(t, m.Login(ctx, email, password))
	raw, ok := f.persisted(t)
	require.True(t, ok)
	assert.NotEqual(t, m.Token(), raw, "token is not stored in clear")

	require.NoError(t, f.manager(sealer).Verify(ctx))

	other, err := crypt.New("app-key-2")
	require.NoError(t, err)
	m2 := f.manager(other)
	require.NoError(t, m2.Verify(ctx))
	assert.Nil(t, m2.User())
	assertConsistent(t, f, m2)
}

func TestUnreadableTokenIsDropped(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	sealer, err := crypt.New("app-key-1")
	require.NoError(t, err)

	require.NoError(t, store.SetString(ctx, f.store, session.TokenKey, "not-a-sealed-value"))
	m := f.manager(sealer)
	require.NoError(t, m.Verify(ctx))

	assert.Nil(t, m.User())
	assertConsistent(t, f, m)
	assert.Zero(t, f.backend.Hits(http.MethodGet, "/api/auth/verify"))
}

func TestVerifyRejectsBodyWithoutUser(t *testing.T) {
	for _, body := range []string{`null`, `{}`, `{"firstName":"Ada"}`} {
		t.Run(body, func(t *testing.T) {
			f := newFixture(t, nil)
			ctx := context.Background()
			require.NoError(t, f.manager(nil).Login(ctx, email, password))

			f.backend.Override(http.MethodGet, "/api/auth/verify", func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(body))
			})

			m := f.manager(nil)
			err := m.Verify(ctx)
			testkit.AssertKind(t, err, api.ErrMalformedResponse, "Invalid server response")
			assert.False(t, m.IsAuthenticated())
			assertConsistent(t, f, m)
			_, stored := f.persisted(t)
			assert.False(t, stored)
		})
	}
}

func TestLoginFailure(t *testing.T) {
	f := newFixture(t, nil)
	m := f.manager(nil)

	err := m.Login(context.Background(), email, "wrong")
	assert.ErrorIs(t, err, api.ErrInvalidCredentials)
	assert.Equal(t, session.Result{Error: "Invalid email or password"}, session.ResultOf(err))
	assert.False(t, m.IsAuthenticated())
	_, stored := f.persisted(t)
	assert.False(t, stored)
}

func TestLogoutIsIdempotentAndNavigates(t *testing.T) {
	f := newFixture(t, nil)
	m := f.manager(nil)
	require.NoError(t, m.Login(context.Background(), email, password))

	m.Logout()
	m.Logout()

	assert.Nil(t, m.User())
	assert.Empty(t, m.Token())
	assertConsistent(t, f, m)
	assert.Equal(t, []string{session.RouteLogin, session.RouteLogin}, f.routes)
}

func TestRegisterDoesNotSignIn(t *testing.T) {
	f := newFixture(t, nil)
	m := f.manager(nil)

	err := m.Register(context.Background(), api.Registration{FirstName: "G", LastName: "H", Email: "g@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.False(t, m.IsAuthenticated())
	assert.Equal(t, []string{session.RouteLogin}, f.routes)

	err = m.Register(context.Background(), api.Registration{Email: email, Password: "pw"})
	assert.ErrorIs(t, err, api.ErrRegistrationRejected)
	assert.Len(t, f.routes, 1)
}

func TestProfileAndPassword(t *testing.T) {
	f := newFixture(t, nil)
	m := f.manager(nil)
	ctx := context.Background()

	assert.ErrorIs(t, m.UpdatePassword(ctx, password, "x"), api.ErrAuthRejected)

	require.NoError(t, m.Login(ctx, email, password))
	require.NoError(t, m.UpdateProfile(ctx, api.Profile{FirstName: "Augusta", LastName: "King", Email: email}))
	u := m.User()
	assert.Equal(t, "Augusta King", u.FullName())
	assert.Equal(t, "USER", u.Role)

	err := m.UpdatePassword(ctx, "wrong", "new")
	assert.Equal(t, "Current password is incorrect", session.ResultOf(err).Error)
	require.NoError(t, m.UpdatePassword(ctx, password, "new"))
	assert.True(t, m.IsAuthenticated())
}

func TestPasswordResetFlow(t *testing.T) {
	f := newFixture(t, nil)
	m := f.manager(nil)
	ctx := context.Background()

	require.NoError(t, m.ResetPassword(ctx, email))
	require.NoError(t, m.CompleteReset(ctx, f.backend.ResetToken(email), "brand-new"))
	require.NoError(t, m.Login(ctx, email, "brand-new"))

	err := m.ResetPassword(ctx, "nobody@example.com")
	assert.Equal(t, session.Result{Error: "User not found"}, session.ResultOf(err))
}

package app_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/internal/api"
	"github.com/shashiranjanraj/storefront/internal/app"
	"github.com/shashiranjanraj/storefront/internal/cart"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/notify"
	"github.com/shashiranjanraj/storefront/pkg/store"
	"github.com/shashiranjanraj/storefront/pkg/testkit"
)

func newApp(t *testing.T, s store.Store, b *testkit.Backend) *app.App {
	t.Helper()
	a, err := app.New(context.Background(), app.Options{
		Store:   s,
		BaseURL: b.URL(),
		Logger:  logger.Discard(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// Guest cart survives sign-in untouched and is emptied after checkout.
func TestGuestCartThroughLoginAndCheckout(t *testing.T) {
	b := testkit.NewBackend(t)
	b.AddUser("ada@example.com", "secret", "Ada", "Lovelace")
	a := newApp(t, store.NewMemory(), b)
	ctx := context.Background()

	p1 := api.Product{ID: 1, Name: "Desk", Price: decimal.RequireFromString("120.50")}
	p2 := api.Product{ID: 2, Name: "Chair", Price: decimal.RequireFromString("45.25")}
	require.NoError(t, a.Cart.AddToCart(ctx, p1, 1))
	require.NoError(t, a.Cart.AddToCart(ctx, p2, 3))

	want := p1.Price.Add(p2.Price.Mul(decimal.NewFromInt(3)))
	assert.Equal(t, 4, a.Cart.ItemCount())
	assert.True(t, a.Cart.Total().Equal(want))

	require.NoError(t, a.Session.Login(ctx, "ada@example.com", "secret"))
	assert.Equal(t, 4, a.Cart.ItemCount())
	assert.True(t, a.Cart.Total().Equal(want))

	a.Cart.ClearCart(ctx)
	assert.Zero(t, a.Cart.ItemCount())

	cur := a.Notifier.Current()
	assert.Equal(t, "Cart cleared", cur.Message)
	assert.Equal(t, notify.Cart, cur.Type)
}

func TestStateSurvivesRestart(t *testing.T) {
	b := testkit.NewBackend(t)
	b.AddUser("ada@example.com", "secret", "Ada", "Lovelace")
	s := store.NewMemory()
	ctx := context.Background()

	first := newApp(t, s, b)
	require.NoError(t, first.Session.Login(ctx, "ada@example.com", "secret"))
	require.NoError(t, first.Cart.Add(ctx, api.Product{ID: 7, Name: "Lamp", Price: decimal.NewFromInt(20)}))
	first.Favourites.Add(ctx, api.Product{ID: 8, Name: "Rug"})
	_, err := first.Prefs.ToggleTheme(ctx)
	require.NoError(t, err)

	second := newApp(t, s, b)
	require.NoError(t, second.Session.Verify(ctx))
	assert.True(t, second.Session.IsAuthenticated())
	assert.Equal(t, 1, second.Cart.ItemCount())
	assert.True(t, second.Favourites.Has(8))
	assert.Equal(t, "dark", string(second.Prefs.Theme()))

	raw, err := s.Get(ctx, cart.Key)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"quantity":1`)
}

func TestSealedTokenWithAppKey(t *testing.T) {
	b := testkit.NewBackend(t)
	b.AddUser("ada@example.com", "secret", "Ada", "Lovelace")
	s := store.NewMemory()
	ctx := context.Background()

	a, err := app.New(ctx, app.Options{Store: s, BaseURL: b.URL(), AppKey: "k", Logger: logger.Discard()})
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.Session.Login(ctx, "ada@example.com", "secret"))

	raw, err := store.GetString(ctx, s, "token")
	require.NoError(t, err)
	assert.NotEqual(t, a.Session.Token(), raw)
}

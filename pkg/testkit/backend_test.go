package testkit_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/internal/api"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	sfhttp "github.com/shashiranjanraj/storefront/pkg/http"
	"github.com/shashiranjanraj/storefront/pkg/testkit"
)

func TestBackendIssuesVerifiableTokens(t *testing.T) {
	b := testkit.NewBackend(t)
	b.AddUser("ada@example.com", "secret", "Ada", "Lovelace")
	c := sfhttp.NewClient(sfhttp.Options{BaseURL: b.URL(), Logger: logger.Discard()})

	resp, err := c.Get("/api/auth/verify").Bearer(b.Token("ada@example.com", time.Hour)).Send(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	testkit.AssertJSONEqual(t, []byte(`{"id":1,"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","imageUrl":null,"role":"USER"}`), resp.Raw)

	resp, err = c.Get("/api/auth/verify").Bearer(b.Token("ada@example.com", -time.Minute)).Send(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 2, b.Hits("GET", "/api/auth/verify"))
}

func TestBackendRefusesCancellingAdvancedOrder(t *testing.T) {
	b := testkit.NewBackend(t)
	b.AddUser("ada@example.com", "secret", "Ada", "Lovelace")
	o := b.AddOrder("ada@example.com", api.StatusPending)
	b.AdvanceOrders()

	c := sfhttp.NewClient(sfhttp.Options{BaseURL: b.URL(), Logger: logger.Discard()})
	resp, err := c.Post("/api/orders/"+o.OrderNumber+"/cancel").
		Bearer(b.Token("ada@example.com", time.Hour)).
		Body(map[string]string{"reason": "other"}).
		Send(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMockTransportFailsThenPassesThrough(t *testing.T) {
	b := testkit.NewBackend(t)
	mt := testkit.NewMockTransport(http.DefaultTransport,
		testkit.MockStep{MatchURL: "/api/products", Fail: true, Times: 1})
	c := sfhttp.NewClient(sfhttp.Options{BaseURL: b.URL(), Transport: mt, Logger: logger.Discard()})

	_, err := c.Get("/api/products").Send(context.Background())
	assert.ErrorIs(t, err, testkit.ErrConnRefused)

	resp, err := c.Get("/api/products").Send(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.OK())
	mt.AssertAllCalled(t)
}

package chat_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/internal/api"
	"github.com/shashiranjanraj/storefront/internal/chat"
	"github.com/shashiranjanraj/storefront/internal/session"
	sfhttp "github.com/shashiranjanraj/storefront/pkg/http"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/testkit"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestSendAndHistory(t *testing.T) {
	b := testkit.NewBackend(t)
	b.AddUser("ada@example.com", "secret", "Ada", "Lovelace")
	client := api.New(sfhttp.NewClient(sfhttp.Options{BaseURL: b.URL(), Logger: logger.Discard()}), logger.Discard())
	c := chat.New(client, staticToken(b.Token("ada@example.com", time.Hour)), logger.Discard())
	ctx := context.Background()

	require.NoError(t, c.Send(ctx, "hello"))
	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Message)
	assert.True(t, msgs[0].UserMessage)

	c.Clear()
	assert.Empty(t, c.Messages())
	require.NoError(t, c.History(ctx))
	assert.Len(t, c.Messages(), 2)
}

func TestSendErrors(t *testing.T) {
	mt := testkit.NewMockTransport(nil,
		testkit.MockStep{MatchURL: "/api/chat/send", StatusCode: 500, Body: `{"error":"Bot is sleeping"}`, Times: 1},
		testkit.MockStep{MatchURL: "/api/chat/send", StatusCode: 500, ContentType: "text/plain", Body: "oops", Times: 1},
		testkit.MockStep{MatchURL: "/api/chat/send", Fail: true, Times: 1},
	)
	client := api.New(sfhttp.NewClient(sfhttp.Options{BaseURL: "http://shop.test", Transport: mt, Logger: logger.Discard()}), logger.Discard())
	c := chat.New(client, staticToken("t"), logger.Discard())
	ctx := context.Background()

	assert.Equal(t, session.Result{Error: "Bot is sleeping"}, session.ResultOf(c.Send(ctx, "hi")))
	assert.Equal(t, session.Result{Error: "Failed to send message"}, session.ResultOf(c.Send(ctx, "hi")))
	assert.Equal(t, session.Result{Error: "Network error"}, session.ResultOf(c.Send(ctx, "hi")))
	assert.Empty(t, c.Messages())
	mt.AssertAllCalled(t)
}

func TestHistoryWithoutSessionIsNoop(t *testing.T) {
	mt := testkit.NewMockTransport(nil)
	client := api.New(sfhttp.NewClient(sfhttp.Options{Transport: mt, Logger: logger.Discard()}), logger.Discard())
	c := chat.New(client, staticToken(""), logger.Discard())

	require.NoError(t, c.History(context.Background()))
	assert.Empty(t, c.Messages())
}

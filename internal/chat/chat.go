// Package chat holds the support chat transcript for the signed-in user.
package chat

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shashiranjanraj/storefront/internal/api"
)

// Backend is the subset of api.Client used here.
type Backend interface {
	ChatHistory(ctx context.Context, token string) ([]api.ChatMessage, error)
	SendChat(ctx context.Context, token, message string) (*api.ChatExchange, error)
}

// TokenSource supplies the bearer token.
type TokenSource interface {
	Token() string
}

type Chat struct {
	api     Backend
	session TokenSource
	log     *slog.Logger

	mu       sync.RWMutex
	messages []api.ChatMessage
}

func New(b Backend, s TokenSource, log *slog.Logger) *Chat {
	if log == nil {
		log = slog.Default()
	}
	return &Chat{api: b, session: s, log: log.With("component", "chat"), messages: []api.ChatMessage{}}
}

// History replaces the transcript with the backend's copy. Without a
// session it does nothing.
func (c *Chat) History(ctx context.Context) error {
	token := c.session.Token()
	if token == "" {
		return nil
	}
	history, err := c.api.ChatHistory(ctx, token)
	if err != nil {
		c.log.Warn("chat: load history", "error", err)
		return err
	}
	c.mu.Lock()
	c.messages = history
	c.mu.Unlock()
	return nil
}

// Send posts message and appends both it and the reply.
func (c *Chat) Send(ctx context.Context, message string) error {
	ex, err := c.api.SendChat(ctx, c.session.Token(), message)
	if err != nil {
		c.log.Warn("chat: send", "error", err)
		return err
	}
	c.mu.Lock()
	c.messages = append(c.messages, ex.UserMessage, ex.BotResponse)
	c.mu.Unlock()
	return nil
}

// Clear empties the local transcript only.
func (c *Chat) Clear() {
	c.mu.Lock()
	c.messages = []api.ChatMessage{}
	c.mu.Unlock()
}

// Messages returns a copy of the transcript.
func (c *Chat) Messages() []api.ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]api.ChatMessage{}, c.messages...)
}

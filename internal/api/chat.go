package api

import (
	"context"
	"strings"
)

// ChatHistory returns the signed-in user's conversation, oldest first.
func (c *Client) ChatHistory(ctx context.Context, token string) ([]ChatMessage, error) {
	const op = "chat.history"
	resp, err := c.send(ctx, op, c.http.Get("/api/chat/history").Bearer(token))
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, rejected(op, resp, nil, "Failed to load chat history")
	}
	var history []ChatMessage
	if err := decode(op, resp, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// SendChat posts message and returns both sides of the exchange.
func (c *Client) SendChat(ctx context.Context, token, message string) (*ChatExchange, error) {
	const op = "chat.send"
	if strings.TrimSpace(message) == "" {
		return nil, &Error{Op: op, Kind: ErrValidationRejected, Message: "Message cannot be empty"}
	}
	resp, err := c.send(ctx, op, c.http.Post("/api/chat/send").Bearer(token).
		Body(map[string]string{"message": message}))
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, rejected(op, resp, nil, "Failed to send message")
	}
	var ex ChatExchange
	if err := decode(op, resp, &ex); err != nil {
		return nil, err
	}
	return &ex, nil
}

package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidReason is returned before any request when a cancellation
// reason is outside CancelReasons.
var ErrInvalidReason = fmt.Errorf("unknown cancellation reason: %w", ErrValidationRejected)

// Orders lists the signed-in user's orders. A 2xx body that is not a JSON
// array yields an empty list.
func (c *Client) Orders(ctx context.Context, token string) ([]Order, error) {
	const op = "orders.list"
	resp, err := c.send(ctx, op, c.http.Get("/api/orders").Bearer(token))
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, rejected(op, resp, nil, "Failed to fetch orders")
	}
	if !isJSONArray(resp.Raw) {
		c.log.Warn("api: order list is not an array", "status", resp.StatusCode)
		return []Order{}, nil
	}
	var orders []Order
	if err := decode(op, resp, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CancelOrder asks the backend to cancel orderNumber and returns the order
// as it now stands.
func (c *Client) CancelOrder(ctx context.Context, token, orderNumber string, reason CancelReason) (*Order, error) {
	const op = "orders.cancel"
	if !reason.Valid() {
		return nil, &Error{Op: op, Kind: ErrInvalidReason, Message: "Please select a reason for cancellation"}
	}
	if strings.TrimSpace(orderNumber) == "" {
		return nil, &Error{Op: op, Kind: ErrNotFound, Message: "Order number is required"}
	}

	path := "/api/orders/" + url.PathEscape(orderNumber) + "/cancel"
	resp, err := c.send(ctx, op, c.http.Post(path).Bearer(token).
		Body(map[string]string{"reason": string(reason)}))
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, rejected(op, resp, nil, "Failed to cancel order")
	}
	var o Order
	if err := decode(op, resp, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

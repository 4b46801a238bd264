// Package api is the typed client for the storefront REST backend. It turns
// HTTP outcomes into the error kinds in errors.go; it holds no state.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	sfhttp "github.com/shashiranjanraj/storefront/pkg/http"
)

// Client calls the backend through an sfhttp.Client.
type Client struct {
	http *sfhttp.Client
	log  *slog.Logger
}

// New wraps c. log may be nil.
func New(c *sfhttp.Client, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{http: c, log: log}
}

// send executes req and maps a transport failure to ErrNetwork.
func (c *Client) send(ctx context.Context, op string, req *sfhttp.Request) (*sfhttp.Response, error) {
	resp, err := req.Endpoint(op).Send(ctx)
	if err != nil {
		c.log.Warn("api: transport failure", "op", op, "error", err)
		return nil, &Error{Op: op, Kind: ErrNetwork, Message: "Network error", Err: err}
	}
	return resp, nil
}

// rejected builds the error for a non-2xx response. kind nil means "derive
// from status"; fallback is used when the body carries no message.
func rejected(op string, resp *sfhttp.Response, kind error, fallback string) *Error {
	if kind == nil {
		kind = kindForStatus(resp.StatusCode)
	}
	msg := bodyMessage(resp)
	if msg == "" {
		msg = fallback
	}
	return &Error{Op: op, Kind: kind, Status: resp.StatusCode, Message: msg}
}

// bodyMessage reads {"message": ...} or {"error": ...} from a JSON body.
func bodyMessage(resp *sfhttp.Response) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(resp.Raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

func decode(op string, resp *sfhttp.Response, dest interface{}) error {
	if err := resp.JSON(dest); err != nil {
		return &Error{Op: op, Kind: ErrMalformedResponse, Status: resp.StatusCode, Message: "Invalid server response", Err: err}
	}
	return nil
}

func isJSONArray(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

// ------------------- Auth -------------------

// Verify resolves token to its user.
func (c *Client) Verify(ctx context.Context, token string) (*User, error) {
	const op = "auth.verify"
	resp, err := c.send(ctx, op, c.http.Get("/api/auth/verify").Bearer(token))
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, rejected(op, resp, nil, "Session expired")
	}
	if !resp.IsJSON() {
		return nil, &Error{Op: op, Kind: ErrMalformedResponse, Status: resp.StatusCode, Message: "Invalid server response"}
	}
	var u User
	if err := decode(op, resp, &u); err != nil {
		return nil, err
	}
	// null and {} decode cleanly; a user always carries an email.
	if u.Email == "" {
		return nil, &Error{Op: op, Kind: ErrMalformedResponse, Status: resp.StatusCode, Message: "Invalid server response"}
	}
	return &u, nil
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	const op = "auth.login"
	resp, err := c.send(ctx, op, c.http.Post("/api/auth/login").Retry(c.http.Retries()).
		Body(map[string]string{"email": email, "password": password}))
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, rejected(op, resp, ErrInvalidCredentials, "Login failed")
	}
	if !resp.IsJSON() {
		return nil, &Error{Op: op, Kind: ErrMalformedResponse, Status: resp.StatusCode, Message: "Invalid server response"}
	}
	var out LoginResponse
	if err := decode(op, resp, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, &Error{Op: op, Kind: ErrMissingToken, Status: resp.StatusCode, Message: "No token received"}
	}
	return &out, nil
}

// Register creates an account. It does not sign the user in.
func (c *Client) Register(ctx context.Context, r Registration) error {
	const op = "auth.register"
	resp, err := c.send(ctx, op, c.http.Post("/api/auth/register").Body(r))
	if err != nil {
		return err
	}
	if !resp.OK() {
		return rejected(op, resp, ErrRegistrationRejected, "Registration failed")
	}
	return nil
}

// UpdateProfile saves p and returns the user as stored.
func (c *Client) UpdateProfile(ctx context.Context, token string, p Profile) (*User, error) {
	const op = "auth.profile"
	resp, err := c.send(ctx, op, c.http.Put("/api/auth/profile").Bearer(token).Body(p))
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, rejected(op, resp, nil, "Profile update failed")
	}
	var u User
	if err := decode(op, resp, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ChangePassword replaces the signed-in user's password.
func (c *Client) ChangePassword(ctx context.Context, token, current, next string) error {
	const op = "auth.change_password"
	resp, err := c.send(ctx, op, c.http.Post("/api/auth/change-password").Bearer(token).
		Body(map[string]string{"currentPassword": current, "newPassword": next}))
	if err != nil {
		return err
	}
	if !resp.OK() {
		return rejected(op, resp, nil, "Password update failed")
	}
	return nil
}

// ResetPassword asks the backend to email a reset link.
func (c *Client) ResetPassword(ctx context.Context, email string) error {
	const op = "auth.reset_password"
	resp, err := c.send(ctx, op, c.http.Post("/api/auth/reset-password").
		Body(map[string]string{"email": email}))
	if err != nil {
		return err
	}
	if resp.OK() {
		return nil
	}

	var body struct {
		Message string `json:"message"`
	}
	msg := ""
	if err := json.Unmarshal(resp.Raw, &body); err != nil {
		msg = "Invalid server response"
	} else {
		msg = body.Message
	}
	if msg == "" {
		msg = fmt.Sprintf("Password reset failed (%d)", resp.StatusCode)
	}
	return &Error{Op: op, Kind: kindForStatus(resp.StatusCode), Status: resp.StatusCode, Message: msg}
}

// CompleteReset sets a new password using the emailed reset token.
func (c *Client) CompleteReset(ctx context.Context, resetToken, newPassword string) error {
	const op = "auth.complete_reset"
	resp, err := c.send(ctx, op, c.http.Post("/api/auth/complete-reset").
		Body(map[string]string{"token": resetToken, "newPassword": newPassword}))
	if err != nil {
		return err
	}
	if !resp.OK() {
		return rejected(op, resp, nil, "Failed to reset password")
	}
	return nil
}

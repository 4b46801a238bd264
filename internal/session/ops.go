package session

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/storefront/internal/api"
)

// Result is the {success, error} shape forms branch on.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ResultOf converts an operation's error into a Result.
func ResultOf(err error) Result {
	if err == nil {
		return Result{Success: true}
	}
	return Result{Error: api.Message(err)}
}

var errNotSignedIn = &api.Error{Op: "session", Kind: api.ErrAuthRejected, Message: "You are not signed in"}

// Verify resumes the persisted session. A missing token is not an error.
// Any failure drops the persisted token and leaves the session signed out;
// there is no retry.
func (m *Manager) Verify(ctx context.Context) error {
	m.update(func() {
		m.loading, m.state = true, Verifying
	})
	defer func() {
		m.update(func() {
			m.loading = false
			if m.user == nil {
				m.state = Unauthenticated
			}
		})
	}()

	token, present := m.readToken(ctx)
	if token == "" {
		if present {
			m.dropToken(ctx)
		}
		m.clearUser()
		return nil
	}

	if m.expired(token) {
		m.log.Info("session: persisted token has expired")
		m.dropToken(ctx)
		m.clearUser()
		return &api.Error{Op: "auth.verify", Kind: api.ErrAuthRejected, Message: "Session expired"}
	}

	u, err := m.api.Verify(ctx, token)
	if err != nil {
		m.log.Info("session: verification failed", "error", err)
		m.dropToken(ctx)
		m.clearUser()
		return err
	}

	m.setUser(u, token)
	m.log.Debug("session: verified", "email", u.Email)
	return nil
}

// Login signs in and persists the returned token.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	out, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.log.Info("session: login failed", "email", email, "error", err)
		return err
	}
	if err := m.writeToken(ctx, out.Token); err != nil {
		return fmt.Errorf("session: persist token: %w", err)
	}

	u := out.User
	m.setUser(&u, out.Token)
	m.log.Info("session: signed in", "email", u.Email)
	return nil
}

// Logout forgets the session and sends the caller to the login view.
// Calling it while signed out is harmless.
func (m *Manager) Logout() {
	m.dropToken(context.Background())
	m.clearUser()
	m.nav.Navigate(RouteLogin)
}

// Register creates an account. It does not sign in; on success the caller
// is sent to the login view.
func (m *Manager) Register(ctx context.Context, r api.Registration) error {
	if err := m.api.Register(ctx, r); err != nil {
		return err
	}
	m.nav.Navigate(RouteLogin)
	return nil
}

// UpdateProfile saves p and refreshes the in-memory user.
func (m *Manager) UpdateProfile(ctx context.Context, p api.Profile) error {
	token := m.Token()
	if token == "" {
		return errNotSignedIn
	}
	u, err := m.api.UpdateProfile(ctx, token, p)
	if err != nil {
		return err
	}

	m.update(func() {
		if m.user == nil || m.token != token {
			return
		}
		next := *m.user
		next.FirstName, next.LastName, next.Email = u.FirstName, u.LastName, u.Email
		next.ImageURL = u.ImageURL
		m.user = &next
	})
	return nil
}

// UpdatePassword changes the password. Session state is untouched.
func (m *Manager) UpdatePassword(ctx context.Context, current, next string) error {
	token := m.Token()
	if token == "" {
		return errNotSignedIn
	}
	return m.api.ChangePassword(ctx, token, current, next)
}

// ResetPassword starts the emailed reset flow. No session is needed.
func (m *Manager) ResetPassword(ctx context.Context, email string) error {
	return m.api.ResetPassword(ctx, email)
}

// CompleteReset forwards the emailed reset token with the new password.
func (m *Manager) CompleteReset(ctx context.Context, resetToken, newPassword string) error {
	return m.api.CompleteReset(ctx, resetToken, newPassword)
}

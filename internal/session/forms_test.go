package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/storefront/internal/api"
	"github.com/shashiranjanraj/storefront/internal/session"
	"github.com/shashiranjanraj/storefront/pkg/testkit"
)

func TestRegisterFormValidate(t *testing.T) {
	f := session.RegisterForm{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
		Password: "Engine#1843", ConfirmPassword: "Engine#1843",
	}
	assert.NoError(t, f.Validate())
	assert.Equal(t, api.Registration{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "Engine#1843",
	}, f.Registration())

	weak := f
	weak.Password, weak.ConfirmPassword = "engine", "engine"
	testkit.AssertKind(t, weak.Validate(), api.ErrValidationRejected, session.MsgWeakPassword)

	mismatch := f
	mismatch.ConfirmPassword = "Engine#1844"
	testkit.AssertKind(t, mismatch.Validate(), api.ErrValidationRejected, session.MsgPasswordMismatch)

	noEmail := f
	noEmail.Email = "ada"
	testkit.AssertKind(t, noEmail.Validate(), api.ErrValidationRejected, "The email must be a valid email address.")
}

func TestPasswordFormValidate(t *testing.T) {
	assert.NoError(t, session.PasswordForm{CurrentPassword: "old", NewPassword: "new", ConfirmPassword: "new"}.Validate())

	err := session.PasswordForm{CurrentPassword: "old", NewPassword: "new", ConfirmPassword: "nwe"}.Validate()
	testkit.AssertKind(t, err, api.ErrValidationRejected, session.MsgPasswordMismatch)

	err = session.PasswordForm{NewPassword: "new", ConfirmPassword: "new"}.Validate()
	testkit.AssertKind(t, err, api.ErrValidationRejected, "The currentPassword field is required.")
}

func TestResetFormValidate(t *testing.T) {
	assert.NoError(t, session.ResetForm{Token: "tok", NewPassword: "Engine#1843"}.Validate())

	err := session.ResetForm{Token: "tok", NewPassword: "short"}.Validate()
	testkit.AssertKind(t, err, api.ErrValidationRejected, session.MsgWeakPassword)

	err = session.ResetForm{NewPassword: "Engine#1843"}.Validate()
	testkit.AssertKind(t, err, api.ErrValidationRejected, "The token field is required.")
}

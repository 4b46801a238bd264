package session

import (
	"github.com/shashiranjanraj/storefront/internal/api"
	"github.com/shashiranjanraj/storefront/pkg/validate"
)

// Messages shown when a form fails local checks.
const (
	MsgWeakPassword     = "Please meet all password requirements"
	MsgPasswordMismatch = "Passwords do not match"
)

// RegisterForm is the sign-up form including the confirmation field.
type RegisterForm struct {
	FirstName       string `json:"firstName" validate:"required,max=50"`
	LastName        string `json:"lastName" validate:"required,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,password"`
	ConfirmPassword string `json:"confirmPassword" validate:"same=Password"`
}

// Validate checks the form before it is submitted.
func (f RegisterForm) Validate() error {
	return formError("form.register", validate.Struct(f), "password", "confirmPassword", "firstName", "lastName", "email")
}

// Registration is the payload sent to the backend.
func (f RegisterForm) Registration() api.Registration {
	return api.Registration{FirstName: f.FirstName, LastName: f.LastName, Email: f.Email, Password: f.Password}
}

// PasswordForm changes the password of the signed-in user. The backend does
// not enforce strength here, so only the confirmation is checked.
type PasswordForm struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"same=NewPassword"`
}

func (f PasswordForm) Validate() error {
	return formError("form.password", validate.Struct(f), "confirmPassword", "currentPassword", "newPassword")
}

// ResetForm completes a password reset with the emailed token.
type ResetForm struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,password"`
}

func (f ResetForm) Validate() error {
	return formError("form.reset", validate.Struct(f), "newPassword", "token")
}

// formError turns the first failing field, in order, into a validation
// error carrying the message a user sees.
func formError(op string, errs map[string]string, order ...string) error {
	if !validate.HasErrors(errs) {
		return nil
	}
	for _, field := range order {
		msg, ok := errs[field]
		if !ok {
			continue
		}
		switch field {
		case "password", "newPassword":
			if errs[field] != "The "+field+" field is required." {
				msg = MsgWeakPassword
			}
		case "confirmPassword":
			msg = MsgPasswordMismatch
		}
		return &api.Error{Op: op, Kind: api.ErrValidationRejected, Message: msg}
	}
	return &api.Error{Op: op, Kind: api.ErrValidationRejected, Message: "Please check the form"}
}

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/storefront/pkg/validate"
)

type signupInput struct {
	Name     string `json:"name"     validate:"required,min=2,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
	Confirm  string `json:"confirm"  validate:"same=Password"`
	Theme    string `json:"theme"    validate:"in=light|dark"`
	Age      int    `json:"age"      validate:"required"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(signupInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "Secret1!x",
		Confirm:  "Secret1!x",
		Theme:    "dark",
	})
	assert.False(t, validate.HasErrors(errs), "got %v", errs)
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(&signupInput{Theme: "light"})
	assert.Equal(t, "The name field is required.", errs["name"])
	assert.Equal(t, "The email field is required.", errs["email"])
	assert.Equal(t, "The password field is required.", errs["password"])
	assert.NotContains(t, errs, "confirm")
	assert.NotContains(t, errs, "age", "non-string fields are skipped")
}

func TestRules(t *testing.T) {
	errs := validate.Struct(signupInput{
		Name:     "A",
		Email:    "not-an-email",
		Password: "Secret1!x",
		Confirm:  "secret1!x",
		Theme:    "blue",
	})
	assert.Equal(t, "The name must be at least 2 characters.", errs["name"])
	assert.Equal(t, "The email must be a valid email address.", errs["email"])
	assert.Equal(t, "The confirm does not match.", errs["confirm"])
	assert.Equal(t, "The selected theme is invalid.", errs["theme"])
	assert.NotContains(t, errs, "password")
}

func TestCheckPassword(t *testing.T) {
	s := validate.CheckPassword("abc")
	assert.False(t, s.OK())
	assert.Equal(t, []string{
		"at least 8 characters",
		"an uppercase letter",
		"a number",
		"a special character (!@#$%^&*)",
	}, s.Missing())

	assert.True(t, validate.CheckPassword("Abcdef1@").OK())
	assert.False(t, validate.CheckPassword("Abcdef1?").OK(), "? is not a special character")
}

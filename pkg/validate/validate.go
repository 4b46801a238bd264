// Package validate checks form structs against their `validate` tags before
// anything is sent to the backend.
//
// Supported rules (comma-separated):
//
//	required        field must not be empty
//	email           valid email address
//	min=N           at least N characters
//	max=N           at most N characters
//	in=a|b|c        value must be one of the listed items
//	same=Field      value must equal the sibling Go field named Field
//	password        at least 8 characters with upper, lower, digit and one of !@#$%^&*
//
// Example:
//
//	type Signup struct {
//	    Email    string `json:"email"    validate:"required,email"`
//	    Password string `json:"password" validate:"required,password"`
//	    Confirm  string `json:"confirm"  validate:"same=Password"`
//	}
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// MinPasswordLength is the shortest password the password rule accepts.
const MinPasswordLength = 8

// Struct validates the exported string fields of v that carry a `validate`
// tag. It returns json field name → message; an empty map means valid.
// Only the first failing rule per field is reported.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || field.Type.Kind() != reflect.String {
			continue
		}

		name := jsonFieldName(field)
		value := rv.Field(i).String()
		for _, rule := range strings.Split(tag, ",") {
			if msg := apply(strings.TrimSpace(rule), name, value, rv); msg != "" {
				errs[name] = msg
				break
			}
		}
	}
	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

func apply(rule, field, value string, parent reflect.Value) string {
	key, param, _ := strings.Cut(rule, "=")

	switch key {
	case "required":
		if strings.TrimSpace(value) == "" {
			return fmt.Sprintf("The %s field is required.", field)
		}
	case "email":
		if !emailRE.MatchString(value) {
			return fmt.Sprintf("The %s must be a valid email address.", field)
		}
	case "min":
		if n, _ := strconv.Atoi(param); len([]rune(value)) < n {
			return fmt.Sprintf("The %s must be at least %s characters.", field, param)
		}
	case "max":
		if n, _ := strconv.Atoi(param); len([]rune(value)) > n {
			return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
		}
	case "in":
		for _, a := range strings.Split(param, "|") {
			if value == a {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", field)
	case "same":
		other := parent.FieldByName(param)
		if !other.IsValid() || other.Kind() != reflect.String || other.String() != value {
			return fmt.Sprintf("The %s does not match.", field)
		}
	case "password":
		if missing := CheckPassword(value).Missing(); len(missing) > 0 {
			return fmt.Sprintf("The %s needs %s.", field, strings.Join(missing, ", "))
		}
	}
	return ""
}

// Strength is the per-requirement result of CheckPassword.
type Strength struct {
	Length    bool
	Uppercase bool
	Lowercase bool
	Number    bool
	Special   bool
}

// CheckPassword evaluates pw against each password requirement.
func CheckPassword(pw string) Strength {
	s := Strength{Length: len([]rune(pw)) >= MinPasswordLength}
	for _, c := range pw {
		switch {
		case unicode.IsUpper(c):
			s.Uppercase = true
		case unicode.IsLower(c):
			s.Lowercase = true
		case unicode.IsDigit(c):
			s.Number = true
		case strings.ContainsRune(specials, c):
			s.Special = true
		}
	}
	return s
}

// OK reports whether every requirement is met.
func (s Strength) OK() bool {
	return s.Length && s.Uppercase && s.Lowercase && s.Number && s.Special
}

// Missing names the unmet requirements in display order.
func (s Strength) Missing() []string {
	var out []string
	if !s.Length {
		out = append(out, fmt.Sprintf("at least %d characters", MinPasswordLength))
	}
	if !s.Uppercase {
		out = append(out, "an uppercase letter")
	}
	if !s.Lowercase {
		out = append(out, "a lowercase letter")
	}
	if !s.Number {
		out = append(out, "a number")
	}
	if !s.Special {
		out = append(out, "a special character ("+specials+")")
	}
	return out
}

const specials = "!@#$%^&*"

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func jsonFieldName(f reflect.StructField) string {
	name := f.Tag.Get("json")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	if idx := strings.Index(name, ","); idx != -1 {
		name = name[:idx]
	}
	return name
}

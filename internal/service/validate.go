package service

import (
	"errors"  // Error inspection
	"fmt"     // Message formatting
	"reflect" // JSON field names
	"strings" // Tag parsing
	"unicode" // Password character classes

	"github.com/go-playground/validator/v10" // Struct validation

	"store_rating/internal/domain" // Domain models and error kinds
)

// passwordSpecials are the special characters a password may contain.
const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

var validate = newValidator() // Shared, safe for concurrent use

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",") // Report JSON names in messages
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return validPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return domain.Role(fl.Field().String()).Valid()
	})
	return v
}

// validPassword requires 8-16 characters drawn from letters, digits and
// passwordSpecials, with at least one upper-case letter and one special.
func validPassword(pw string) bool {
	if n := len(pw); n < 8 || n > 16 {
		return false // Length out of range
	}
	var upper, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r) && r < unicode.MaxASCII:
			upper = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		case r < unicode.MaxASCII && (unicode.IsLower(r) || unicode.IsDigit(r)): // Allowed, nothing to record
		default:
			return false // Character outside the allowed set
		}
	}
	return upper && special
}

// check validates in and reports the first violation as InvalidInput.
func check(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.InvalidInput("%s", err.Error())
	}
	return domain.InvalidInput("%s", describe(verrs[0])) // First violation only
}

// describe renders a validation failure for API clients
func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "email":
		return field + " must be a valid email address"
	case "uuid":
		return field + " must be a valid id"
	case "password":
		return field + " must be 8-16 characters with at least one uppercase letter and one special character"
	case "role":
		return field + " must be one of ADMIN, STORE_OWNER, USER"
	case "gte", "lte":
		return fmt.Sprintf("%s must be between %d and %d", field, domain.MinRating, domain.MaxRating)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

package utils

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	upperPattern    = regexp.MustCompile(`[A-Z]`)
	lowerPattern    = regexp.MustCompile(`[a-z]`)
	digitPattern    = regexp.MustCompile(`[0-9]`)
)

// RegisterValidators reports json field names in validation errors and adds
// the "username" and "password" tags to gin's validator.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return ValidUsername(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return PasswordProblem(fl.Field().String()) == ""
	})
}

func ValidUsername(s string) bool {
	return len(s) >= 3 && len(s) <= 30 && usernamePattern.MatchString(s)
}

// PasswordProblem returns a user facing reason the password is too weak, or
// "" when it is acceptable.
func PasswordProblem(p string) string {
	switch {
	case len(p) < 8:
		return "Password must be at least 8 characters"
	case !upperPattern.MatchString(p):
		return "Password must contain at least one uppercase letter"
	case !lowerPattern.MatchString(p):
		return "Password must contain at least one lowercase letter"
	case !digitPattern.MatchString(p):
		return "Password must contain at least one number"
	}
	return ""
}

// EmailDomain returns the lower-cased part after the last "@".
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(email[at+1:]))
}

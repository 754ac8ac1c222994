package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// MinPhoneDigits is the minimum number of digits accepted by the "phone" tag.
const MinPhoneDigits = 10

// v is the package-level singleton validator. Field names are reported by
// their json tag so messages match the request bodies.
var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := val.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return PhoneDigits(fl.Field().String()) >= MinPhoneDigits
	}); err != nil {
		panic(err)
	}
	return val
}

// FieldError is a single failed rule on a json field.
type FieldError struct {
	Field string
	Tag   string
}

// PhoneDigits counts the digits in s, ignoring separators such as spaces,
// dashes and parentheses.
func PhoneDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// Fields validates s and returns every failed rule in struct field order.
// A nil slice means s is valid.
func Fields(s interface{}) []FieldError {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []FieldError{{Tag: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, fe := range ve {
		out = append(out, FieldError{Field: fe.Field(), Tag: fe.Tag()})
	}
	return out
}

// Struct validates the given struct using its validate tags.
// Returns a human-readable error string or nil.
func Struct(s interface{}) error {
	fields := Fields(s)
	if len(fields) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(fields))
	for _, fe := range fields {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field, fe.Tag))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

// Email reports whether s is a well-formed email address.
func Email(s string) bool {
	return v.Var(s, "required,email") == nil
}

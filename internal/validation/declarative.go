// internal/validation/declarative.go
//
// Declarative field rules on top of go-playground/validator.
//
// Context
// -------
// Settings structs carry `validate:"…"` tags next to their `settings:"…"`
// binder tags.  Field paths reported here use the binder names, so an
// operator sees `SmtpIp` in both a bind failure and a validation failure.
//
// Custom rules
// ------------
//   - dottedquad: four dot-separated decimal octets, each 0..255.
//
// Notes
// -----
//   - validator collects every failing tag on every field, so this stage
//     never short-circuits either.
//   - The validator instance is a package-level singleton; it caches struct
//     metadata and is safe for concurrent use.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yanizio/forecast/internal/event"
)

var dottedQuadRe = regexp.MustCompile(
	`^((25[0-5]|2[0-4][0-9]|1[0-9]{2}|[1-9]?[0-9])\.){3}(25[0-5]|2[0-4][0-9]|1[0-9]{2}|[1-9]?[0-9])$`)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())

	val.RegisterTagNameFunc(func(sf reflect.StructField) string {
		tag := sf.Tag.Get("settings")
		if tag == "-" {
			return "-"
		}
		if name := strings.TrimSpace(strings.SplitN(tag, ",", 2)[0]); name != "" {
			return name
		}
		return sf.Name
	})

	_ = val.RegisterValidation("dottedquad", func(fl validator.FieldLevel) bool {
		return dottedQuadRe.MatchString(fl.Field().String())
	})
	return val
}

// IsDottedQuad reports whether s is a syntactically valid IPv4 dotted quad.
func IsDottedQuad(s string) bool { return dottedQuadRe.MatchString(s) }

// Declarative runs the struct tags of s.  Non-struct values yield nothing.
func Declarative(s any) Errors {
	rv := reflect.ValueOf(s)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return Errors{{Stage: event.StageDeclarative, Message: err.Error()}}
	}

	out := make(Errors, 0, len(ves))
	for _, fe := range ves {
		out = append(out, FieldError{
			Stage:   event.StageDeclarative,
			Field:   fieldPath(fe.Namespace()),
			Message: message(fe),
		})
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		if isString {
			return fmt.Sprintf("length must be at least %s", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		if isString {
			return fmt.Sprintf("length must be at most %s", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "dottedquad":
		return "invalid IP address format"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "hostname_port":
		return "must be in host:port form"
	default:
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}

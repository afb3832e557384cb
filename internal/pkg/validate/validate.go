// Package validate registers the custom binding rules used by blog forms and
// flattens binding failures into per-field messages.
package validate

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
)

// UsernameMaxLength mirrors the users.username column size.
const UsernameMaxLength = 150

var (
	slugRe     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

	registerOnce sync.Once
)

// Register installs the slug and username rules on gin's validator engine
// and makes field errors report form names instead of struct names.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldName)
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugRe.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return len(s) <= UsernameMaxLength && usernameRe.MatchString(s)
		})
	})
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// FieldErrors converts a binding error into form field messages. Errors that
// are not tied to a field land under "__all__".
func FieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}
	out := map[string]string{}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out[fe.Field()] = message(fe)
		}
		return out
	}

	var numErr *json.UnmarshalTypeError
	if errors.As(err, &numErr) && numErr.Field != "" {
		out[numErr.Field] = "Enter a valid value."
		return out
	}
	out["__all__"] = err.Error()
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "slug":
		return "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "eqfield":
		return "The two password fields didn't match."
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}

var pubDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParsePubDate accepts the datetime-local and ISO forms a publication date
// may be submitted in. Values without an offset are read in loc.
func ParsePubDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.NotValidf("empty date")
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.NotValidf("date %q", raw)
}

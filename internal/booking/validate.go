package booking

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	return v
}()

// ValidationError lists client-side validation failures. No request is sent
// when one is returned.
type ValidationError struct {
	Fields []string
	msgs   []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.msgs, "; ")
}

// UserMessage is the first failure, phrased for display.
func (e *ValidationError) UserMessage() string {
	if len(e.msgs) == 0 {
		return ""
	}
	return e.msgs[0]
}

// Validate checks s against its validate tags and returns a *ValidationError.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("booking.Validate: %w", err)
	}
	ve := &ValidationError{}
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, fe.Field())
		ve.msgs = append(ve.msgs, describe(fe))
	}
	return ve
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "len":
		return fmt.Sprintf("%s must be %s characters", fe.Field(), fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}

// Credentials is the login form input.
type Credentials struct {
	Email    string `validate:"required,email" label:"email"`
	Password string `validate:"required" label:"password"`
}

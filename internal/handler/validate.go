package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// FieldError is one entry of a 400 "Validation failed" response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field that failed.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)

// Validator adapts validator/v10 to echo.Validator. Field names are taken
// from json tags. A `msg` struct tag overrides the generated message.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(dateLayout, fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("expiry", func(fl validator.FieldLevel) bool {
		return expiryPattern.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}
	t := reflect.TypeOf(i)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	out := &ValidationError{}
	for _, fe := range errs {
		msg := ""
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			msg = sf.Tag.Get("msg")
		}
		if msg == "" {
			msg = describe(fe)
		}
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Valid email required"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	case "date":
		return fmt.Sprintf("Valid %s date required (YYYY-MM-DD)", fe.Field())
	}
	return fe.Field() + " is invalid"
}

// bindJSON decodes the request body into req.
func bindJSON(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON in request body").SetInternal(err)
	}
	return nil
}

// bindValid decodes the JSON body into req and validates it.
func bindValid(c echo.Context, req any) error {
	if err := bindJSON(c, req); err != nil {
		return err
	}
	return c.Validate(req)
}

package validators

import (
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// CustomValidator adapts go-playground/validator to echo's Validator slot.
type CustomValidator struct {
	validate *validator.Validate
}

// NewValidator builds the request validator with StayX's custom rules
// registered. "username" restricts a field to alphanumerics and underscores.
func NewValidator() *CustomValidator {
	v := validator.New()
	// The tag name is a constant; registration cannot fail here.
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	return &CustomValidator{validate: v}
}

// Validate implements echo.Validator.
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

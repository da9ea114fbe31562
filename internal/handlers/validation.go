package handlers

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var glMonthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// validateGLMonth accepts period keys of the form YYYY-MM.
func validateGLMonth(fl validator.FieldLevel) bool {
	return glMonthPattern.MatchString(fl.Field().String())
}

// registerValidators adds the custom binding rules to gin's validator engine.
func registerValidators() error {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		return v.RegisterValidation("glmonth", validateGLMonth)
	}
	return nil
}

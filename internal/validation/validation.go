package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	validate *validator.Validate
}

var std = New()

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterValidation("lead_status", oneOf("new", "contacted", "qualified", "converted", "lost"))
	v.RegisterValidation("tourist_class", oneOf("adult", "child", "infant"))
	v.RegisterValidation("group_type", oneOf("family", "mini_group"))
	v.RegisterValidation("transport", oneOf("plane", "train", "bus"))
	v.RegisterValidation("iso_date", validateISODate)

	return &Validator{validate: v}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// Struct validates i with the shared validator.
func Struct(i interface{}) error {
	return std.Validate(i)
}

// Message flattens validation errors into one line for API responses.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

func oneOf(values ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		got := fl.Field().String()
		if got == "" {
			return true
		}
		for _, v := range values {
			if got == v {
				return true
			}
		}
		return false
	}
}

func validateISODate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

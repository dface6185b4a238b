package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/Tomlord1122/todo-api/internal/domain"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "notblank", validators.NotBlank)
	mustRegister(v, "rgbhex", func(fl validator.FieldLevel) bool {
		return hexColorPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "priority", func(fl validator.FieldLevel) bool {
		return domain.Priority(fl.Field().String()).Valid()
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// validateStruct runs the struct's validate tags and converts failures into
// a *ValidationError.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	ve := &ValidationError{}
	for _, fe := range verrs {
		ve.add(fe.Field(), fieldMessage(fe.Field(), fe))
	}
	return ve
}

// validateValue checks a single value against tag and records failures on
// ve under field.
func validateValue(ve *ValidationError, field string, value any, tag string) {
	err := validate.Var(value, tag)
	if err == nil {
		return
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		ve.add(field, err.Error())
		return
	}
	for _, fe := range verrs {
		ve.add(field, fieldMessage(field, fe))
	}
}

func fieldMessage(field string, fe validator.FieldError) string {
	label := fieldLabel(field)

	switch fe.Tag() {
	case "required", "notblank":
		return label + " cannot be empty"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "rgbhex":
		return "Color must be in hex format (#RRGGBB)"
	case "priority":
		return "Priority must be one of low, medium, high"
	default:
		return fmt.Sprintf("%s failed the %q check", label, fe.Tag())
	}
}

// fieldLabel turns a JSON field name into a sentence subject:
// "category_id" becomes "Category id".
func fieldLabel(field string) string {
	if field == "" {
		return "Value"
	}
	label := strings.ReplaceAll(field, "_", " ")
	return strings.ToUpper(label[:1]) + label[1:]
}

package dto

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// validate es seguro para uso concurrente y cachea la estructura de cada tipo.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("order_status", func(fl validator.FieldLevel) bool {
		return entity.IsActiveStatus(fl.Field().String())
	})
	return v
}

// StrongPassword al menos 8 caracteres con mayúscula, minúscula y dígito.
func StrongPassword(s string) bool {
	if len(s) < 8 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// Validate aplica las etiquetas validate del DTO y devuelve un domain.ErrValidation legible.
func Validate(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.Validation("invalid body")
	}
	return domain.Validation("%s", describe(verrs[0]))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if fe.Kind() == reflect.String {
			return field + " must have at least " + fe.Param() + " characters"
		}
		if fe.Kind() == reflect.Slice {
			return field + " must have at least " + fe.Param() + " items"
		}
		return field + " must be greater than or equal to " + fe.Param()
	case "max":
		return field + " must have at most " + fe.Param() + " characters"
	case "email":
		return field + " must be a valid email"
	case "uuid":
		return field + " is not a valid id"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "unique":
		return field + " must not contain repeated products"
	case "order_status":
		return field + " must be one of: " + strings.Join(entity.ActiveStatuses, " ")
	case "password":
		return field + " must have at least 8 characters, one uppercase letter, one lowercase letter and one number"
	}
	return field + " is not valid"
}

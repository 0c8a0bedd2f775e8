// validate.go
package dto

import (
	"errors"
	"reflect"
	"strings"

	"opt-shop/internal/apperror"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	// Messages and stock-sync payloads share the binding tags used by gin.
	validate = validator.New()
	validate.SetTagName("binding")
	validate.RegisterTagNameFunc(jsonFieldName)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

func jsonFieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// Validate checks v against its binding tags outside of gin.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return BindError(err)
	}
	return nil
}

// BindError turns a gin binding or validator failure into a validation error
// naming the first offending field.
func BindError(err error) *apperror.Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperror.Validation(fieldMessage(verrs[0]))
	}
	return apperror.Validation("invalid request body")
}

func fieldMessage(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min", "gte":
		if e.Kind() == reflect.String || e.Kind() == reflect.Slice {
			return field + " must contain at least " + e.Param() + " items or characters"
		}
		return field + " must be at least " + e.Param()
	case "max", "lte":
		if e.Kind() == reflect.String || e.Kind() == reflect.Slice {
			return field + " must contain at most " + e.Param() + " items or characters"
		}
		return field + " must be at most " + e.Param()
	case "oneof":
		return field + " must be one of: " + e.Param()
	case "mongodb":
		return field + " must be a valid id"
	default:
		return field + " is invalid"
	}
}

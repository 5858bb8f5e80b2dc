// Package validation wraps go-playground/validator with the custom tags and
// error messages used by request DTOs.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	dErrors "deletionguard/pkg/domain-errors"
	s "deletionguard/pkg/platform/strings"
)

// Length and count limits for request inputs. The tag aliases registered
// below are built from them, so DTOs never repeat the numbers.
const (
	MaxUserIDLength   = 128
	MaxTargetIDLength = 256
	MaxCacheKeyLength = 512
	MaxExtraKeys      = 50
	MaxUserAgentLen   = 512
)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	// cachekey rejects whitespace and control characters, which no CDN tag
	// or path may contain.
	_ = v.RegisterValidation("cachekey", func(fl validator.FieldLevel) bool {
		return !strings.ContainsFunc(fl.Field().String(), func(r rune) bool {
			return unicode.IsSpace(r) || unicode.IsControl(r)
		})
	})
	v.RegisterAlias("userid", fmt.Sprintf("required,notblank,max=%d", MaxUserIDLength))
	v.RegisterAlias("targetid", fmt.Sprintf("max=%d", MaxTargetIDLength))
	v.RegisterAlias("cachekeys", fmt.Sprintf("max=%d", MaxExtraKeys))
	v.RegisterAlias("cachekeylen", fmt.Sprintf("max=%d", MaxCacheKeyLength))
	return v
}

// Validate validates a struct using the default validator and returns a domain error.
func Validate(req any) error {
	if err := defaultValidator.Struct(req); err != nil {
		return dErrors.New(dErrors.CodeValidation, ErrorMessage(err))
	}
	return nil
}

// ErrorMessage converts a validator error into a human-readable message.
func ErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "invalid request body"
	}

	fe := validationErrs[0]
	fieldName := fe.Field()
	if fieldName == "" {
		fieldName = fe.StructField()
	}
	field := s.ToSnakeCase(fieldName)

	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "cachekey":
		return fmt.Sprintf("%s must not contain whitespace", field)
	default:
		if field == "" {
			return "invalid request body"
		}
		return fmt.Sprintf("%s is invalid", field)
	}
}

package service

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	uliPattern               = regexp.MustCompile(`^[A-Z]{3}-\d{2}-\d{3}-\d{5}-\d{3}$`)
	certificateNumberPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{0,39}$`)
)

// NewValidator returns a validator with the portal's custom tags registered.
// "uli" checks the Unique Learner Identifier format LLL-DD-DDD-DDDDD-DDD.
func NewValidator() *validator.Validate {
	v := validator.New()
	RegisterValidations(v)
	return v
}

// RegisterValidations installs the portal's custom tags on v.
// "certno" accepts letters, digits and dashes, at most 40 characters.
func RegisterValidations(v *validator.Validate) {
	_ = v.RegisterValidation("uli", func(fl validator.FieldLevel) bool {
		return uliPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("certno", func(fl validator.FieldLevel) bool {
		return ValidCertificateNumber(fl.Field().String())
	})
}

// ValidCertificateNumber reports whether raw, once trimmed, is usable as a certificate number.
func ValidCertificateNumber(raw string) bool {
	return certificateNumberPattern.MatchString(strings.TrimSpace(raw))
}

// NormalizeULI uppercases and trims a learner identifier.
func NormalizeULI(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return "invalid payload"
	}
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, strings.ToLower(fe.Field())+" failed "+fe.Tag())
	}
	return strings.Join(parts, "; ")
}

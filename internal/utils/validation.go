package contextutils

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
)

var validate = validator.New()

// ValidateStruct runs the `validate` struct tags of v and reports the first failures as one
// validation error
func ValidateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return NewAppErrorWithCause(ErrorCodeValidationFailed, SeverityWarn, "Validation failed", err.Error(), err)
	}
	return nil
}

// ValidateLanguageCode checks that code is a well-formed BCP 47 tag such as "en" or "zh-TW".
// It does not check that the translation service supports the language.
func ValidateLanguageCode(code string) error {
	if err := validate.Var(code, "required,min=2,max=35"); err != nil {
		return NewAppError(ErrorCodeInvalidInput, SeverityWarn, "Language code must be 2-35 characters", code)
	}
	if _, err := language.Parse(code); err != nil {
		return NewAppErrorWithCause(ErrorCodeInvalidFormat, SeverityWarn, "Invalid language code format", code, err)
	}
	return nil
}

// MaskSecret masks an API key or session secret for logging.
// Only the first and last 4 characters of long values stay visible.
func MaskSecret(secret string) string {
	if secret == "" {
		return "[EMPTY]"
	}
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
}

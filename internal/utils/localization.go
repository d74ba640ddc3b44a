package contextutils

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Locale represents a language locale (e.g., "en", "es", "fr")
type Locale string

const (
	// LocaleEnglish represents English language
	LocaleEnglish Locale = "en"
	// LocaleSpanish represents Spanish language
	LocaleSpanish Locale = "es"
	// LocaleFrench represents French language
	LocaleFrench Locale = "fr"
	// LocaleGerman represents German language
	LocaleGerman Locale = "de"
)

// LocalizedMessages contains localized user-facing messages keyed by error code
type LocalizedMessages struct {
	messages map[ErrorCode]map[Locale]string
}

// NewLocalizedMessages creates a new instance of localized messages
func NewLocalizedMessages() *LocalizedMessages {
	return &LocalizedMessages{
		messages: make(map[ErrorCode]map[Locale]string),
	}
}

// AddMessage adds a localized message for a specific error code and locale
func (lm *LocalizedMessages) AddMessage(code ErrorCode, locale Locale, message string) {
	if lm.messages[code] == nil {
		lm.messages[code] = make(map[Locale]string)
	}
	lm.messages[code][locale] = message
}

// GetMessage returns the localized message for an error code and locale
func (lm *LocalizedMessages) GetMessage(code ErrorCode, locale Locale) string {
	if localeMessages, exists := lm.messages[code]; exists {
		if message, exists := localeMessages[locale]; exists {
			return message
		}

		if message, exists := localeMessages[LocaleEnglish]; exists {
			return message
		}
	}

	return getDefaultMessage(code)
}

// GetMessageWithDetails returns a localized message with additional details
func (lm *LocalizedMessages) GetMessageWithDetails(code ErrorCode, locale Locale, details string) string {
	message := lm.GetMessage(code, locale)
	if details != "" {
		return fmt.Sprintf("%s: %s", message, details)
	}
	return message
}

// getDefaultMessage returns the English notification text shown for an error code
func getDefaultMessage(code ErrorCode) string {
	switch code {
	case ErrorCodeInvalidInput:
		return "Invalid input"
	case ErrorCodeInvalidFormat:
		return "Invalid format"
	case ErrorCodeValidationFailed:
		return "Validation failed"
	case ErrorCodeEmptyInput:
		return "Please enter text to translate."
	case ErrorCodeSessionNotFound:
		return "Your translation session has expired"
	case ErrorCodeAlreadyInProgress:
		return "Please wait for the current request to finish."
	case ErrorCodeStaleResponse:
		return "The translation finished after the text or languages changed and was discarded."
	case ErrorCodeCatalogLoadFailed:
		return "Failed to load languages. Please check if the backend is running."
	case ErrorCodeNetwork:
		return "An error occurred during translation."
	case ErrorCodeRemoteTranslation:
		return "The translation service could not translate this text."
	case ErrorCodeServiceUnavailable:
		return "Service temporarily unavailable"
	case ErrorCodeTimeout:
		return "The translation service did not respond in time."
	case ErrorCodeUnsupportedCapability:
		return "Your environment doesn't support this speech feature."
	case ErrorCodeVoiceInput:
		return "Voice input failed. Please try again."
	case ErrorCodeNothingToPlay:
		return "Please translate text first before using text-to-speech."
	case ErrorCodeSynthesis:
		return "Speech playback failed."
	case ErrorCodeInternalError:
		return "Internal server error"
	default:
		return "An error occurred"
	}
}

// LoadMessagesFromJSON loads localized messages from a JSON structure
func (lm *LocalizedMessages) LoadMessagesFromJSON(jsonData string) error {
	var data map[string]map[string]string
	if err := json.Unmarshal([]byte(jsonData), &data); err != nil {
		return WrapError(err, "failed to parse localization JSON")
	}

	for codeStr, localeMessages := range data {
		code := ErrorCode(codeStr)
		for localeStr, message := range localeMessages {
			lm.AddMessage(code, Locale(localeStr), message)
		}
	}

	return nil
}

// GetSupportedLocales returns a list of supported locales
func (lm *LocalizedMessages) GetSupportedLocales() []Locale {
	locales := make(map[Locale]bool)

	for _, localeMessages := range lm.messages {
		for locale := range localeMessages {
			locales[locale] = true
		}
	}

	result := make([]Locale, 0, len(locales))
	for locale := range locales {
		result = append(result, locale)
	}

	return result
}

// ParseLocale parses a locale string (e.g., "en-US", "fr-CA") and returns the language part
func ParseLocale(localeStr string) Locale {
	// Accept-Language values may carry a quality list: "fr-CA,fr;q=0.9"
	localeStr = strings.TrimSpace(strings.Split(localeStr, ",")[0])
	localeStr = strings.Split(localeStr, ";")[0]
	parts := strings.Split(localeStr, "-")
	if len(parts) > 0 && parts[0] != "" {
		return Locale(strings.ToLower(parts[0]))
	}
	return LocaleEnglish
}

var globalLocalizedMessages = NewLocalizedMessages()

func init() {
	globalLocalizedMessages.AddMessage(ErrorCodeEmptyInput, LocaleSpanish, "Introduce un texto para traducir.")
	globalLocalizedMessages.AddMessage(ErrorCodeEmptyInput, LocaleFrench, "Veuillez saisir un texte à traduire.")
	globalLocalizedMessages.AddMessage(ErrorCodeEmptyInput, LocaleGerman, "Bitte gib einen Text zum Übersetzen ein.")

	globalLocalizedMessages.AddMessage(ErrorCodeCatalogLoadFailed, LocaleSpanish, "No se pudieron cargar los idiomas.")
	globalLocalizedMessages.AddMessage(ErrorCodeCatalogLoadFailed, LocaleFrench, "Impossible de charger les langues.")
	globalLocalizedMessages.AddMessage(ErrorCodeCatalogLoadFailed, LocaleGerman, "Sprachen konnten nicht geladen werden.")

	globalLocalizedMessages.AddMessage(ErrorCodeVoiceInput, LocaleSpanish, "La entrada de voz falló. Inténtalo de nuevo.")
	globalLocalizedMessages.AddMessage(ErrorCodeVoiceInput, LocaleFrench, "La saisie vocale a échoué. Veuillez réessayer.")
	globalLocalizedMessages.AddMessage(ErrorCodeVoiceInput, LocaleGerman, "Spracheingabe fehlgeschlagen. Bitte erneut versuchen.")

	globalLocalizedMessages.AddMessage(ErrorCodeNothingToPlay, LocaleSpanish, "Traduce un texto antes de usar la lectura en voz alta.")
	globalLocalizedMessages.AddMessage(ErrorCodeNothingToPlay, LocaleFrench, "Traduisez d'abord un texte avant la synthèse vocale.")
	globalLocalizedMessages.AddMessage(ErrorCodeNothingToPlay, LocaleGerman, "Bitte zuerst einen Text übersetzen.")

	globalLocalizedMessages.AddMessage(ErrorCodeInternalError, LocaleSpanish, "Error interno del servidor")
	globalLocalizedMessages.AddMessage(ErrorCodeInternalError, LocaleFrench, "Erreur interne du serveur")
	globalLocalizedMessages.AddMessage(ErrorCodeInternalError, LocaleGerman, "Interner Serverfehler")
}

// GetLocalizedMessage returns a localized error message using the global instance
func GetLocalizedMessage(code ErrorCode, locale Locale) string {
	return globalLocalizedMessages.GetMessage(code, locale)
}

// GetLocalizedMessageWithDetails returns a localized error message with details
func GetLocalizedMessageWithDetails(code ErrorCode, locale Locale, details string) string {
	return globalLocalizedMessages.GetMessageWithDetails(code, locale, details)
}

// SetGlobalLocalizedMessages sets the global localized messages instance
func SetGlobalLocalizedMessages(messages *LocalizedMessages) {
	globalLocalizedMessages = messages
}

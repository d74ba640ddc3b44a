// Package serviceinterfaces defines service interfaces for dependency injection and testing.
package serviceinterfaces

import (
	"context"
)

// TranslateRequest represents a translation request
type TranslateRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"source_lang"`
	TargetLanguage string `json:"target_lang"`
	NumResults     int    `json:"num_results"`
}

// TranslateResponse represents a translation response.
// TranslatedTexts is never empty on success; the first element is the primary translation.
type TranslateResponse struct {
	TranslatedTexts []string `json:"translated_texts"`
	SourceLanguage  string   `json:"source_lang"`
	TargetLanguage  string   `json:"target_lang"`
	Provider        string   `json:"provider"`
}

// TranslationService defines the interface for translation services
type TranslationService interface {
	// Name identifies the provider in logs and metrics
	Name() string

	// Languages returns the supported language codes mapped to display names
	Languages(ctx context.Context) (map[string]string, error)

	// Translate translates text using the configured translation provider
	Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error)
}

package services

import (
	"strings"

	contextutils "github.com/Prachi290-pr/language-translator/internal/utils"

	"github.com/xeipuuv/gojsonschema"
)

// JSON Schema definitions for the remote translation service responses.
// Bodies are validated before decoding so that a malformed payload is reported
// as a service failure instead of an empty result.
const (
	// LanguagesResponseSchema describes GET /languages: a flat map of code to display name
	LanguagesResponseSchema = `{
		"type": "object",
		"additionalProperties": {"type": "string"}
	}`

	// TranslateResponseSchema describes POST /translate: either translations or an error message
	TranslateResponseSchema = `{
		"type": "object",
		"properties": {
			"translated_texts": {"type": "array", "items": {"type": "string"}},
			"error": {"type": "string"}
		},
		"anyOf": [
			{"required": ["translated_texts"]},
			{"required": ["error"]}
		]
	}`
)

var (
	languagesSchema = mustCompileSchema(LanguagesResponseSchema)
	translateSchema = mustCompileSchema(TranslateResponseSchema)
)

func mustCompileSchema(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(err)
	}
	return s
}

// validateBody checks a response body against a compiled schema and joins the
// validation errors into one message
func validateBody(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return contextutils.WrapError(err, "response is not valid JSON")
	}

	if !result.Valid() {
		var errorMessages []string
		for _, e := range result.Errors() {
			errorMessages = append(errorMessages, e.String())
		}
		return contextutils.ErrorWithContextf("response failed schema validation: %s", strings.Join(errorMessages, "; "))
	}

	return nil
}

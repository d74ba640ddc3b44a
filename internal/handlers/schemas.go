package handlers

// Request body schema names
const (
	schemaInputRequest       = "InputRequest"
	schemaPairRequest        = "PairRequest"
	schemaTranslateRequest   = "TranslateRequest"
	schemaRateRequest        = "RateRequest"
	schemaCapabilities       = "CapabilitiesRequest"
	schemaRecognitionEvent   = "RecognitionEventRequest"
	schemaSynthesisEvent     = "SynthesisEventRequest"
	languageCodeSchemaString = `{"type": "string", "minLength": 1, "maxLength": 35}`
)

// requestSchemas are the JSON schemas for every request body the API accepts
var requestSchemas = map[string]string{
	schemaInputRequest: `{
		"type": "object",
		"required": ["text"],
		"properties": {"text": {"type": "string"}},
		"additionalProperties": false
	}`,
	schemaPairRequest: `{
		"type": "object",
		"minProperties": 1,
		"properties": {
			"source": ` + languageCodeSchemaString + `,
			"target": ` + languageCodeSchemaString + `
		},
		"additionalProperties": false
	}`,
	schemaTranslateRequest: `{
		"type": "object",
		"properties": {
			"text": {"type": "string"},
			"source": ` + languageCodeSchemaString + `,
			"target": ` + languageCodeSchemaString + `
		},
		"additionalProperties": false
	}`,
	schemaRateRequest: `{
		"type": "object",
		"required": ["rate"],
		"properties": {"rate": {"type": "number"}},
		"additionalProperties": false
	}`,
	schemaCapabilities: `{
		"type": "object",
		"required": ["speech_recognition"],
		"properties": {"speech_recognition": {"type": "boolean"}},
		"additionalProperties": false
	}`,
	schemaRecognitionEvent: `{
		"type": "object",
		"required": ["activation_id", "type"],
		"properties": {
			"activation_id": {"type": "string", "minLength": 1},
			"type": {"enum": ["recognized", "failed"]},
			"transcript": {"type": "string"},
			"reason": {"type": "string"}
		},
		"additionalProperties": false
	}`,
	schemaSynthesisEvent: `{
		"type": "object",
		"required": ["utterance_id", "type"],
		"properties": {
			"utterance_id": {"type": "string", "minLength": 1},
			"type": {"enum": ["started", "ended", "failed"]},
			"reason": {"type": "string"}
		},
		"additionalProperties": false
	}`,
}

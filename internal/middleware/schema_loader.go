package middleware

import (
	"sort"
	"strings"
	"sync"

	contextutils "github.com/Prachi290-pr/language-translator/internal/utils"

	"github.com/xeipuuv/gojsonschema"
)

// SchemaLoader holds compiled JSON schemas for request bodies, keyed by name
type SchemaLoader struct {
	mu      sync.RWMutex
	schemas map[string]*gojsonschema.Schema
}

// NewSchemaLoader creates a new schema loader
func NewSchemaLoader() *SchemaLoader {
	return &SchemaLoader{
		schemas: make(map[string]*gojsonschema.Schema),
	}
}

// LoadSchemas compiles every schema in definitions. Nothing is stored when any schema is invalid.
func (sl *SchemaLoader) LoadSchemas(definitions map[string]string) error {
	compiled := make(map[string]*gojsonschema.Schema, len(definitions))
	for name, definition := range definitions {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(definition))
		if err != nil {
			return contextutils.WrapErrorf(err, "failed to compile schema %s", name)
		}
		compiled[name] = schema
	}

	sl.mu.Lock()
	defer sl.mu.Unlock()
	for name, schema := range compiled {
		sl.schemas[name] = schema
	}
	return nil
}

// HasSchema reports whether a schema is loaded
func (sl *SchemaLoader) HasSchema(name string) bool {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	_, ok := sl.schemas[name]
	return ok
}

// SchemaNames returns the loaded schema names in sorted order
func (sl *SchemaLoader) SchemaNames() []string {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	names := make([]string, 0, len(sl.schemas))
	for name := range sl.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateJSON validates a raw JSON document against the named schema
func (sl *SchemaLoader) ValidateJSON(name string, document []byte) error {
	sl.mu.RLock()
	schema, ok := sl.schemas[name]
	sl.mu.RUnlock()
	if !ok {
		return contextutils.ErrorWithContextf("schema not found: %s", name)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return contextutils.Derive(contextutils.ErrInvalidFormat, "request body is not valid JSON", err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return contextutils.Derive(contextutils.ErrValidationFailed, strings.Join(problems, "; "), nil)
}

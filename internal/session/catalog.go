package session

import (
	"context"
	"sort"
	"sync"

	"github.com/Prachi290-pr/language-translator/internal/observability"
	"github.com/Prachi290-pr/language-translator/internal/serviceinterfaces"
	contextutils "github.com/Prachi290-pr/language-translator/internal/utils"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Catalog maps language codes to display names. The zero value is an empty catalog.
// A Catalog is never modified after it is built.
type Catalog struct {
	names map[string]string
}

// NewCatalog builds a catalog from a copy of names
func NewCatalog(names map[string]string) Catalog {
	copied := make(map[string]string, len(names))
	for code, name := range names {
		copied[code] = name
	}
	return Catalog{names: copied}
}

// Len returns the number of languages
func (c Catalog) Len() int {
	return len(c.names)
}

// Has reports whether code is a known language
func (c Catalog) Has(code string) bool {
	_, ok := c.names[code]
	return ok
}

// Name returns the display name the translation service gave for code
func (c Catalog) Name(code string) (string, bool) {
	name, ok := c.names[code]
	return name, ok
}

// DisplayName returns a printable name for code even when the catalog does not know it,
// using the CLDR English name and finally the code itself
func (c Catalog) DisplayName(code string) string {
	if name, ok := c.names[code]; ok && name != "" {
		return name
	}
	if tag, err := language.Parse(code); err == nil {
		if name := display.English.Tags().Name(tag); name != "" {
			return name
		}
	}
	return code
}

// Codes returns the language codes in sorted order
func (c Catalog) Codes() []string {
	codes := make([]string, 0, len(c.names))
	for code := range c.names {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Map returns a copy of the code to name mapping
func (c Catalog) Map() map[string]string {
	copied := make(map[string]string, len(c.names))
	for code, name := range c.names {
		copied[code] = name
	}
	return copied
}

// CatalogLoader fetches the language catalog from the translation service.
// A successful load is cached; a failed one is retried by the next Load.
type CatalogLoader struct {
	translator serviceinterfaces.TranslationService
	logger     *observability.Logger

	mu      sync.Mutex
	loaded  bool
	catalog Catalog
}

// NewCatalogLoader creates a loader backed by translator
func NewCatalogLoader(translator serviceinterfaces.TranslationService, logger *observability.Logger) *CatalogLoader {
	return &CatalogLoader{translator: translator, logger: logger}
}

// Load returns the catalog, making at most one outbound call per invocation. On failure
// the returned catalog is empty and the error is a catalog load failure.
func (l *CatalogLoader) Load(ctx context.Context) (result Catalog, err error) {
	ctx, span := observability.TraceSessionFunction(ctx, "load_catalog")
	defer observability.FinishSpan(span, &err)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loaded {
		return l.catalog, nil
	}

	names, err := l.translator.Languages(ctx)
	if err != nil {
		if !contextutils.IsError(err, contextutils.ErrCatalogLoadFailed) {
			err = contextutils.Derive(contextutils.ErrCatalogLoadFailed, err.Error(), err)
		}
		l.logger.Warn(ctx, "Failed to load language catalog", map[string]interface{}{
			"provider": l.translator.Name(),
			"error":    err.Error(),
		})
		return Catalog{}, err
	}

	l.catalog = NewCatalog(names)
	l.loaded = true
	l.logger.Info(ctx, "Loaded language catalog", map[string]interface{}{
		"provider":  l.translator.Name(),
		"languages": l.catalog.Len(),
	})
	return l.catalog, nil
}

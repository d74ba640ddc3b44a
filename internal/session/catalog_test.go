package session

import (
	"context"
	"errors"
	"testing"

	contextutils "github.com/Prachi290-pr/language-translator/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Lookups(t *testing.T) {
	source := map[string]string{"fr": "French", "en": "English"}
	catalog := NewCatalog(source)
	source["de"] = "German"

	assert.Equal(t, 2, catalog.Len())
	assert.True(t, catalog.Has("en"))
	assert.False(t, catalog.Has("de"))
	assert.Equal(t, []string{"en", "fr"}, catalog.Codes())

	name, ok := catalog.Name("fr")
	assert.True(t, ok)
	assert.Equal(t, "French", name)

	_, ok = catalog.Name("xx")
	assert.False(t, ok)

	copied := catalog.Map()
	copied["en"] = "changed"
	name, _ = catalog.Name("en")
	assert.Equal(t, "English", name)
}

func TestCatalog_DisplayName(t *testing.T) {
	catalog := NewCatalog(map[string]string{"en": "English (US)"})

	assert.Equal(t, "English (US)", catalog.DisplayName("en"))
	assert.Equal(t, "Japanese", catalog.DisplayName("ja"))
	assert.Equal(t, "not a code!", catalog.DisplayName("not a code!"))

	var empty Catalog
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, "French", empty.DisplayName("fr"))
}

func TestCatalogLoader_CachesSuccess(t *testing.T) {
	translator := &MockTranslationService{}
	translator.On("Name").Return("mock").Maybe()
	translator.On("Languages", mock.Anything).Return(testLanguages, nil).Once()

	loader := NewCatalogLoader(translator, testLogger())
	first, err := loader.Load(context.Background())
	require.NoError(t, err)
	second, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, first.Len())
	assert.Equal(t, first.Map(), second.Map())
	translator.AssertNumberOfCalls(t, "Languages", 1)
}

func TestCatalogLoader_RetriesAfterFailure(t *testing.T) {
	translator := &MockTranslationService{}
	translator.On("Name").Return("mock").Maybe()
	translator.On("Languages", mock.Anything).Return(nil, errors.New("connection refused")).Once()
	translator.On("Languages", mock.Anything).Return(testLanguages, nil).Once()

	loader := NewCatalogLoader(translator, testLogger())

	catalog, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, contextutils.ErrCatalogLoadFailed)
	assert.Equal(t, 0, catalog.Len())

	catalog, err = loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, catalog.Len())
}

func TestNew_CatalogFailureLeavesSessionUsable(t *testing.T) {
	translator := &MockTranslationService{}
	translator.On("Name").Return("mock").Maybe()
	translator.On("Languages", mock.Anything).Return(nil, contextutils.Derive(contextutils.ErrCatalogLoadFailed, "500", nil))
	translator.On("Translate", mock.Anything, mock.Anything).Return(translated("bonjour"), nil)

	s := newTestSession(t, translator)

	assert.Equal(t, 0, s.Catalog().Len())
	notes := s.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, contextutils.ErrorCodeCatalogLoadFailed, notes[0].Code)
	assert.Equal(t, LevelWarning, notes[0].Level)

	s.SetInputText("hello")
	result, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bonjour", result.Primary)
}

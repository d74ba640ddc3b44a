package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Prachi290-pr/language-translator/internal/config"
	contextutils "github.com/Prachi290-pr/language-translator/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, cfg *config.SessionConfig) (*Registry, *MockTranslationService) {
	t.Helper()
	translator := newMockTranslator()
	loader := NewCatalogLoader(translator, testLogger())
	factory := func(ctx context.Context, id string) (*Session, error) {
		return New(ctx, Options{ID: id, Translator: translator, Catalog: loader, Config: testConfig(), Logger: testLogger()})
	}
	r := NewRegistry(cfg, loader, factory, testLogger())
	t.Cleanup(func() { _ = r.Shutdown(context.Background()) })
	return r, translator
}

func TestRegistry_CreateGetRemove(t *testing.T) {
	r, translator := newTestRegistry(t, &config.SessionConfig{})
	ctx := context.Background()

	a, err := r.Create(ctx)
	require.NoError(t, err)
	b, err := r.Create(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 2, r.Len())

	got, err := r.Get(a.ID())
	require.NoError(t, err)
	assert.Same(t, a, got)

	// Sessions share one catalog fetch
	translator.AssertNumberOfCalls(t, "Languages", 1)

	r.Remove(ctx, a.ID())
	r.Remove(ctx, "unknown")
	_, err = r.Get(a.ID())
	assert.ErrorIs(t, err, contextutils.ErrSessionNotFound)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_MaxSessions(t *testing.T) {
	r, _ := newTestRegistry(t, &config.SessionConfig{MaxSessions: 1})

	_, err := r.Create(context.Background())
	require.NoError(t, err)
	_, err = r.Create(context.Background())
	assert.ErrorIs(t, err, contextutils.ErrServiceUnavailable)
}

func TestRegistry_FactoryError(t *testing.T) {
	loader := NewCatalogLoader(newMockTranslator(), testLogger())
	r := NewRegistry(&config.SessionConfig{}, loader, func(context.Context, string) (*Session, error) {
		return nil, errors.New("boom")
	}, testLogger())

	_, err := r.Create(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_SweepExpiresIdleSessions(t *testing.T) {
	r, _ := newTestRegistry(t, &config.SessionConfig{IdleTimeout: time.Minute})
	ctx := context.Background()

	idle, err := r.Create(ctx)
	require.NoError(t, err)
	active, err := r.Create(ctx)
	require.NoError(t, err)

	idle.lastActive.Store(time.Now().Add(-2 * time.Minute).UnixNano())

	assert.Equal(t, 1, r.Sweep(ctx, time.Now()))
	_, err = r.Get(idle.ID())
	assert.ErrorIs(t, err, contextutils.ErrSessionNotFound)
	_, err = r.Get(active.ID())
	assert.NoError(t, err)
}

func TestRegistry_RunSweepsOnTicker(t *testing.T) {
	r, _ := newTestRegistry(t, &config.SessionConfig{IdleTimeout: time.Millisecond, SweepInterval: 5 * time.Millisecond})
	_, err := r.Create(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	assert.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestRegistry_Lifecycle(t *testing.T) {
	r, _ := newTestRegistry(t, &config.SessionConfig{})
	ctx := context.Background()

	assert.False(t, r.IsReady())
	require.NoError(t, r.Startup(ctx))
	assert.True(t, r.IsReady())

	_, err := r.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, r.Shutdown(ctx))
	assert.False(t, r.IsReady())
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_Languages(t *testing.T) {
	r, _ := newTestRegistry(t, &config.SessionConfig{})
	catalog, err := r.Languages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "es", "fr"}, catalog.Codes())
}

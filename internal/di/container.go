// Package di provides dependency injection container for managing service lifecycle and dependencies.
package di

import (
	"context"
	"sync"

	"github.com/Prachi290-pr/language-translator/internal/config"
	"github.com/Prachi290-pr/language-translator/internal/observability"
	"github.com/Prachi290-pr/language-translator/internal/serviceinterfaces"
	"github.com/Prachi290-pr/language-translator/internal/services"
	"github.com/Prachi290-pr/language-translator/internal/session"
	"github.com/Prachi290-pr/language-translator/internal/speech"
	contextutils "github.com/Prachi290-pr/language-translator/internal/utils"
)

// Service names registered in the container
const (
	ServiceTranslation = "translation"
	ServiceCatalog     = "catalog"
	ServiceSessions    = "sessions"
)

// ServiceContainerInterface defines the interface for service containers
type ServiceContainerInterface interface {
	GetService(name string) (interface{}, error)
	GetTranslationService() (serviceinterfaces.TranslationService, error)
	GetCatalogLoader() (*session.CatalogLoader, error)
	GetSessionRegistry() (*session.Registry, error)
	GetConfig() *config.Config
	GetLogger() *observability.Logger
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// ServiceContainer manages all service dependencies and lifecycle
type ServiceContainer struct {
	cfg           *config.Config
	logger        *observability.Logger
	services      map[string]interface{}
	order         []string
	mu            sync.RWMutex
	shutdownFuncs []func(context.Context) error
}

// NewServiceContainer creates a new dependency injection container
func NewServiceContainer(cfg *config.Config, logger *observability.Logger) *ServiceContainer {
	return &ServiceContainer{
		cfg:      cfg,
		logger:   logger,
		services: make(map[string]interface{}),
	}
}

// Initialize sets up all services and their dependencies
func (sc *ServiceContainer) Initialize(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.initializeServices(ctx)

	// Startup lifecycle services
	if err := sc.startupServices(ctx); err != nil {
		// Cleanup on failure
		_ = sc.cleanup(ctx)
		return contextutils.WrapErrorf(err, "failed to startup services")
	}

	return nil
}

// GetService retrieves a service by name with type assertion
func (sc *ServiceContainer) GetService(name string) (interface{}, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	service, exists := sc.services[name]
	if !exists {
		return nil, contextutils.ErrorWithContextf("service %s not found", name)
	}
	return service, nil
}

// GetServiceAs performs type-safe service retrieval
func GetServiceAs[T any](sc *ServiceContainer, name string) (T, error) {
	var zero T
	service, err := sc.GetService(name)
	if err != nil {
		return zero, err
	}

	typed, ok := service.(T)
	if !ok {
		return zero, contextutils.ErrorWithContextf("service %s is not of expected type %T", name, zero)
	}
	return typed, nil
}

// GetTranslationService returns the configured translation provider
func (sc *ServiceContainer) GetTranslationService() (serviceinterfaces.TranslationService, error) {
	return GetServiceAs[serviceinterfaces.TranslationService](sc, ServiceTranslation)
}

// GetCatalogLoader returns the language catalog shared by all sessions
func (sc *ServiceContainer) GetCatalogLoader() (*session.CatalogLoader, error) {
	return GetServiceAs[*session.CatalogLoader](sc, ServiceCatalog)
}

// GetSessionRegistry returns the translator session registry
func (sc *ServiceContainer) GetSessionRegistry() (*session.Registry, error) {
	return GetServiceAs[*session.Registry](sc, ServiceSessions)
}

// GetConfig returns the configuration
func (sc *ServiceContainer) GetConfig() *config.Config {
	return sc.cfg
}

// GetLogger returns the logger
func (sc *ServiceContainer) GetLogger() *observability.Logger {
	return sc.logger
}

// AddShutdownFunc registers a function that runs after all services have shut down
func (sc *ServiceContainer) AddShutdownFunc(fn func(context.Context) error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.shutdownFuncs = append(sc.shutdownFuncs, fn)
}

// Shutdown gracefully shuts down all services
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	return sc.cleanup(ctx)
}

// startupServices starts all services that implement the Lifecycle interface, in registration order
func (sc *ServiceContainer) startupServices(ctx context.Context) error {
	for _, name := range sc.order {
		if lifecycleService, ok := sc.services[name].(serviceinterfaces.Lifecycle); ok {
			sc.logger.Info(ctx, "Starting service", map[string]interface{}{"service": name})
			if err := lifecycleService.Startup(ctx); err != nil {
				return contextutils.WrapErrorf(err, "failed to startup service %s", name)
			}
			sc.logger.Info(ctx, "Service started successfully", map[string]interface{}{"service": name})
		}
	}
	return nil
}

// cleanup handles shutdown of all services
func (sc *ServiceContainer) cleanup(ctx context.Context) error {
	var errors []error

	// Shutdown lifecycle services first (in reverse order)
	for i := len(sc.order) - 1; i >= 0; i-- {
		name := sc.order[i]
		if lifecycleService, ok := sc.services[name].(serviceinterfaces.Lifecycle); ok {
			sc.logger.Info(ctx, "Shutting down service", map[string]interface{}{"service": name})
			if err := lifecycleService.Shutdown(ctx); err != nil {
				sc.logger.Error(ctx, "Failed to shutdown service", err, map[string]interface{}{"service": name})
				errors = append(errors, contextutils.WrapErrorf(err, "service %s shutdown failed", name))
			} else {
				sc.logger.Info(ctx, "Service shutdown successfully", map[string]interface{}{"service": name})
			}
		}
	}

	// Shutdown services in reverse order of initialization
	for i := len(sc.shutdownFuncs) - 1; i >= 0; i-- {
		if err := sc.shutdownFuncs[i](ctx); err != nil {
			errors = append(errors, err)
		}
	}
	sc.shutdownFuncs = nil

	if len(errors) > 0 {
		return contextutils.ErrorWithContextf("shutdown errors: %v", errors)
	}
	return nil
}

func (sc *ServiceContainer) register(name string, service interface{}) {
	if _, exists := sc.services[name]; !exists {
		sc.order = append(sc.order, name)
	}
	sc.services[name] = service
}

// initializeServices sets up all service dependencies
func (sc *ServiceContainer) initializeServices(_ context.Context) {
	translator := services.NewTranslationService(sc.cfg, sc.logger)
	sc.register(ServiceTranslation, translator)

	// The catalog is fetched once and shared by every session
	catalog := session.NewCatalogLoader(translator, sc.logger)
	sc.register(ServiceCatalog, catalog)

	registry := session.NewRegistry(&sc.cfg.Session, catalog, NewSessionFactory(sc.cfg, translator, catalog, sc.logger), sc.logger)
	sc.register(ServiceSessions, registry)
}

// NewSessionFactory returns a factory for server sessions. Server sessions drive the
// browser's speech engines; recognition stays unavailable until the browser reports support.
func NewSessionFactory(cfg *config.Config, translator serviceinterfaces.TranslationService, catalog *session.CatalogLoader, logger *observability.Logger) session.Factory {
	return func(ctx context.Context, id string) (*session.Session, error) {
		return session.New(ctx, session.Options{
			ID:         id,
			Translator: translator,
			Catalog:    catalog,
			Bridge:     speech.NewBridge(false),
			Config:     cfg,
			Logger:     logger,
		})
	}
}

// Package app provides the application context and dependency management
// for the catalogsync CLI. It centralizes configuration, logging, and the
// pipeline instance behind a single App value that commands receive.
package app

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/catalogsync/catalogsync"
	"github.com/catalogsync/catalogsync/pkg/errors"
)

// App represents the catalogsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Pipeline instance (lazy-initialized, singleton)
	mu       sync.RWMutex
	pipeline catalogsync.Catalogsync
}

// Option customizes an App during construction.
type Option func(*App) error

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.NewConfigError("app", "loading configuration", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Pipeline returns the catalogsync pipeline, creating it lazily from the
// current configuration. Thread-safe; only one instance is created.
func (a *App) Pipeline() (catalogsync.Catalogsync, error) {
	a.mu.RLock()
	if a.pipeline != nil {
		p := a.pipeline
		a.mu.RUnlock()
		return p, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pipeline != nil {
		return a.pipeline, nil
	}

	pipeline, err := catalogsync.New(catalogsync.WithPolicy(a.config.Policy()))
	if err != nil {
		return nil, err
	}
	a.pipeline = pipeline
	return pipeline, nil
}

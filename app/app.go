// Package app wires configuration, storage, and change notifications into a
// running lista instance.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/lista-app/lista"
	"github.com/lista-app/lista/config"
	"github.com/lista-app/lista/docstore"
	"github.com/lista-app/lista/logging"
	"github.com/lista-app/lista/notify"
	"github.com/lista-app/lista/sqlstore"
)

// Backend file names inside the data directory.
const (
	sqlFile = "lista.db"
	docFile = "lista.doc"
)

// App is the application container: the store in front of the configured
// backend, and the hub fanning out change notifications.
type App struct {
	Store *lista.Store
	Hub   *notify.Hub
}

// Open builds the backend named by the configuration, wires it to a store
// and notification hub, and returns the running container.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, err := cfg.DeletePolicy()
	if err != nil {
		return nil, err
	}

	if cfg.LogFile != "" {
		if err := logging.Init(cfg.LogFile); err != nil {
			return nil, fmt.Errorf("failed to initialize logging: %w", err)
		}
	}

	var backend lista.Backend
	switch cfg.Backend {
	case config.BackendSQL:
		backend, err = sqlstore.Open(ctx, filepath.Join(cfg.DataDir, sqlFile))
	case config.BackendDoc:
		backend, err = docstore.Open(filepath.Join(cfg.DataDir, docFile))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", cfg.Backend, err)
	}

	hub := notify.NewHub(notify.DefaultBufferSize)
	store := lista.NewStore(backend, hub)
	store.OnCategoryDelete = policy

	slog.Info("store opened",
		"backend", cfg.Backend,
		"data_dir", cfg.DataDir,
		"on_category_delete", policy.String(),
	)

	return &App{Store: store, Hub: hub}, nil
}

// Close shuts down the hub, then releases the backend.
func (a *App) Close() error {
	a.Hub.Close()
	if err := a.Store.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	return nil
}

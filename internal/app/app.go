// Package app wires the process-wide dependency graph. The App struct is
// pre-allocated in main and populated in the CLI's Before hook, so
// commands can hold a pointer to it before configuration is loaded.
package app

import (
	"github.com/taskdeck/taskdeck/internal/backend"
	"github.com/taskdeck/taskdeck/internal/core/config"
	"github.com/taskdeck/taskdeck/internal/core/eventbus"
	"github.com/taskdeck/taskdeck/internal/data/db"
	"github.com/taskdeck/taskdeck/internal/data/stores"
	"github.com/taskdeck/taskdeck/internal/engine"
)

// BuildInfo carries version metadata stamped at build time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// App aggregates the shared services commands depend on.
type App struct {
	Config  *config.Config
	DB      *db.DB
	Tasks   *stores.TaskStore
	KV      *stores.KVStore
	Backend *backend.Client
	Bus     *eventbus.EventBus
	Engine  *engine.Engine
	Build   BuildInfo
}

// New populates an App.
func New(cfg *config.Config, database *db.DB, tasks *stores.TaskStore, kvStore *stores.KVStore, bc *backend.Client, bus *eventbus.EventBus, eng *engine.Engine, build BuildInfo) *App {
	return &App{
		Config:  cfg,
		DB:      database,
		Tasks:   tasks,
		KV:      kvStore,
		Backend: bc,
		Bus:     bus,
		Engine:  eng,
		Build:   build,
	}
}

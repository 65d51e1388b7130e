// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/ward/internal/adapters/config"
	_ "go.trai.ch/ward/internal/adapters/fs"
	_ "go.trai.ch/ward/internal/adapters/logger"
	_ "go.trai.ch/ward/internal/adapters/shell"
	_ "go.trai.ch/ward/internal/adapters/state"
	_ "go.trai.ch/ward/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/ward/internal/app"
	_ "go.trai.ch/ward/internal/engine/scheduler"
)

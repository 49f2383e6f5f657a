// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/cleardep/internal/adapters/config"
	_ "go.trai.ch/cleardep/internal/adapters/fs"
	_ "go.trai.ch/cleardep/internal/adapters/logger"
	_ "go.trai.ch/cleardep/internal/adapters/shell"
	_ "go.trai.ch/cleardep/internal/adapters/telemetry"
	_ "go.trai.ch/cleardep/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/cleardep/internal/app"
	_ "go.trai.ch/cleardep/internal/engine/driver"
)

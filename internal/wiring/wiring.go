// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/normcache/internal/adapters/config"
	_ "go.trai.ch/normcache/internal/adapters/logger"
	_ "go.trai.ch/normcache/internal/adapters/storefactory"
	_ "go.trai.ch/normcache/internal/adapters/telemetry"
	// Register app nodes.
	_ "go.trai.ch/normcache/internal/app"
)

package ports

import "go.trai.ch/normcache/internal/core/domain"

// ConfigLoader loads the cache configuration and query shapes.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration file at path. A missing file yields the defaults.
	Load(path string) (*domain.Config, error)

	// LoadOperation reads a query shape file.
	LoadOperation(path string) (*domain.Operation, error)
}

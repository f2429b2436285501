package ports

import "go.trai.ch/crate/internal/core/domain"

// ConfigLoader defines the interface for loading the workspace configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration. An empty path triggers discovery upwards from cwd.
	Load(cwd, path string) (*domain.Config, error)

	// DiscoverRoot walks up from cwd to find the directory holding the configuration file.
	DiscoverRoot(cwd string) (string, error)
}

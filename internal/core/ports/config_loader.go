package ports

import "go.trai.ch/ward/internal/core/domain"

// ConfigLoader defines the interface for loading the build configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration from the given directory and returns the
	// validated target graph.
	Load(dir string) (*domain.Graph, error)
}

package domain

import (
	"context"
)

// DataSource supplies the case dataset once per session
type DataSource interface {
	// Load returns the full dataset or an error; no partial dataset is returned.
	Load(ctx context.Context) (Dataset, error)
	// Name identifies the source in logs and errors.
	Name() string
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetSourceConfig() *SourceConfig
	GetDatabaseConfig() *DatabaseConfig
	Reload() error
	Validate() error
	GetDatabaseConnectionString() string
	GetDatabaseURL() string
	IsProduction() bool
	IsDevelopment() bool
}

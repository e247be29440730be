package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/case-dashboard/internal/domain"
)

// DefaultSourceURL is the CSV export of the shared case spreadsheet
const DefaultSourceURL = "https://docs.google.com/spreadsheets/d/1goK-ZvnFnxwX-ohOFI39MDh00y5r8_xC5-wNP-11Sjk/export?format=csv&gid=1884402125"

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	v      *viper.Viper
	paths  []string
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	return NewManagerWithPaths(".", "./config", "/etc/case-dashboard/")
}

// NewManagerWithPaths creates a configuration manager that searches the given
// directories for config.yaml
func NewManagerWithPaths(paths ...string) (*Manager, error) {
	m := &Manager{paths: paths}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range m.paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("CASE_DASHBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; defaults and environment variables apply without it
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.v = v
	m.config = config
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8050)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "10s")
	v.SetDefault("server.rate_limit", 20)
	v.SetDefault("server.rate_burst", 40)

	// Source defaults
	v.SetDefault("source.kind", domain.SourceHTTP)
	v.SetDefault("source.url", DefaultSourceURL)
	v.SetDefault("source.path", "")
	v.SetDefault("source.table", "cases")
	v.SetDefault("source.timeout", "30s")
	v.SetDefault("source.retry_count", 3)
	v.SetDefault("source.rate_limit", 2)
	v.SetDefault("source.columns", map[string]string{
		"tipo_tx":     string(domain.AttrTreatmentType),
		"diagnostico": string(domain.AttrDiagnosis),
		"estado_tx":   string(domain.AttrTreatmentStatus),
		"medico_ref":  string(domain.AttrClinicianID),
	})
	v.SetDefault("source.na_values", []string{
		"", "#N/A", "#NA", "N/A", "n/a", "NA", "<NA>", "NaN", "nan", "-NaN", "-nan",
		"NULL", "null", "None",
	})

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.memory_items", 16)
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.default_ttl", "10m")
	v.SetDefault("cache.max_retries", 3)
	v.SetDefault("cache.pool_size", 10)
	v.SetDefault("cache.pool_timeout", "4s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "case_dashboard")
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle", "30m")
	v.SetDefault("database.migrations_path", "internal/database/migrations")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.filename", "")

	// MCP defaults
	v.SetDefault("mcp.server_name", "case-dashboard")
	v.SetDefault("mcp.server_version", "v0.1.0")

	// Dashboard labels
	labels := domain.DefaultDashboardConfig()
	v.SetDefault("dashboard.title", labels.Title)
	v.SetDefault("dashboard.count_label", labels.CountLabel)
	v.SetDefault("dashboard.treatment_type_label", labels.TreatmentTypeLabel)
	v.SetDefault("dashboard.treatment_type_title", labels.TreatmentTypeTitle)
	v.SetDefault("dashboard.treatment_status_label", labels.TreatmentStatusLabel)
	v.SetDefault("dashboard.treatment_status_title", labels.TreatmentStatusTitle)
	v.SetDefault("dashboard.diagnosis_label", labels.DiagnosisLabel)
	v.SetDefault("dashboard.diagnosis_title", labels.DiagnosisTitle)
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetSourceConfig returns data source configuration
func (m *Manager) GetSourceConfig() *domain.SourceConfig {
	return &m.config.Source
}

// GetDatabaseConfig returns database configuration
func (m *Manager) GetDatabaseConfig() *domain.DatabaseConfig {
	return &m.config.Database
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	switch config.Source.Kind {
	case domain.SourceHTTP:
		if config.Source.URL == "" {
			return fmt.Errorf("source URL is required for http source")
		}
	case domain.SourceFile, domain.SourceSQLite:
		if config.Source.Path == "" {
			return fmt.Errorf("source path is required for %s source", config.Source.Kind)
		}
	case domain.SourcePostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if config.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	default:
		return fmt.Errorf("unknown source kind: %q", config.Source.Kind)
	}

	if config.Source.RetryCount < 0 {
		return fmt.Errorf("invalid source retry count: %d", config.Source.RetryCount)
	}

	for alias, target := range config.Source.Columns {
		if _, ok := domain.ParseAttribute(target); !ok {
			return fmt.Errorf("column alias %q maps to unknown attribute %q", alias, target)
		}
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// GetDatabaseConnectionString returns a formatted database connection string
func (m *Manager) GetDatabaseConnectionString() string {
	db := m.config.Database
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		db.Host, db.Port, db.Username, db.Password, db.Database, db.SSLMode)
}

// GetDatabaseURL returns the database connection URL used by migrations
func (m *Manager) GetDatabaseURL() string {
	db := m.config.Database
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		db.Username, db.Password, db.Host, db.Port, db.Database, db.SSLMode)
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(m.config.Environment) == "production"
}

// IsDevelopment returns true if running in development mode
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(m.config.Environment)
	return env == "development" || env == "dev" || env == ""
}

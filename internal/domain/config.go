package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Source      SourceConfig    `mapstructure:"source"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	MCP         MCPConfig       `mapstructure:"mcp"`
	Dashboard   DashboardConfig `mapstructure:"dashboard"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	RateBurst      int           `mapstructure:"rate_burst"`
}

// Source kinds
const (
	SourceHTTP     = "http"
	SourceFile     = "file"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
)

// SourceConfig describes where the case dataset is loaded from
type SourceConfig struct {
	Kind       string            `mapstructure:"kind"`
	URL        string            `mapstructure:"url"`
	Path       string            `mapstructure:"path"`
	Table      string            `mapstructure:"table"`
	Timeout    time.Duration     `mapstructure:"timeout"`
	RetryCount int               `mapstructure:"retry_count"`
	RateLimit  int               `mapstructure:"rate_limit"`
	Columns    map[string]string `mapstructure:"columns"`
	NAValues   []string          `mapstructure:"na_values"`
}

// CacheConfig represents payload cache configuration
type CacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MemoryItems int           `mapstructure:"memory_items"`
	RedisURL    string        `mapstructure:"redis_url"`
	DefaultTTL  time.Duration `mapstructure:"default_ttl"`
	MaxRetries  int           `mapstructure:"max_retries"`
	PoolSize    int           `mapstructure:"pool_size"`
	PoolTimeout time.Duration `mapstructure:"pool_timeout"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdle     time.Duration `mapstructure:"conn_max_idle"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Filename string `mapstructure:"filename"`
}

// MCPConfig represents MCP server configuration
type MCPConfig struct {
	ServerName    string `mapstructure:"server_name"`
	ServerVersion string `mapstructure:"server_version"`
}

// DashboardConfig holds the chart titles and axis labels
type DashboardConfig struct {
	Title                string `mapstructure:"title"`
	CountLabel           string `mapstructure:"count_label"`
	TreatmentTypeLabel   string `mapstructure:"treatment_type_label"`
	TreatmentTypeTitle   string `mapstructure:"treatment_type_title"`
	TreatmentStatusLabel string `mapstructure:"treatment_status_label"`
	TreatmentStatusTitle string `mapstructure:"treatment_status_title"`
	DiagnosisLabel       string `mapstructure:"diagnosis_label"`
	DiagnosisTitle       string `mapstructure:"diagnosis_title"`
}

// DefaultDashboardConfig returns the labels of the original case dashboard
func DefaultDashboardConfig() DashboardConfig {
	return DashboardConfig{
		Title:                "Dashboard de Casos Atendidos",
		CountLabel:           "Cantidad",
		TreatmentTypeLabel:   "Tipo de Tratamiento",
		TreatmentTypeTitle:   "Cantidad por Tipo de Tratamiento",
		TreatmentStatusLabel: "Estado del Tratamiento",
		TreatmentStatusTitle: "Cantidad por Estado del Tratamiento",
		DiagnosisLabel:       "Diagnóstico",
		DiagnosisTitle:       "Porcentaje de Diagnóstico sobre el total de casos",
	}
}

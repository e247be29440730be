// Package setup registers the case dashboard MCP server with a desktop MCP
// client by editing the client's JSON configuration file.
package setup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// ServerName is the key the dashboard is registered under
const ServerName = "case-dashboard"

// ClientConfig is the desktop client configuration file. Unknown top-level
// keys are preserved on save.
type ClientConfig struct {
	MCPServers map[string]ServerEntry `json:"mcpServers"`
	other      map[string]json.RawMessage
}

// ServerEntry launches one MCP server
type ServerEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// Options describe the registration to write
type Options struct {
	ConfigPath string
	BinaryPath string
	// SourceKind, SourceURL and SourcePath become CASE_DASHBOARD_SOURCE_* env entries
	SourceKind string
	SourceURL  string
	SourcePath string
}

// DefaultClientConfigPath returns the platform location of the desktop client
// configuration file
func DefaultClientConfigPath() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", "Claude", "claude_desktop_config.json"), nil
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "Claude", "claude_desktop_config.json"), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, ".config", "Claude", "claude_desktop_config.json"), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", errors.New("APPDATA environment variable not set")
		}
		return filepath.Join(appData, "Claude", "claude_desktop_config.json"), nil
	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

// LoadClientConfig reads the client configuration. A missing file yields an
// empty configuration.
func LoadClientConfig(path string) (*ClientConfig, error) {
	cfg := &ClientConfig{MCPServers: map[string]ServerEntry{}, other: map[string]json.RawMessage{}}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read client config: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}

	if err := json.Unmarshal(data, &cfg.other); err != nil {
		return nil, fmt.Errorf("failed to parse client config: %w", err)
	}
	if raw, ok := cfg.other["mcpServers"]; ok {
		if err := json.Unmarshal(raw, &cfg.MCPServers); err != nil {
			return nil, fmt.Errorf("failed to parse mcpServers: %w", err)
		}
		delete(cfg.other, "mcpServers")
	}
	if cfg.MCPServers == nil {
		cfg.MCPServers = map[string]ServerEntry{}
	}
	return cfg, nil
}

// Save writes the configuration, creating the directory when needed
func (c *ClientConfig) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out := make(map[string]any, len(c.other)+1)
	for k, v := range c.other {
		out[k] = v
	}
	out["mcpServers"] = c.MCPServers

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal client config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write client config: %w", err)
	}
	return nil
}

// Entry builds the server entry for opts
func Entry(opts Options) (ServerEntry, error) {
	if opts.BinaryPath == "" {
		return ServerEntry{}, errors.New("binary path is required")
	}
	binary, err := filepath.Abs(opts.BinaryPath)
	if err != nil {
		return ServerEntry{}, fmt.Errorf("resolving binary path: %w", err)
	}

	env := map[string]string{}
	if opts.SourceKind != "" {
		env["CASE_DASHBOARD_SOURCE_KIND"] = opts.SourceKind
	}
	if opts.SourceURL != "" {
		env["CASE_DASHBOARD_SOURCE_URL"] = opts.SourceURL
	}
	if opts.SourcePath != "" {
		path, err := filepath.Abs(opts.SourcePath)
		if err != nil {
			return ServerEntry{}, fmt.Errorf("resolving source path: %w", err)
		}
		env["CASE_DASHBOARD_SOURCE_PATH"] = path
	}
	if len(env) == 0 {
		env = nil
	}

	return ServerEntry{Command: binary, Env: env}, nil
}

// Configure adds or replaces the dashboard entry in the client configuration
func Configure(opts Options) (string, error) {
	path := opts.ConfigPath
	if path == "" {
		var err error
		if path, err = DefaultClientConfigPath(); err != nil {
			return "", err
		}
	}

	entry, err := Entry(opts)
	if err != nil {
		return "", err
	}

	cfg, err := LoadClientConfig(path)
	if err != nil {
		return "", err
	}
	cfg.MCPServers[ServerName] = entry

	return path, cfg.Save(path)
}

// Remove deletes the dashboard entry. It reports whether an entry existed.
func Remove(configPath string) (bool, error) {
	cfg, err := LoadClientConfig(configPath)
	if err != nil {
		return false, err
	}
	if _, ok := cfg.MCPServers[ServerName]; !ok {
		return false, nil
	}
	delete(cfg.MCPServers, ServerName)
	return true, cfg.Save(configPath)
}

// Status describes the current registration
type Status struct {
	ConfigPath string
	Configured bool
	Entry      ServerEntry
	Issues     []string
}

// GetStatus inspects the client configuration at configPath
func GetStatus(configPath string) (*Status, error) {
	status := &Status{ConfigPath: configPath, Issues: []string{}}

	cfg, err := LoadClientConfig(configPath)
	if err != nil {
		return nil, err
	}

	entry, ok := cfg.MCPServers[ServerName]
	if !ok {
		status.Issues = append(status.Issues, "case dashboard is not registered")
		return status, nil
	}
	status.Configured = true
	status.Entry = entry

	info, err := os.Stat(entry.Command)
	switch {
	case err != nil:
		status.Issues = append(status.Issues, fmt.Sprintf("server binary not found: %s", entry.Command))
	case info.Mode()&0111 == 0:
		status.Issues = append(status.Issues, fmt.Sprintf("server binary is not executable: %s", entry.Command))
	}

	if path, ok := entry.Env["CASE_DASHBOARD_SOURCE_PATH"]; ok {
		if _, err := os.Stat(path); err != nil {
			status.Issues = append(status.Issues, fmt.Sprintf("source file not found: %s", path))
		}
	}

	return status, nil
}

// envKeys returns the entry's environment keys in a stable order
func envKeys(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

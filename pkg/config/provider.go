package config

import (
	"fmt"
)

// Dataset backend types
const (
	BackendSQLite      = "sqlite"
	BackendTimescaleDB = "timescaledb"
)

// Defaults applied by providers when a value is absent
const (
	DefaultSQLitePath = "Resources/hawaii.sqlite"
	DefaultListenAddr = "0.0.0.0"
	DefaultHTTPPort   = 5000
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Dataset DatasetData `json:"dataset"`
	Server  ServerData  `json:"server"`
	Query   QueryData   `json:"query"`
}

// DatasetData describes where the observation dataset is loaded from
type DatasetData struct {
	Backend          string `json:"backend"`
	SQLitePath       string `json:"sqlite_path,omitempty"`
	ConnectionString string `json:"connection_string,omitempty"`
}

// ServerData holds the HTTP listener configuration
type ServerData struct {
	ListenAddr string `json:"listen_addr,omitempty"`
	Port       int    `json:"port,omitempty"`
	Cert       string `json:"cert,omitempty"`
	Key        string `json:"key,omitempty"`
}

// QueryData tunes the query engine
type QueryData struct {
	// MostActiveStation is the station served by the tobs endpoint, or
	// "auto" to rank stations by observation count at startup.
	MostActiveStation string `json:"most_active_station,omitempty"`
}

// Addr returns the host:port the server listens on
func (s ServerData) Addr() string {
	return fmt.Sprintf("%v:%v", s.ListenAddr, s.Port)
}

// TLSEnabled reports whether both a certificate and a key were configured
func (s ServerData) TLSEnabled() bool {
	return s.Cert != "" && s.Key != ""
}

// ApplyDefaults fills in any values left empty by the provider
func (c *ConfigData) ApplyDefaults() {
	if c.Dataset.Backend == "" {
		c.Dataset.Backend = BackendSQLite
	}
	if c.Dataset.Backend == BackendSQLite && c.Dataset.SQLitePath == "" {
		c.Dataset.SQLitePath = DefaultSQLitePath
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultHTTPPort
	}
}

// Validate checks that all configuration values are valid
func (c *ConfigData) Validate() error {
	switch c.Dataset.Backend {
	case BackendSQLite:
		if c.Dataset.SQLitePath == "" {
			return fmt.Errorf("dataset.sqlite_path is required for the sqlite backend")
		}
	case BackendTimescaleDB:
		if c.Dataset.ConnectionString == "" {
			return fmt.Errorf("dataset.connection_string is required for the timescaledb backend")
		}
	default:
		return fmt.Errorf("unsupported dataset backend: %q (use %q or %q)", c.Dataset.Backend, BackendSQLite, BackendTimescaleDB)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if (c.Server.Cert == "") != (c.Server.Key == "") {
		return fmt.Errorf("server.cert and server.key must be set together")
	}

	return nil
}

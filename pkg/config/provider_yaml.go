package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

type datasetYAML struct {
	Backend          string `yaml:"backend,omitempty"`
	SQLitePath       string `yaml:"sqlite_path,omitempty"`
	ConnectionString string `yaml:"connection_string,omitempty"`
}

type serverYAML struct {
	ListenAddr string `yaml:"listen_addr,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	Cert       string `yaml:"cert,omitempty"`
	Key        string `yaml:"key,omitempty"`
}

type queryYAML struct {
	MostActiveStation string `yaml:"most_active_station,omitempty"`
}

// LoadConfig loads the complete configuration from the YAML file. The file
// is read once; later calls return the cached result.
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	if y.config != nil {
		return y.config, nil
	}

	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Dataset datasetYAML `yaml:"dataset"`
		Server  serverYAML  `yaml:"server,omitempty"`
		Query   queryYAML   `yaml:"query,omitempty"`
	}

	if err := yaml.UnmarshalStrict(cfgFile, &yamlConfig); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", y.filename, err)
	}

	// Convert to our internal format
	config := &ConfigData{
		Dataset: DatasetData{
			Backend:          yamlConfig.Dataset.Backend,
			SQLitePath:       yamlConfig.Dataset.SQLitePath,
			ConnectionString: yamlConfig.Dataset.ConnectionString,
		},
		Server: ServerData{
			ListenAddr: yamlConfig.Server.ListenAddr,
			Port:       yamlConfig.Server.Port,
			Cert:       yamlConfig.Server.Cert,
			Key:        yamlConfig.Server.Key,
		},
		Query: QueryData{
			MostActiveStation: yamlConfig.Query.MostActiveStation,
		},
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	y.config = config
	return config, nil
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

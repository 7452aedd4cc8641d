package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/DaniXM02/tunneltap/internal/resolve"
)

// Config holds the application configuration. Only the doctor and serve
// commands consult it; resolve always runs with the fixed constants.
type Config struct {
	AgentHost    string        `mapstructure:"agent_host"`
	AgentPorts   []int         `mapstructure:"agent_ports"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
	ListenAddr   string        `mapstructure:"listen_addr"`
	LogLevel     string        `mapstructure:"log_level"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig() (*Config, error) {
	// Set defaults; these match the fixed discovery constants
	viper.SetDefault("agent_host", resolve.DefaultHost)
	viper.SetDefault("agent_ports", resolve.DefaultPorts)
	viper.SetDefault("probe_timeout", resolve.DefaultProbeTimeout)
	viper.SetDefault("listen_addr", ":8060")
	viper.SetDefault("log_level", "info")

	// Set config file location
	configDir := filepath.Join(getHomeDir(), ".tunneltap")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)

	// Read config file (ignore error if file doesn't exist)
	_ = viper.ReadInConfig() // nolint:errcheck // config file is optional

	// Override with environment variables
	viper.SetEnvPrefix("SAFEGRID")
	viper.AutomaticEnv()

	// Map env var names to config keys (errors are unlikely and safe to ignore)
	_ = viper.BindEnv("agent_host", "SAFEGRID_AGENT_HOST")       // nolint:errcheck // errors are unlikely here
	_ = viper.BindEnv("agent_ports", "SAFEGRID_AGENT_PORTS")     // nolint:errcheck // errors are unlikely here
	_ = viper.BindEnv("probe_timeout", "SAFEGRID_PROBE_TIMEOUT") // nolint:errcheck // errors are unlikely here
	_ = viper.BindEnv("listen_addr", "SAFEGRID_LISTEN_ADDR")     // nolint:errcheck // errors are unlikely here
	_ = viper.BindEnv("log_level", "SAFEGRID_LOG_LEVEL")         // nolint:errcheck // errors are unlikely here

	// Unmarshal into Config struct
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Endpoints returns the agent base URLs described by the config, in port
// order.
func (c *Config) Endpoints() []string {
	return resolve.Endpoints(c.AgentHost, c.AgentPorts)
}

// getHomeDir returns the user's home directory
func getHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

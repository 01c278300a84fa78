package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration settings for the membank server and CLI.
type Config struct {
	// DBFilename is the SQLite file name created under each project root
	// when no networked engine is configured.
	DBFilename string `yaml:"db_filename" mapstructure:"db_filename"`

	// Port is the stdio-adjacent control port, kept for parity with the
	// teacher's server flags; unused by the stdio transport itself.
	Port int `yaml:"port" mapstructure:"port"`

	// HTTPStreamPort is the listen port for the HTTP+SSE transport.
	HTTPStreamPort int `yaml:"http_stream_port" mapstructure:"http_stream_port"`

	// Host is the bind address for the HTTP+SSE transport.
	Host string `yaml:"host" mapstructure:"host"`

	// Debug toggles verbose logging and source-location annotations.
	Debug bool `yaml:"debug" mapstructure:"debug"`

	Neo4j Neo4jConfig `yaml:"neo4j" mapstructure:"neo4j"`
}

// Neo4jConfig configures the optional networked engine. Engine selection is
// driven entirely by whether URI is non-empty.
type Neo4jConfig struct {
	URI      string `yaml:"uri" mapstructure:"uri"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
}

// Default returns default configuration: embedded SQLite engine, stdio
// transport, no networked engine configured.
func Default() *Config {
	return &Config{
		DBFilename:     "membank.db",
		Port:           0,
		HTTPStreamPort: 8787,
		Host:           "127.0.0.1",
		Debug:          false,
	}
}

// Load loads configuration from an optional file, layered under
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("db_filename", cfg.DBFilename)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("http_stream_port", cfg.HTTPStreamPort)
	v.SetDefault("host", cfg.Host)
	v.SetDefault("debug", cfg.Debug)

	v.SetEnvPrefix("MEMBANK")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("membank")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".membank"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := validateNeo4jCredentials(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateNeo4jCredentials reports an error if the optional networked
// engine is partially configured — a URI with no user/password would
// otherwise fail opaquely inside graph.OpenNeo4jEngine on first use.
func validateNeo4jCredentials(cfg *Config) error {
	if cfg.Neo4j.URI == "" {
		return nil
	}
	missing := []string{}
	if cfg.Neo4j.User == "" {
		missing = append(missing, "MEMBANK_NEO4J_USER")
	}
	if cfg.Neo4j.Password == "" {
		missing = append(missing, "MEMBANK_NEO4J_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("neo4j uri is set but missing: %v", missing)
	}
	return nil
}

// loadEnvFiles loads .env files in order of precedence.
func loadEnvFiles() {
	envFiles := []string{".env.local", ".env"}
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			godotenv.Load(file)
		}
	}

	homeDir, _ := os.UserHomeDir()
	homeEnvFile := filepath.Join(homeDir, ".membank", ".env")
	if _, err := os.Stat(homeEnvFile); err == nil {
		godotenv.Load(homeEnvFile)
	}
}

// applyEnvOverrides applies the spec's named environment variables, which
// take precedence over both the config file and viper's MEMBANK_-prefixed
// automatic binding (those use underscored keys; these are the literal
// names spec.md calls out).
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DB_FILENAME"); v != "" {
		cfg.DBFilename = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Port = n
		}
	}
	if v := os.Getenv("HTTP_STREAM_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HTTPStreamPort = n
		}
	}
	if v := os.Getenv("HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("DEBUG"); v != "" {
		cfg.Debug = v == "true" || v == "1"
	}

	if v := os.Getenv("MEMBANK_NEO4J_URI"); v != "" {
		cfg.Neo4j.URI = v
	}
	if v := os.Getenv("MEMBANK_NEO4J_USER"); v != "" {
		cfg.Neo4j.User = v
	}
	if v := os.Getenv("MEMBANK_NEO4J_PASSWORD"); v != "" {
		cfg.Neo4j.Password = v
	}
}

// UseNeo4j reports whether the optional networked engine is configured.
func (c *Config) UseNeo4j() bool {
	return c.Neo4j.URI != ""
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("db_filename", c.DBFilename)
	v.Set("port", c.Port)
	v.Set("http_stream_port", c.HTTPStreamPort)
	v.Set("host", c.Host)
	v.Set("debug", c.Debug)
	v.Set("neo4j", c.Neo4j)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

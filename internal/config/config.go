package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the doorpilot API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Inference InferenceConfig `yaml:"inference"`
	Vector    VectorConfig    `yaml:"vector"`
	Cache     CacheConfig     `yaml:"cache"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

// AuthConfig holds JWT validation settings. An empty Domain disables
// authentication entirely: every caller is treated as anonymous.
type AuthConfig struct {
	Domain     string `yaml:"domain"` // Auth0 tenant domain
	Audience   string `yaml:"audience"`
	RolesClaim string `yaml:"roles_claim"`
}

// JWKSURL returns the JWKS endpoint of the tenant.
func (a AuthConfig) JWKSURL() string {
	return fmt.Sprintf("https://%s/.well-known/jwks.json", a.Domain)
}

// Issuer returns the expected token issuer.
func (a AuthConfig) Issuer() string {
	return fmt.Sprintf("https://%s/", a.Domain)
}

// InferenceConfig holds the OpenAI-compatible inference service settings.
type InferenceConfig struct {
	BaseURL         string  `yaml:"base_url"`
	APIKey          string  `yaml:"api_key"`
	ChatModel       string  `yaml:"chat_model"`
	EmbedModel      string  `yaml:"embed_model"`
	ChatTemperature float32 `yaml:"chat_temperature"`
	// DiagTemperature applies to the one-shot diagnose completion; lower
	// for more deterministic explanations.
	DiagTemperature float32 `yaml:"diag_temperature"`
}

// VectorConfig holds the vector index service settings. Collection names
// are part of the contract with the index and must match the ingestion
// pipeline exactly.
type VectorConfig struct {
	BaseURL             string `yaml:"base_url"`
	APIKey              string `yaml:"api_key"`
	TimeoutSec          int    `yaml:"timeout_sec"`
	CollectionPlaybooks string `yaml:"collection_playbooks"`
	CollectionManuals   string `yaml:"collection_manuals"`
	CollectionParts     string `yaml:"collection_parts"`
}

// CacheConfig holds the embedding cache settings.
type CacheConfig struct {
	Enabled      bool     `yaml:"enabled"`
	Addrs        []string `yaml:"addrs"`
	Password     string   `yaml:"password"`
	TTLHours     int      `yaml:"ttl_hours"`
	ReadinessSec int      `yaml:"readiness_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Streaming chat extends its own write deadline per frame, so
		// this only bounds non-streaming responses.
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Auth.Audience == "" {
		c.Auth.Audience = "https://aas-portal.com/api"
	}
	if c.Auth.RolesClaim == "" {
		c.Auth.RolesClaim = "https://aas-portal.com/roles"
	}
	if c.Inference.BaseURL == "" {
		c.Inference.BaseURL = "http://localhost:11434/v1"
	}
	if c.Inference.ChatModel == "" {
		c.Inference.ChatModel = "llama3:8b"
	}
	if c.Inference.EmbedModel == "" {
		c.Inference.EmbedModel = "nomic-embed-text"
	}
	if c.Inference.ChatTemperature <= 0 {
		c.Inference.ChatTemperature = 0.7
	}
	if c.Inference.DiagTemperature <= 0 {
		c.Inference.DiagTemperature = 0.3
	}
	if c.Vector.BaseURL == "" {
		c.Vector.BaseURL = "http://localhost:6333"
	}
	if c.Vector.TimeoutSec <= 0 {
		c.Vector.TimeoutSec = 10
	}
	if c.Vector.CollectionPlaybooks == "" {
		c.Vector.CollectionPlaybooks = "playbooks"
	}
	if c.Vector.CollectionManuals == "" {
		c.Vector.CollectionManuals = "manuals"
	}
	if c.Vector.CollectionParts == "" {
		c.Vector.CollectionParts = "parts"
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = 24 * 7
	}
	if c.Cache.ReadinessSec <= 0 {
		c.Cache.ReadinessSec = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when cache is enabled")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

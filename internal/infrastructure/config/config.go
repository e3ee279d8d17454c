// Package config loads featurecraft settings: defaults, then an optional YAML
// file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFile        = "featurecraft.yaml"
	DefaultEnvFile     = ".env"
	DefaultAddr        = ":8501"
	DefaultPromptFile  = "prompt.txt"
	DefaultProvider    = "openai"
	DefaultModel       = "gpt-4o"
	DefaultTemperature = 0.7
	DefaultLanguage    = "he"
	DefaultLogLevel    = "info"

	DefaultTrackerBaseURL    = "http://tfs:8080/tfs"
	DefaultTrackerAPIVersion = "6.1-preview.2"
	DefaultTrackerTimeout    = 30 * time.Second
	DefaultAITimeout         = 120 * time.Second
	DefaultSessionIdle       = 12 * time.Hour
)

// Environment variable names. The unprefixed ones match the names deployments
// already keep in their .env files.
const (
	EnvOrganization   = "ORGANIZATION"
	EnvToken          = "PERSONAL_ACCESS_TOKEN"
	EnvOpenAIKey      = "OPENAI_API_KEY"
	EnvProxyURL       = "OPENAI_PROXY_URL"
	EnvModel          = "MODEL"
	EnvTemperature    = "TEMPERATURE"
	EnvCertFile       = "SSL_CERT_FILE"
	EnvTrackerBaseURL = "TFS_BASE_URL"
	EnvProvider       = "FEATURECRAFT_AI_PROVIDER"
	EnvAddr           = "FEATURECRAFT_ADDR"
	EnvPromptFile     = "FEATURECRAFT_PROMPT_FILE"
	EnvLanguage       = "FEATURECRAFT_LANG"
	EnvLogLevel       = "FEATURECRAFT_LOG_LEVEL"
)

// TrackerConfig configures the work item tracker connection.
type TrackerConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Organization string        `yaml:"organization"`
	Token        string        `yaml:"token"`
	APIVersion   string        `yaml:"api_version"`
	Timeout      time.Duration `yaml:"timeout"`
}

// AIConfig configures the completion provider.
type AIConfig struct {
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Temperature float32       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
	PromptFile  string        `yaml:"prompt_file"`
}

// NeedsAPIKey reports whether the provider authenticates with an API key.
// Local and canned providers do not.
func (a AIConfig) NeedsAPIKey() bool {
	switch strings.ToLower(a.Provider) {
	case "mock", "ollama":
		return false
	}
	return true
}

// NetworkConfig holds outbound HTTP settings shared by both clients.
type NetworkConfig struct {
	ProxyURL string `yaml:"proxy_url"`
	CertFile string `yaml:"cert_file"`
}

// ServerConfig configures the web UI.
type ServerConfig struct {
	Addr        string        `yaml:"addr"`
	Language    string        `yaml:"language"`
	SessionIdle time.Duration `yaml:"session_idle"`
}

// Config is the full runtime configuration.
type Config struct {
	Tracker  TrackerConfig `yaml:"tracker"`
	AI       AIConfig      `yaml:"ai"`
	Network  NetworkConfig `yaml:"network"`
	Server   ServerConfig  `yaml:"server"`
	LogLevel string        `yaml:"log_level"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		Tracker: TrackerConfig{
			BaseURL:    DefaultTrackerBaseURL,
			APIVersion: DefaultTrackerAPIVersion,
			Timeout:    DefaultTrackerTimeout,
		},
		AI: AIConfig{
			Provider:    DefaultProvider,
			Model:       DefaultModel,
			Temperature: DefaultTemperature,
			Timeout:     DefaultAITimeout,
			PromptFile:  DefaultPromptFile,
		},
		Server: ServerConfig{
			Addr:        DefaultAddr,
			Language:    DefaultLanguage,
			SessionIdle: DefaultSessionIdle,
		},
		LogLevel: DefaultLogLevel,
	}
}

// Load builds the configuration from defaults, the YAML file at path (if it
// exists), ./.env (if it exists) and the process environment. An explicitly
// named file that does not exist is an error; the default file is optional.
func Load(path string) (Config, error) {
	return LoadFrom(path, DefaultEnvFile)
}

// LoadFrom is Load with an explicit dotenv file. Variables already set in the
// process environment take precedence over the dotenv file.
func LoadFrom(path, envFile string) (Config, error) {
	cfg := Default()

	file := path
	if file == "" {
		file = DefaultFile
	}
	if err := loadFile(file, &cfg, path != ""); err != nil {
		return Config{}, err
	}

	dotenv, err := readDotenv(envFile)
	if err != nil {
		return Config{}, err
	}
	getenv := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	}

	if err := cfg.ApplyEnv(getenv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readDotenv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return values, nil
}

func loadFile(path string, cfg *Config, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment values read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	set(&c.Tracker.Organization, EnvOrganization)
	set(&c.Tracker.Token, EnvToken)
	set(&c.Tracker.BaseURL, EnvTrackerBaseURL)
	set(&c.AI.APIKey, EnvOpenAIKey)
	set(&c.AI.Model, EnvModel)
	set(&c.AI.Provider, EnvProvider)
	set(&c.AI.PromptFile, EnvPromptFile)
	set(&c.Network.ProxyURL, EnvProxyURL)
	set(&c.Network.CertFile, EnvCertFile)
	set(&c.Server.Addr, EnvAddr)
	set(&c.Server.Language, EnvLanguage)

	if raw := strings.TrimSpace(getenv(EnvTemperature)); raw != "" {
		temp, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return &ConfigError{Invalid: []string{fmt.Sprintf("%s=%q is not a number", EnvTemperature, raw)}}
		}
		c.AI.Temperature = float32(temp)
	}
	return nil
}

// ConfigError lists every missing or invalid setting.
type ConfigError struct {
	Missing []string
	Invalid []string
}

func (e *ConfigError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return "configuration error: " + strings.Join(parts, "; ")
}

// IsConfigError reports whether err is a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// ValidateTracker checks the settings every tracker command needs.
func (c Config) ValidateTracker() error {
	e := &ConfigError{}
	if c.Tracker.Organization == "" {
		e.Missing = append(e.Missing, EnvOrganization+" (tracker.organization)")
	}
	if c.Tracker.Token == "" {
		e.Missing = append(e.Missing, EnvToken+" (tracker.token)")
	}
	if c.Tracker.Timeout < 0 {
		e.Invalid = append(e.Invalid, "tracker.timeout must not be negative")
	}
	return e.orNil()
}

// Validate checks everything the full application needs: tracker, completion
// provider and server settings.
func (c Config) Validate() error {
	e := &ConfigError{}
	if err := c.ValidateTracker(); err != nil {
		te := err.(*ConfigError)
		e.Missing = append(e.Missing, te.Missing...)
		e.Invalid = append(e.Invalid, te.Invalid...)
	}

	if c.AI.NeedsAPIKey() && c.AI.APIKey == "" {
		e.Missing = append(e.Missing, EnvOpenAIKey+" (ai.api_key)")
	}
	if c.AI.Model == "" {
		e.Missing = append(e.Missing, EnvModel+" (ai.model)")
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		e.Invalid = append(e.Invalid, fmt.Sprintf("ai.temperature %.2f outside 0..2", c.AI.Temperature))
	}
	if c.AI.PromptFile == "" {
		e.Missing = append(e.Missing, EnvPromptFile+" (ai.prompt_file)")
	}
	if c.Server.Language != "he" && c.Server.Language != "en" {
		e.Invalid = append(e.Invalid, fmt.Sprintf("server.language %q (want he or en)", c.Server.Language))
	}
	return e.orNil()
}

func (e *ConfigError) orNil() error {
	if len(e.Missing) == 0 && len(e.Invalid) == 0 {
		return nil
	}
	return e
}

// Masked returns a copy with secrets hidden, for display.
func (c Config) Masked() Config {
	c.Tracker.Token = mask(c.Tracker.Token)
	c.AI.APIKey = mask(c.AI.APIKey)
	return c
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

// Package config loads resume-matcher settings from a YAML file, the
// environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/megharajeev28/resume-matcher/internal/skills"
)

const (
	EnvPrefix = "RESUME_MATCHER"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

type Config struct {
	Skills []string `mapstructure:"skills" json:"skills"`
	AI     AI       `mapstructure:"ai" json:"ai"`
	Server Server   `mapstructure:"server" json:"server"`
}

type AI struct {
	Provider     string        `mapstructure:"provider" json:"provider"`
	Timeout      time.Duration `mapstructure:"timeout" json:"timeout"`
	MaxChars     int           `mapstructure:"max-chars" json:"max_chars"`
	MaxLogLength int           `mapstructure:"max-log-length" json:"max_log_length"`
	Gemini       Gemini        `mapstructure:"gemini" json:"gemini"`
	OpenAI       OpenAI        `mapstructure:"openai" json:"openai"`
}

type Gemini struct {
	APIKey     string `mapstructure:"api-key" json:"api_key,omitempty"`
	APIKeyFile string `mapstructure:"api-key-file" json:"api_key_file,omitempty"`
	Model      string `mapstructure:"model" json:"model"`
	MaxRetries int    `mapstructure:"max-retries" json:"max_retries"`
}

type OpenAI struct {
	APIKey     string `mapstructure:"api-key" json:"api_key,omitempty"`
	APIKeyFile string `mapstructure:"api-key-file" json:"api_key_file,omitempty"`
	Model      string `mapstructure:"model" json:"model"`
	BaseURL    string `mapstructure:"base-url" json:"base_url,omitempty"`
	MaxRetries int    `mapstructure:"max-retries" json:"max_retries"`
}

type Server struct {
	Listen        string `mapstructure:"listen" json:"listen"`
	MaxUploadSize int    `mapstructure:"max-upload-size" json:"max_upload_size"`
}

// SetDefaults registers every known key so that environment overrides are
// visible to AllSettings.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("skills", skills.DefaultCatalog().Labels())

	v.SetDefault("ai.provider", ProviderGemini)
	v.SetDefault("ai.timeout", "30s")
	v.SetDefault("ai.max-chars", 12000)
	v.SetDefault("ai.max-log-length", 200)

	v.SetDefault("ai.gemini.api-key", "")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	v.SetDefault("ai.gemini.max-retries", 3)

	v.SetDefault("ai.openai.api-key", "")
	v.SetDefault("ai.openai.api-key-file", "")
	v.SetDefault("ai.openai.model", "gpt-4o-mini")
	v.SetDefault("ai.openai.base-url", "")
	v.SetDefault("ai.openai.max-retries", 3)

	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.max-upload-size", 10<<20)
}

// BindEnv maps RESUME_MATCHER_* variables onto keys and adds the
// conventional provider variables for credentials.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	bindings := map[string][]string{
		"ai.gemini.api-key":      {EnvPrefix + "_AI_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"ai.gemini.api-key-file": {EnvPrefix + "_AI_GEMINI_API_KEY_FILE", "GEMINI_API_KEY_FILE"},
		"ai.openai.api-key":      {EnvPrefix + "_AI_OPENAI_API_KEY", "OPENAI_API_KEY"},
		"ai.openai.api-key-file": {EnvPrefix + "_AI_OPENAI_API_KEY_FILE", "OPENAI_API_KEY_FILE"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("binding %s environment variables: %w", key, err)
		}
	}

	return nil
}

// LoadDotEnv loads variables from the given files without overriding the
// ones already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("creating config decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.AI.Provider = strings.ToLower(strings.TrimSpace(cfg.AI.Provider))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks value ranges and the skill catalog.
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderNone:
	default:
		return fmt.Errorf("unsupported ai provider %q (want %s, %s or %s)", c.AI.Provider, ProviderGemini, ProviderOpenAI, ProviderNone)
	}

	if c.AI.Timeout < 0 {
		return fmt.Errorf("ai.timeout must not be negative, got %s", c.AI.Timeout)
	}
	if c.AI.MaxChars < 0 {
		return fmt.Errorf("ai.max-chars must not be negative, got %d", c.AI.MaxChars)
	}
	if c.AI.Gemini.MaxRetries < 0 || c.AI.OpenAI.MaxRetries < 0 {
		return errors.New("ai max-retries must not be negative")
	}
	if c.Server.MaxUploadSize <= 0 {
		return fmt.Errorf("server.max-upload-size must be positive, got %d", c.Server.MaxUploadSize)
	}

	if _, err := c.Catalog(); err != nil {
		return err
	}

	return nil
}

// Catalog builds the skill catalog used for exact matching.
func (c *Config) Catalog() (skills.Catalog, error) {
	catalog, err := skills.NewCatalog(c.Skills)
	if err != nil {
		return skills.Catalog{}, fmt.Errorf("skills: %w", err)
	}
	return catalog, nil
}

// Redacted returns a copy that is safe to log.
func (c Config) Redacted() Config {
	if c.AI.Gemini.APIKey != "" {
		c.AI.Gemini.APIKey = "***"
	}
	if c.AI.OpenAI.APIKey != "" {
		c.AI.OpenAI.APIKey = "***"
	}
	c.Skills = append([]string(nil), c.Skills...)
	return c
}

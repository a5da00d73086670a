// Package config loads application configuration from an optional JSON
// file with environment variable overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration.
type Config struct {
	Server    ServerConfig    `json:"server"`
	OpenAI    OpenAIConfig    `json:"openai"`
	Redis     RedisConfig     `json:"redis"`
	Translate TranslateConfig `json:"translate"`
	Browser   BrowserConfig   `json:"browser"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr     string `json:"addr"`      // Listen address (host:port)
	LogLevel string `json:"log_level"` // debug / info / warn / error
}

// OpenAIConfig configures the translation provider.
type OpenAIConfig struct {
	APIKey      string  `json:"api_key"`
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	BaseURL     string  `json:"base_url"` // For OpenAI-compatible endpoints
}

// RedisConfig configures the shared translation cache. An empty Addr
// disables Redis and falls back to the in-memory cache.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// TranslateConfig configures batching and retry passes.
type TranslateConfig struct {
	TargetLang string `json:"target_lang"`
	BatchSize  int    `json:"batch_size"`
	MaxPasses  int    `json:"max_passes"`
}

// BrowserConfig configures the headless browser used for page fetching.
type BrowserConfig struct {
	Headless    bool          `json:"headless"`
	UserDataDir string        `json:"user_data_dir"` // Profile dir, for logged-in sessions
	Delay       time.Duration `json:"delay"`         // Settle time after page load
	Timeout     time.Duration `json:"timeout"`
}

// Load reads configuration from the given JSON file, applies defaults for
// unset fields, then applies environment overrides. A missing file is not
// an error; defaults plus environment are used.
func Load(configPath ...string) (*Config, error) {
	path := "configs/config.json"
	if len(configPath) > 0 && configPath[0] != "" {
		path = configPath[0]
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := defaultConfig()
		applyEnvOverrides(cfg)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Unmarshal over the defaults so fields absent from the file keep
	// their default values, booleans included.
	cfg := defaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadOrDefault loads configuration, falling back to defaults plus
// environment overrides on any error.
func LoadOrDefault(configPath ...string) *Config {
	cfg, err := Load(configPath...)
	if err != nil {
		fallback := defaultConfig()
		applyEnvOverrides(fallback)
		return fallback
	}
	return cfg
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:     ":8080",
			LogLevel: "info",
		},
		OpenAI: OpenAIConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
		},
		Redis: RedisConfig{
			Addr: "",
		},
		Translate: TranslateConfig{
			TargetLang: "en",
			BatchSize:  50,
			MaxPasses:  3,
		},
		Browser: BrowserConfig{
			Headless: true,
			Delay:    10 * time.Second,
			Timeout:  60 * time.Second,
		},
	}
}

func applyDefaults(cfg *Config) {
	defaults := defaultConfig()

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaults.Server.Addr
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = defaults.Server.LogLevel
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = defaults.OpenAI.Model
	}
	if cfg.OpenAI.Temperature == 0 {
		cfg.OpenAI.Temperature = defaults.OpenAI.Temperature
	}
	if cfg.Translate.TargetLang == "" {
		cfg.Translate.TargetLang = defaults.Translate.TargetLang
	}
	if cfg.Translate.BatchSize == 0 {
		cfg.Translate.BatchSize = defaults.Translate.BatchSize
	}
	if cfg.Translate.MaxPasses == 0 {
		cfg.Translate.MaxPasses = defaults.Translate.MaxPasses
	}
	if cfg.Browser.Delay == 0 {
		cfg.Browser.Delay = defaults.Browser.Delay
	}
	if cfg.Browser.Timeout == 0 {
		cfg.Browser.Timeout = defaults.Browser.Timeout
	}
}

// envBindings maps viper keys to the environment variables that override
// the corresponding config fields.
var envBindings = map[string]string{
	"server_addr":           "SERVER_ADDR",
	"log_level":             "LOG_LEVEL",
	"openai_api_key":        "OPENAI_API_KEY",
	"openai_model":          "OPENAI_MODEL",
	"openai_base_url":       "OPENAI_BASE_URL",
	"openai_temperature":    "OPENAI_TEMPERATURE",
	"redis_addr":            "REDIS_ADDR",
	"redis_password":        "REDIS_PASSWORD",
	"redis_db":              "REDIS_DB",
	"target_lang":           "TARGET_LANG",
	"translate_batch_size":  "TRANSLATE_BATCH_SIZE",
	"translate_max_passes":  "TRANSLATE_MAX_PASSES",
	"browser_headless":      "BROWSER_HEADLESS",
	"browser_user_data_dir": "BROWSER_USER_DATA_DIR",
	"browser_delay":         "BROWSER_DELAY",
	"browser_timeout":       "BROWSER_TIMEOUT",
}

func applyEnvOverrides(cfg *Config) {
	v := viper.New()
	v.AutomaticEnv()
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	setString := func(key string, dst *string) {
		if s := v.GetString(key); s != "" {
			*dst = s
		}
	}
	setInt := func(key string, dst *int) {
		if s := v.GetString(key); s != "" {
			if i, err := strconv.Atoi(s); err == nil {
				*dst = i
			}
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if s := v.GetString(key); s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				*dst = d
			}
		}
	}

	setString("server_addr", &cfg.Server.Addr)
	setString("log_level", &cfg.Server.LogLevel)

	setString("openai_api_key", &cfg.OpenAI.APIKey)
	setString("openai_model", &cfg.OpenAI.Model)
	setString("openai_base_url", &cfg.OpenAI.BaseURL)
	if s := v.GetString("openai_temperature"); s != "" {
		if f, err := strconv.ParseFloat(s, 32); err == nil {
			cfg.OpenAI.Temperature = float32(f)
		}
	}

	setString("redis_addr", &cfg.Redis.Addr)
	setString("redis_password", &cfg.Redis.Password)
	setInt("redis_db", &cfg.Redis.DB)

	setString("target_lang", &cfg.Translate.TargetLang)
	setInt("translate_batch_size", &cfg.Translate.BatchSize)
	setInt("translate_max_passes", &cfg.Translate.MaxPasses)

	if s := v.GetString("browser_headless"); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			cfg.Browser.Headless = b
		}
	}
	setString("browser_user_data_dir", &cfg.Browser.UserDataDir)
	setDuration("browser_delay", &cfg.Browser.Delay)
	setDuration("browser_timeout", &cfg.Browser.Timeout)
}

// UnmarshalJSON accepts duration fields as strings like "10s".
func (b *BrowserConfig) UnmarshalJSON(data []byte) error {
	type Alias BrowserConfig
	aux := &struct {
		Delay   string `json:"delay"`
		Timeout string `json:"timeout"`
		*Alias
	}{
		Alias: (*Alias)(b),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if aux.Delay != "" {
		d, err := time.ParseDuration(aux.Delay)
		if err != nil {
			return fmt.Errorf("invalid delay format: %w", err)
		}
		b.Delay = d
	}
	if aux.Timeout != "" {
		d, err := time.ParseDuration(aux.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout format: %w", err)
		}
		b.Timeout = d
	}
	return nil
}

// MarshalJSON writes duration fields as strings.
func (b BrowserConfig) MarshalJSON() ([]byte, error) {
	type Alias BrowserConfig
	return json.Marshal(&struct {
		Delay   string `json:"delay"`
		Timeout string `json:"timeout"`
		*Alias
	}{
		Delay:   b.Delay.String(),
		Timeout: b.Timeout.String(),
		Alias:   (*Alias)(&b),
	})
}

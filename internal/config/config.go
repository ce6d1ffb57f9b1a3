package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix             = "NOMADTABLE"
	defaultHTTPAddress    = "0.0.0.0:8080"
	defaultStoragePath    = "nomadtable-data"
	defaultChatOrdering   = "insertion"
	defaultLogLevel       = "info"
	defaultLogFormat      = "json"
	defaultGeminiModel    = "gemini-2.5-flash"
	defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"
)

// AppConfig captures runtime configuration for the API server.
type AppConfig struct {
	HTTPAddress    string
	StoragePath    string
	StoreWorkDir   string
	ChatOrdering   string
	LogLevel       string
	LogFormat      string
	GeminiAPIKey   string
	GeminiModel    string
	GeminiEndpoint string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("storage.path", defaultStoragePath)
	configViper.SetDefault("store.work_dir", "")
	configViper.SetDefault("chat.ordering", defaultChatOrdering)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("log.format", defaultLogFormat)
	configViper.SetDefault("gemini.api_key", "")
	configViper.SetDefault("gemini.model", defaultGeminiModel)
	configViper.SetDefault("gemini.endpoint", defaultGeminiEndpoint)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:    configViper.GetString("http.address"),
		StoragePath:    configViper.GetString("storage.path"),
		StoreWorkDir:   configViper.GetString("store.work_dir"),
		ChatOrdering:   strings.ToLower(strings.TrimSpace(configViper.GetString("chat.ordering"))),
		LogLevel:       configViper.GetString("log.level"),
		LogFormat:      configViper.GetString("log.format"),
		GeminiAPIKey:   strings.TrimSpace(configViper.GetString("gemini.api_key")),
		GeminiModel:    configViper.GetString("gemini.model"),
		GeminiEndpoint: configViper.GetString("gemini.endpoint"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.HTTPAddress) == "" {
		return fmt.Errorf("http.address is required")
	}
	if strings.TrimSpace(c.StoragePath) == "" {
		return fmt.Errorf("storage.path is required")
	}
	switch c.ChatOrdering {
	case "insertion", "timestamp":
	default:
		return fmt.Errorf("chat.ordering must be insertion or timestamp, got %q", c.ChatOrdering)
	}
	if strings.TrimSpace(c.GeminiModel) == "" {
		return fmt.Errorf("gemini.model is required")
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override (STUDYDESK_SERVER_BASE_URL, ...).
const EnvPrefix = "STUDYDESK"

// Config holds application configuration.
type Config struct {
	Server  ServerConfig
	UI      UIConfig
	History HistoryConfig
	Cache   CacheConfig
	Log     LogConfig
	LLM     LLMConfig
	Contact ContactConfig
}

// ServerConfig points at the study backend.
type ServerConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// UIConfig holds terminal presentation settings.
type UIConfig struct {
	// CollapseBelow is the terminal width (columns) under which the sidebar
	// collapses after a navigation selection.
	CollapseBelow  int  `mapstructure:"collapse_below"`
	AltScreen      bool `mapstructure:"alt_screen"`
	Mouse          bool `mapstructure:"mouse"`
	RestrictInputs bool `mapstructure:"restrict_inputs"`
	// Style is a glamour standard style: dark, light, notty, dracula...
	Style string `mapstructure:"style"`
}

// HistoryConfig locates the saved-results file.
type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

// CacheConfig locates downloaded arXiv PDFs.
type CacheConfig struct {
	Dir string `mapstructure:"dir"`
}

// LogConfig controls the file logger.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// LLMConfig configures the local question-answering model used by the file reader.
type LLMConfig struct {
	Provider string `mapstructure:"provider"`
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
}

// ContactConfig feeds the contact panel.
type ContactConfig struct {
	Email string `mapstructure:"email"`
	URL   string `mapstructure:"url"`
}

// Load reads configuration from defaults, an optional file and the environment.
// path may be empty; STUDYDESK_CONFIG is consulted next, then the user config dir.
func Load(path string) (Config, error) {
	v := viper.New()
	SetDefaults(v)

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "studydesk"))
		}
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return FromViper(v)
}

// SetDefaults registers every key so env overrides work without a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.base_url", "http://localhost:8000")
	v.SetDefault("server.timeout", 2*time.Minute)
	v.SetDefault("ui.collapse_below", 96)
	v.SetDefault("ui.alt_screen", true)
	v.SetDefault("ui.mouse", true)
	v.SetDefault("ui.restrict_inputs", true)
	v.SetDefault("ui.style", "dark")
	v.SetDefault("history.path", filepath.Join(".", "studydesk_history.json"))
	v.SetDefault("cache.dir", defaultCacheDir())
	v.SetDefault("log.path", filepath.Join(defaultStateDir(), "studydesk.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("llm.endpoint", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("contact.email", "support@studydesk.dev")
	v.SetDefault("contact.url", "https://github.com/csheth/studydesk/issues")
}

// FromViper decodes and validates an already-populated viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports configuration values the program cannot work with.
func (c Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server.base_url %q is not an absolute URL", c.Server.BaseURL)
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("server.timeout must not be negative, got %s", c.Server.Timeout)
	}
	if c.UI.CollapseBelow < 0 {
		return fmt.Errorf("ui.collapse_below must not be negative, got %d", c.UI.CollapseBelow)
	}
	switch strings.ToLower(c.LLM.Provider) {
	case "", "none", "ollama", "openai":
	default:
		return fmt.Errorf("llm.provider %q is not one of none, ollama, openai", c.LLM.Provider)
	}
	return nil
}

func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(os.TempDir(), "studydesk-cache")
	}
	return filepath.Join(base, "studydesk", "pdfs")
}

func defaultStateDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(base, "studydesk")
}

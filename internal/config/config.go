package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all client configuration values.
type Config struct {
	APIURL         string        `mapstructure:"API_URL"`
	WebURL         string        `mapstructure:"WEB_URL"`
	Timezone       string        `mapstructure:"TIMEZONE"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	LogFile        string        `mapstructure:"LOG_FILE"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	RateLimit      float64       `mapstructure:"RATE_LIMIT"`
	SessionFile    string        `mapstructure:"SESSION_FILE"`
	PaymentMethod  string        `mapstructure:"PAYMENT_METHOD"`
	Token          string        `mapstructure:"TOKEN"`
}

// envPrefix namespaces environment variables, e.g. CONSULTLY_API_URL.
const envPrefix = "CONSULTLY"

var keys = []string{
	"API_URL", "WEB_URL", "TIMEZONE", "LOG_LEVEL", "LOG_FILE",
	"REQUEST_TIMEOUT", "RATE_LIMIT", "SESSION_FILE", "PAYMENT_METHOD", "TOKEN",
}

// Dir returns ~/.consultly.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".consultly"), nil
}

// Load reads configuration with precedence: env (and .env) > config.yaml > defaults.
// config.yaml is searched in the working directory and ~/.consultly.
func Load() (*Config, error) {
	godotenv.Load() //nolint:errcheck // .env is optional

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	dir, dirErr := Dir()
	if dirErr == nil {
		v.AddConfigPath(dir)
	}
	return load(v, dir)
}

func load(v *viper.Viper, dir string) (*Config, error) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only resolves keys viper already knows about.
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("config.Load: bind %s: %w", k, err)
		}
	}

	v.SetDefault("API_URL", "https://api.consultly.app")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REQUEST_TIMEOUT", 30*time.Second)
	v.SetDefault("RATE_LIMIT", 5.0)
	v.SetDefault("PAYMENT_METHOD", "mock")
	if dir != "" {
		v.SetDefault("SESSION_FILE", filepath.Join(dir, "session.json"))
		v.SetDefault("LOG_FILE", filepath.Join(dir, "consultly.log"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config.Load: read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: unmarshal: %w", err)
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	cfg.WebURL = strings.TrimRight(cfg.WebURL, "/")
	if cfg.SessionFile == "" {
		return nil, errors.New("config.Load: no session file location (set CONSULTLY_SESSION_FILE)")
	}
	if cfg.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Timezone); err != nil {
			return nil, fmt.Errorf("config.Load: invalid TIMEZONE %q: %w", cfg.Timezone, err)
		}
	}
	return &cfg, nil
}

// Location resolves the display timezone. Load has already rejected an
// unknown zone; an empty one means the local zone.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

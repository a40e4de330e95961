package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// Values are read from app.env in the config directory and can be overridden by environment variables.
type Config struct {
	DBSource       string        `mapstructure:"DB_SOURCE"`
	ServerAddress  string        `mapstructure:"SERVER_ADDRESS"`
	Environment    string        `mapstructure:"ENVIRONMENT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	DBPingTimeout  time.Duration `mapstructure:"DB_PING_TIMEOUT"`
	RunMigrations  bool          `mapstructure:"RUN_MIGRATIONS"`
	APIPrefix      string        `mapstructure:"API_PREFIX"`
}

var defaults = map[string]any{
	"DB_SOURCE":       "",
	"SERVER_ADDRESS":  ":8080",
	"ENVIRONMENT":     "development",
	"LOG_LEVEL":       "info",
	"REQUEST_TIMEOUT": "10s",
	"DB_PING_TIMEOUT": "5s",
	"RUN_MIGRATIONS":  true,
	"API_PREFIX":      "/v1",
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	// Every key needs a default so AutomaticEnv picks it up during Unmarshal.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("config: failed to read config file: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("config: failed to decode config: %w", err)
	}

	if err = config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

// Validate checks the values that have no usable default.
func (c Config) Validate() error {
	if c.DBSource == "" {
		return errors.New("config: DB_SOURCE is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

// IsProduction reports whether the service runs with production settings.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

package config

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	sslModeDisable = "disable"
	sslModeRequire = "require"
)

type (
	Config struct {
		Host string `mapstructure:"HOST"`
		Port string `mapstructure:"PORT"`

		DBHost     string `mapstructure:"DB_HOST"`
		DBPort     string `mapstructure:"DB_PORT"`
		DBUser     string `mapstructure:"DB_USER"`
		DBPassword string `mapstructure:"DB_PASSWORD"`
		DBName     string `mapstructure:"DB_NAME"`
		DBSSLMode  string `mapstructure:"DB_SSL_MODE"`

		SMTPHost     string `mapstructure:"SMTP_HOST"`
		SMTPPort     string `mapstructure:"SMTP_PORT"`
		SMTPUser     string `mapstructure:"SMTP_USER"`
		SMTPPassword string `mapstructure:"SMTP_PASSWORD"`

		SiteTitle     string `mapstructure:"SITE_TITLE"`
		SupportEmail  string `mapstructure:"SUPPORT_EMAIL"`
		ClientBaseURL string `mapstructure:"CLIENT_BASE_URL"`

		WorkerCount int `mapstructure:"WORKER_COUNT"`
	}
)

func NewConfig() (*Config, error) {
	viper.SetEnvPrefix("RECIPEBOX")

	viper.SetDefault("HOST", "0.0.0.0")
	viper.SetDefault("PORT", "1323")
	viper.SetDefault("DB_HOST", "0.0.0.0")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "db")
	viper.SetDefault("DB_SSL_MODE", sslModeDisable)
	viper.SetDefault("SMTP_HOST", "0.0.0.0")
	viper.SetDefault("SMTP_PORT", "1025")
	viper.SetDefault("SMTP_USER", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("SITE_TITLE", "RecipeBox")
	viper.SetDefault("SUPPORT_EMAIL", "support@recipebox.localhost")
	viper.SetDefault("CLIENT_BASE_URL", "http://localhost:3000")
	viper.SetDefault("WORKER_COUNT", 4)

	envs := []string{
		"HOST", "PORT",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASSWORD",
		"SITE_TITLE", "SUPPORT_EMAIL", "CLIENT_BASE_URL",
		"WORKER_COUNT",
	}
	for _, key := range envs {
		if err := viper.BindEnv(key); err != nil {
			return nil, err
		}
	}

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	validSSLValues := []string{sslModeDisable, sslModeRequire}
	valid := false
	for _, validValue := range validSSLValues {
		if cfg.DBSSLMode == validValue {
			valid = true
			break
		}
	}
	if !valid {
		return errors.New(fmt.Sprintf("DB SSL mode is invalid: %s", cfg.DBSSLMode))
	}

	if cfg.WorkerCount < 1 {
		return errors.New(fmt.Sprintf("worker count must be positive: %d", cfg.WorkerCount))
	}

	return nil
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Email     EmailConfig
}

type ServerConfig struct {
	Port           int  `mapstructure:"port"`
	TimeoutSeconds int  `mapstructure:"timeoutSeconds"`
	SecureCookies  bool `mapstructure:"secureCookies"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type RateLimitConfig struct {
	LoginLimit   int           `mapstructure:"loginLimit"`
	CancelLimit  int           `mapstructure:"cancelLimit"`
	Window       time.Duration `mapstructure:"window"`
	GlobalPerSec float64       `mapstructure:"globalPerSec"`
	GlobalBurst  int           `mapstructure:"globalBurst"`
}

type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

const minJWTSecretLen = 32

// LoadConfig reads config.yaml merged with environment overrides and
// validates everything the process cannot run without. The JWT secret check
// is the single fail-fast gate for both token services.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.timeoutSeconds", 30)
	viper.SetDefault("ratelimit.loginLimit", 5)
	viper.SetDefault("ratelimit.cancelLimit", 10)
	viper.SetDefault("ratelimit.window", time.Minute)
	viper.SetDefault("ratelimit.globalPerSec", 50.0)
	viper.SetDefault("ratelimit.globalBurst", 100)

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if len(c.JWT.Secret) < minJWTSecretLen {
		return fmt.Errorf("jwt.secret must be at least %d bytes", minJWTSecretLen)
	}
	if c.Database.Host == "" || c.Database.Name == "" {
		return fmt.Errorf("database host and name are required")
	}
	return nil
}

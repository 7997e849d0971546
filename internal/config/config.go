package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type SMTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	From string `mapstructure:"from"`
	User string `mapstructure:"user"`
	Pass string `mapstructure:"pass"`
}

type Config struct {
	Mode              string        `mapstructure:"mode"`
	Port              int           `mapstructure:"port"`
	DBPath            string        `mapstructure:"db_path"`
	Secret            string        `mapstructure:"secret"`
	TokenTTL          time.Duration `mapstructure:"token_ttl"`
	BcryptCost        int           `mapstructure:"bcrypt_cost"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	FreshnessWindow   time.Duration `mapstructure:"freshness_window"`
	SendBuffer        int           `mapstructure:"send_buffer"`
	FrontendURL       string        `mapstructure:"frontend_url"`
	VerifyURLBase     string        `mapstructure:"verify_url_base"`
	SMTP              SMTPConfig    `mapstructure:"smtp"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 4000)
	v.SetDefault("db_path", "tunesync.db")
	v.SetDefault("secret", "dev-secret-please-change")
	v.SetDefault("token_ttl", "168h")
	v.SetDefault("bcrypt_cost", 10)
	v.SetDefault("heartbeat_interval", "2s")
	v.SetDefault("freshness_window", "5s")
	v.SetDefault("send_buffer", 32)
	v.SetDefault("frontend_url", "http://localhost:3000")
	v.SetDefault("verify_url_base", "http://localhost:4000")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode       string `mapstructure:"mode"`
	Port       int    `mapstructure:"port"`
	ReadLimit  int64  `mapstructure:"read_limit"`
	SendBuffer int    `mapstructure:"send_buffer"`

	TokenSecret string `mapstructure:"token_secret"`

	TypingTimeout       time.Duration `mapstructure:"typing_timeout"`
	TypingSweepInterval time.Duration `mapstructure:"typing_sweep_interval"`
	CommentTimeout      time.Duration `mapstructure:"comment_timeout"`

	RateLimit    int           `mapstructure:"rate_limit"`
	RateInterval time.Duration `mapstructure:"rate_interval"`

	Store      string `mapstructure:"store"` // memory | sqlite
	SQLitePath string `mapstructure:"sqlite_path"`
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
	v.SetDefault("port", 8080)
	v.SetDefault("read_limit", 32768)
	v.SetDefault("send_buffer", 64)
	v.SetDefault("token_secret", "dev-secret")
	v.SetDefault("typing_timeout", "5s")
	v.SetDefault("typing_sweep_interval", "1s")
	v.SetDefault("comment_timeout", "3s")
	v.SetDefault("rate_limit", 30)
	v.SetDefault("rate_interval", "10s")
	v.SetDefault("store", "memory")
	v.SetDefault("sqlite_path", "./data/liveroom.db")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

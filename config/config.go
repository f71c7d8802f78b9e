package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	SourceFile  = "file"
	SourceRedis = "redis"
)

type Config struct {
	Port            string
	DataSource      string
	DataFile        string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisKey        string
	GeneratorCount  int
	GeneratorSeed   int64
	DefaultPageSize int
	CORSOrigins     string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "4000")
	v.SetDefault("data_source", SourceFile)
	v.SetDefault("data_file", "locations.json")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_key", "locations:data")
	v.SetDefault("generator_count", 10000)
	v.SetDefault("generator_seed", 0)
	v.SetDefault("default_page_size", 20000)
	v.SetDefault("cors_origins", "*")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("shutdown_timeout", "10s")
}

// Load reads .env (if present), an optional CONFIG_FILE, then the environment.
// Environment variables win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		Port:            strings.TrimPrefix(v.GetString("port"), ":"),
		DataSource:      strings.ToLower(v.GetString("data_source")),
		DataFile:        v.GetString("data_file"),
		RedisAddr:       v.GetString("redis_addr"),
		RedisPassword:   v.GetString("redis_password"),
		RedisDB:         v.GetInt("redis_db"),
		RedisKey:        v.GetString("redis_key"),
		GeneratorCount:  v.GetInt("generator_count"),
		GeneratorSeed:   v.GetInt64("generator_seed"),
		DefaultPageSize: v.GetInt("default_page_size"),
		CORSOrigins:     v.GetString("cors_origins"),
		LogLevel:        v.GetString("log_level"),
		LogFormat:       v.GetString("log_format"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DataSource {
	case SourceFile:
		if c.DataFile == "" {
			return fmt.Errorf("DATA_FILE is required when DATA_SOURCE=%s", SourceFile)
		}
	case SourceRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when DATA_SOURCE=%s", SourceRedis)
		}
	default:
		return fmt.Errorf("unknown DATA_SOURCE %q (want %s or %s)", c.DataSource, SourceFile, SourceRedis)
	}
	if c.DefaultPageSize < 1 {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be positive, got %d", c.DefaultPageSize)
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

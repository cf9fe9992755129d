// Package config loads SmartShop configuration from defaults, an optional
// config.yaml and SMARTSHOP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. SMARTSHOP_DATABASE_URL.
const EnvPrefix = "SMARTSHOP"

// Config holds all application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Log      LogConfig      `mapstructure:"log" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	JWT      JWTConfig      `mapstructure:"jwt" validate:"required"`
	Invoice  InvoiceConfig  `mapstructure:"invoice" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// AppConfig identifies the running instance.
type AppConfig struct {
	Name string `mapstructure:"name" validate:"required"`
	Env  string `mapstructure:"env" validate:"required,oneof=development staging production test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains PostgreSQL settings.
type DatabaseConfig struct {
	URL              string        `mapstructure:"url" validate:"required"`
	MaxConns         int32         `mapstructure:"max_conns" validate:"gt=0"`
	MinConns         int32         `mapstructure:"min_conns" validate:"gte=0"`
	StatementTimeout time.Duration `mapstructure:"statement_timeout" validate:"gte=0"`
	AutoMigrate      bool          `mapstructure:"auto_migrate"`
}

// JWTConfig contains token signing settings.
type JWTConfig struct {
	Secret   string        `mapstructure:"secret" validate:"required,min=32"`
	Issuer   string        `mapstructure:"issuer" validate:"required"`
	Audience string        `mapstructure:"audience" validate:"required"`
	TTL      time.Duration `mapstructure:"ttl" validate:"gt=0"`
}

// InvoiceConfig contains invoice policies.
type InvoiceConfig struct {
	Numbering             string `mapstructure:"numbering" validate:"required,oneof=timestamp sequence"`
	RejectUnknownProducts bool   `mapstructure:"reject_unknown_products"`
	HistoryLimit          int    `mapstructure:"history_limit" validate:"gt=0"`
}

// RedisConfig enables the distributed keyed locker when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db" validate:"gte=0"`
	LockTTL  time.Duration `mapstructure:"lock_ttl" validate:"gte=0"`
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "smartshop")
	v.SetDefault("app.env", "development")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("log.level", "info")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 25)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.statement_timeout", 30*time.Second)
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "smartshop")
	v.SetDefault("jwt.audience", "smartshop")
	v.SetDefault("jwt.ttl", 30*time.Minute)

	v.SetDefault("invoice.numbering", "timestamp")
	v.SetDefault("invoice.reject_unknown_products", false)
	v.SetDefault("invoice.history_limit", 100)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_ttl", 30*time.Second)
}

// Load reads configuration. configPath may name a file explicitly; when empty,
// config.yaml is searched in the working directory and ./config.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

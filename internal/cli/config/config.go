package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/shapec-dev/shapec/internal/compiler/cache"
	"github.com/shapec-dev/shapec/internal/store"
)

// EnvPrefix prefixes every environment override, e.g. SHAPEC_STORE_DSN.
const EnvPrefix = "SHAPEC"

// Config represents the shapec configuration
type Config struct {
	DataDir       string   `mapstructure:"data_dir"`
	OutputDir     string   `mapstructure:"output_dir"`
	OverridesFile string   `mapstructure:"overrides_file"`
	SDKVersion    string   `mapstructure:"sdk_version"`
	Workers       int      `mapstructure:"workers"`
	ReservedWords []string `mapstructure:"reserved_words"`

	Log    LogConfig    `mapstructure:"log"`
	Store  StoreConfig  `mapstructure:"store"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Server ServerConfig `mapstructure:"server"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StoreConfig represents the snapshot store configuration
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Driver  string `mapstructure:"driver"`
	DSN     string `mapstructure:"dsn"`
}

// CacheConfig represents the compile cache configuration
type CacheConfig struct {
	Backend   string        `mapstructure:"backend"`
	RedisAddr string        `mapstructure:"redis_addr"`
	TTL       time.Duration `mapstructure:"ttl"`
	Prefix    string        `mapstructure:"prefix"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "data")
	v.SetDefault("output_dir", "build/shapec")
	v.SetDefault("overrides_file", "")
	v.SetDefault("sdk_version", "")
	v.SetDefault("workers", 4)
	v.SetDefault("reserved_words", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("store.enabled", true)
	v.SetDefault("store.driver", store.DriverSQLite)
	v.SetDefault("store.dsn", "shapec.db")

	v.SetDefault("cache.backend", cache.BackendMemory)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("cache.prefix", "shapec:")

	v.SetDefault("server.addr", ":8088")
}

// Load loads the configuration. An empty path looks for shapec.yaml in the
// working directory and uses defaults when none exists; an explicit path
// must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("shapec")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got: %d", c.Workers)
	}
	if err := store.ValidateDriver(c.Store.Driver); err != nil {
		return fmt.Errorf("store.driver: %w", err)
	}
	switch c.Cache.Backend {
	case cache.BackendMemory, cache.BackendRedis, cache.BackendNone:
	default:
		return fmt.Errorf("cache.backend must be one of memory, redis, none, got: %s", c.Cache.Backend)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	return nil
}

// CacheOptions converts the cache section into cache options.
func (c *Config) CacheOptions() cache.Options {
	cfg := cache.DefaultConfig()
	cfg.DefaultTTL = c.Cache.TTL
	cfg.Prefix = c.Cache.Prefix
	return cache.Options{
		Backend:   c.Cache.Backend,
		RedisAddr: c.Cache.RedisAddr,
		Config:    cfg,
	}
}

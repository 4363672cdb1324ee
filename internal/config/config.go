package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // Draw.Timezone must resolve in minimal containers

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	JWT      JWTConfig
	Draw     DrawConfig
	Currency CurrencyConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	LogLevel string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int
}

// DrawConfig controls the periodic draw trigger and voucher defaults
type DrawConfig struct {
	Enabled               bool
	Schedule              string // cron spec, evaluated in Timezone
	Timezone              string
	DefaultValidityMonths int
}

// Location resolves the configured timezone, falling back to UTC
func (d DrawConfig) Location() *time.Location {
	if d.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CurrencyConfig holds the currency -> USD table used for prize tiers
type CurrencyConfig struct {
	Default string
	Rates   map[string]float64
}

// RedisConfig holds the Redis connection used for per-raffle draw leases
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	LockTTL  time.Duration
}

// KafkaConfig holds voucher event publishing settings
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	return load("")
}

// LoadFile loads configuration from an explicit file, still honouring environment overrides
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	setDefaults(v)

	// Read configuration
	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, err
		}
	}

	// Unmarshal configuration
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	if c.MongoDB.URI == "" {
		return fmt.Errorf("MongoDB.URI is required")
	}
	if c.Draw.DefaultValidityMonths <= 0 {
		return fmt.Errorf("Draw.DefaultValidityMonths must be positive, got %d", c.Draw.DefaultValidityMonths)
	}
	if c.Draw.Timezone != "" {
		if _, err := time.LoadLocation(c.Draw.Timezone); err != nil {
			return fmt.Errorf("invalid Draw.Timezone %q: %w", c.Draw.Timezone, err)
		}
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return fmt.Errorf("Kafka.Brokers and Kafka.Topic are required when Kafka is enabled")
	}
	return nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Port", "4000")
	v.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	v.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	v.SetDefault("MongoDB.Database", "winwai")
	v.SetDefault("JWT.Secret", "")
	v.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	v.SetDefault("Draw.Enabled", true)
	v.SetDefault("Draw.Schedule", "0 12 * * *")
	v.SetDefault("Draw.Timezone", "Asia/Bangkok")
	v.SetDefault("Draw.DefaultValidityMonths", 3)
	v.SetDefault("Currency.Default", "THB")
	v.SetDefault("Currency.Rates", map[string]float64{
		"USD": 1.0,
		"THB": 0.028,
		"EUR": 1.08,
		"GBP": 1.27,
		"JPY": 0.0067,
		"SGD": 0.74,
		"MYR": 0.21,
		"AUD": 0.66,
	})
	v.SetDefault("Redis.Enabled", false)
	v.SetDefault("Redis.Addr", "localhost:6379")
	v.SetDefault("Redis.DB", 0)
	v.SetDefault("Redis.LockTTL", 2*time.Minute)
	v.SetDefault("Kafka.Enabled", false)
	v.SetDefault("Kafka.Brokers", []string{"localhost:9092"})
	v.SetDefault("Kafka.Topic", "voucher-issued")
	v.SetDefault("LogLevel", "info")
}

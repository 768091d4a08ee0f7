// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"telegram-betting-bot/internal/ledger"
)

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Betting   BettingConfig   `mapstructure:"betting"`
	Daily     DailyConfig     `mapstructure:"daily"`
	Snapshot  SnapshotConfig  `mapstructure:"snapshot"`
	Database  DatabaseConfig  `mapstructure:"database"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token string `mapstructure:"token"`
}

// AdminConfig holds admin user configuration. Admins may create, lock and
// resolve markets, adjust the wager ceiling and trigger snapshot saves.
type AdminConfig struct {
	IDs []int64 `mapstructure:"ids"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// BettingConfig holds the ledger's monetary bounds. Amounts are decimal
// strings so money never passes through float64.
type BettingConfig struct {
	StartingBalance string `mapstructure:"starting_balance"`
	MinWager        string `mapstructure:"min_wager"`
	MaxWager        string `mapstructure:"max_wager"`
	DefaultOdds     string `mapstructure:"default_odds"`
}

// DailyConfig holds daily reward configuration.
type DailyConfig struct {
	Reward   string `mapstructure:"reward"`
	Timezone string `mapstructure:"timezone"`
}

// SnapshotConfig holds snapshot persistence configuration.
type SnapshotConfig struct {
	Backend      string        `mapstructure:"backend"` // "file" or "postgres"
	Path         string        `mapstructure:"path"`
	SaveInterval time.Duration `mapstructure:"save_interval"`
}

// DatabaseConfig holds PostgreSQL connection configuration, used only
// when the snapshot backend is "postgres".
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Configure viper
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Enable environment variable override
	// Environment variables use underscore separator and uppercase
	// e.g., BOT_TOKEN, SNAPSHOT_BACKEND, DATABASE_HOST
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional - env vars can provide all config)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - we can use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Betting defaults
	v.SetDefault("betting.starting_balance", "10000")
	v.SetDefault("betting.min_wager", "1")
	v.SetDefault("betting.max_wager", "5000")
	v.SetDefault("betting.default_odds", "2.00")

	// Daily reward defaults
	v.SetDefault("daily.reward", "100")
	v.SetDefault("daily.timezone", "Local")

	// Snapshot defaults
	v.SetDefault("snapshot.backend", "file")
	v.SetDefault("snapshot.path", "data/ledger_snapshot.json")
	v.SetDefault("snapshot.save_interval", "15m")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "bettingbot")
	v.SetDefault("database.name", "bettingbot")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")
}

// LedgerConfig converts the betting and daily sections into a ledger
// configuration, validating every decimal field.
func (c *Config) LedgerConfig() (ledger.Config, error) {
	lc := ledger.DefaultConfig()

	var err error
	if lc.StartingBalance, err = parseAmount("betting.starting_balance", c.Betting.StartingBalance); err != nil {
		return ledger.Config{}, err
	}
	if lc.MinWager, err = parseAmount("betting.min_wager", c.Betting.MinWager); err != nil {
		return ledger.Config{}, err
	}
	if lc.MaxWager, err = parseAmount("betting.max_wager", c.Betting.MaxWager); err != nil {
		return ledger.Config{}, err
	}
	if lc.DailyReward, err = parseAmount("daily.reward", c.Daily.Reward); err != nil {
		return ledger.Config{}, err
	}

	if c.Daily.Timezone != "" {
		loc, err := time.LoadLocation(c.Daily.Timezone)
		if err != nil {
			return ledger.Config{}, fmt.Errorf("invalid daily.timezone %q: %w", c.Daily.Timezone, err)
		}
		lc.Timezone = loc
	}

	return lc, nil
}

// DefaultOdds returns the odds applied when market creation omits them.
func (c *Config) DefaultOdds() (decimal.Decimal, error) {
	return parseAmount("betting.default_odds", c.Betting.DefaultOdds)
}

func parseAmount(key, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

// IsAdmin checks if a user ID is in the admin list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Admin.IDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsChatAllowed checks if a chat ID is in the whitelist.
func (c *Config) IsChatAllowed(chatID int64) bool {
	// Empty whitelist means all chats are allowed
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	for _, id := range c.Whitelist.Chats {
		if id == chatID {
			return true
		}
	}
	return false
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matchday-bet/matchday/internal/util"
	"gopkg.in/yaml.v3"
)

// Config file resolution defaults.
const (
	// DefaultConfigFile is the config file name used when no path is supplied.
	DefaultConfigFile = "config.yaml"
	// ConfigPathEnv overrides the config file location.
	ConfigPathEnv = "MATCHDAY_CONFIG"
	// defaultDSN is the SQLite database used when none is configured.
	defaultDSN = "data/matchday.db"
)

// AppConfig holds process-level options supplied on the command line.
type AppConfig struct {
	ConfigPath string
}

// Config is the parsed YAML configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	JWT        JWTConfig        `yaml:"jwt"`
	Log        LogConfig        `yaml:"log"`
	Fixtures   FixturesConfig   `yaml:"fixtures"`
	Rewards    RewardsConfig    `yaml:"rewards"`
	Settlement SettlementConfig `yaml:"settlement"`
	Feed       FeedConfig       `yaml:"feed"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Events     EventsConfig     `yaml:"events"`
	Admin      AdminConfig      `yaml:"admin"`
}

// ServerConfig configures the HTTP listener and session cookie.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	CookieName      string        `yaml:"cookie_name"`
	CookieSecure    bool          `yaml:"cookie_secure"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds the database DSN (postgres URL/keywords or a SQLite path).
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig enables the redis-backed fixture cache and session store when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// JWTConfig configures session token signing.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// LogConfig configures logrus output.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // "text" or "json"
	File       string `yaml:"file"`   // rotated with lumberjack when set
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// FixturesConfig configures the upstream sports-data API.
type FixturesConfig struct {
	BaseURL       string        `yaml:"base_url"`
	APIKey        string        `yaml:"api_key"`
	Timeout       time.Duration `yaml:"timeout"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
	MatchCacheTTL time.Duration `yaml:"match_cache_ttl"`
	UpcomingDays  int           `yaml:"upcoming_days"`
}

// TierConfig holds the betting limits and payouts of one account tier.
type TierConfig struct {
	BetLimit    int   `yaml:"bet_limit"`
	WinPayout   int64 `yaml:"win_payout"`
	LossPenalty int64 `yaml:"loss_penalty"`
}

// SpinSlice is one entry of the lucky spin table.
type SpinSlice struct {
	Amount int64 `yaml:"amount"`
	Weight int   `yaml:"weight"`
}

// RewardsConfig holds every amount, code and weight the reward rules depend on.
type RewardsConfig struct {
	InitialBalance           int64       `yaml:"initial_balance"`
	VIPActivationCode        string      `yaml:"vip_activation_code"`
	VIPFee                   int64       `yaml:"vip_fee"`
	WithdrawalActivationCode string      `yaml:"withdrawal_activation_code"`
	WithdrawalMinimum        int64       `yaml:"withdrawal_minimum"`
	WithdrawalFee            int64       `yaml:"withdrawal_fee"`
	Regular                  TierConfig  `yaml:"regular"`
	VIP                      TierConfig  `yaml:"vip"`
	SpinTable                []SpinSlice `yaml:"spin_table"`
}

// SettlementConfig configures fixture lookups during settlement and the optional poller.
type SettlementConfig struct {
	LookupTimeout  time.Duration `yaml:"lookup_timeout"`
	Interval       time.Duration `yaml:"interval"` // 0 disables the background poller
	MaxConcurrency int           `yaml:"max_concurrency"`
}

// FeedConfig configures the cosmetic withdrawal feed.
type FeedConfig struct {
	SeedCount int `yaml:"seed_count"` // 0 uses the default, negative disables seeding
}

// TelegramConfig configures the reviewer notification channel.
type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

// EventsConfig selects the domain event broker.
type EventsConfig struct {
	Driver   string   `yaml:"driver"` // "", "kafka", "nats" or "amqp"
	Brokers  []string `yaml:"brokers"`
	Topic    string   `yaml:"topic"`
	URL      string   `yaml:"url"`
	Exchange string   `yaml:"exchange"`
}

// AdminConfig guards the admin API.
type AdminConfig struct {
	Token      string `yaml:"token"`
	TOTPSecret string `yaml:"totp_secret"` // optional second factor, see `matchday admin-totp`
}

// ResolveConfigPath returns the config path from the flag, the environment or the default.
func ResolveConfigPath(path string) string {
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		return filepath.Clean(trimmed)
	}
	if env := strings.TrimSpace(os.Getenv(ConfigPathEnv)); env != "" {
		return filepath.Clean(env)
	}
	if writable := util.WritablePath(); writable != "" {
		return filepath.Join(writable, DefaultConfigFile)
	}
	return DefaultConfigFile
}

// ConfigExists reports whether a config file is present at path.
func ConfigExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Load reads and parses the config file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	raw, errRead := os.ReadFile(path)
	if errRead != nil {
		if errors.Is(errRead, os.ErrNotExist) {
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("config: read %s: %w", path, errRead)
	}
	if errParse := Parse(raw, cfg); errParse != nil {
		return nil, errParse
	}
	return cfg, cfg.Validate()
}

// Parse expands ${ENV} references in raw and decodes it over cfg.
func Parse(raw []byte, cfg *Config) error {
	expanded := os.ExpandEnv(string(raw))
	if errUnmarshal := yaml.Unmarshal([]byte(expanded), cfg); errUnmarshal != nil {
		return fmt.Errorf("config: parse yaml: %w", errUnmarshal)
	}
	cfg.applyDefaults()
	return nil
}

// LoadDatabaseDSN returns only the database DSN from the config file.
func LoadDatabaseDSN(path string) (string, error) {
	cfg, err := Load(path)
	if err != nil {
		return "", err
	}
	return cfg.Database.DSN, nil
}

// Default returns a configuration populated with the built-in defaults.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.CookieName == "" {
		c.Server.CookieName = "matchday_session"
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		c.Database.DSN = defaultDSN
		if writable := util.WritablePath(); writable != "" {
			c.Database.DSN = filepath.Join(writable, defaultDSN)
		}
	}
	if c.JWT.Expiry <= 0 {
		c.JWT.Expiry = 24 * time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = 100
	}
	if c.Fixtures.BaseURL == "" {
		c.Fixtures.BaseURL = "https://apiv2.allsportsapi.com/football"
	}
	if c.Fixtures.Timeout <= 0 {
		c.Fixtures.Timeout = 10 * time.Second
	}
	if c.Fixtures.CacheTTL <= 0 {
		c.Fixtures.CacheTTL = time.Minute
	}
	if c.Fixtures.MatchCacheTTL <= 0 {
		c.Fixtures.MatchCacheTTL = 30 * time.Second
	}
	if c.Fixtures.UpcomingDays <= 0 {
		c.Fixtures.UpcomingDays = 3
	}
	c.Rewards.applyDefaults()
	if c.Settlement.LookupTimeout <= 0 {
		c.Settlement.LookupTimeout = 5 * time.Second
	}
	if c.Settlement.MaxConcurrency <= 0 {
		c.Settlement.MaxConcurrency = 4
	}
	if c.Feed.SeedCount == 0 {
		c.Feed.SeedCount = 320
	}
	if c.Events.Topic == "" {
		c.Events.Topic = "matchday.events"
	}
}

func (r *RewardsConfig) applyDefaults() {
	if r.InitialBalance == 0 {
		r.InitialBalance = 5000
	}
	if r.VIPFee == 0 {
		r.VIPFee = 3000
	}
	if r.WithdrawalMinimum == 0 {
		r.WithdrawalMinimum = 30000
	}
	if r.WithdrawalFee == 0 {
		r.WithdrawalFee = 3000
	}
	if r.Regular == (TierConfig{}) {
		r.Regular = TierConfig{BetLimit: 2, WinPayout: 5000, LossPenalty: 2000}
	}
	if r.VIP == (TierConfig{}) {
		r.VIP = TierConfig{BetLimit: 4, WinPayout: 7500, LossPenalty: 1000}
	}
	if len(r.SpinTable) == 0 {
		r.SpinTable = DefaultSpinTable()
	}
}

// DefaultSpinTable returns the stock lucky spin weights.
func DefaultSpinTable() []SpinSlice {
	return []SpinSlice{
		{Amount: 3000, Weight: 40},
		{Amount: 4000, Weight: 20},
		{Amount: 5000, Weight: 15},
		{Amount: 6000, Weight: 10},
		{Amount: 7000, Weight: 10},
		{Amount: 8000, Weight: 5},
	}
}

// Validate rejects configurations the services cannot run with.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config: nil config")
	}
	if c.Rewards.Regular.BetLimit <= 0 || c.Rewards.VIP.BetLimit <= 0 {
		return errors.New("config: bet limits must be positive")
	}
	totalWeight := 0
	for _, slice := range c.Rewards.SpinTable {
		if slice.Weight < 0 || slice.Amount <= 0 {
			return fmt.Errorf("config: invalid spin slice amount=%d weight=%d", slice.Amount, slice.Weight)
		}
		totalWeight += slice.Weight
	}
	if totalWeight <= 0 {
		return errors.New("config: spin table total weight must be positive")
	}
	switch c.Events.Driver {
	case "", "kafka", "nats", "amqp":
	default:
		return fmt.Errorf("config: unknown events driver %q", c.Events.Driver)
	}
	if c.Admin.TOTPSecret != "" && c.Admin.Token == "" {
		return errors.New("config: admin.totp_secret requires admin.token")
	}
	return nil
}

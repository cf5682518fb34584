package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	defaultHost           = "0.0.0.0"
	defaultPort           = 3000
	defaultMaxConnections = 2000
	defaultPublicURL      = "http://localhost:3000"

	defaultReviewTimeout   = 90 // seconds
	defaultRoundTimeout    = 30 // seconds
	defaultLogLimit        = 100
	defaultSnapshotLogTail = 20
	defaultMinPlayers      = 2
	defaultMaxPlayers      = 12

	defaultShutdownTimeout       = 30 // minutes
	defaultShutdownCheckInterval = 10 // seconds
	defaultRoomCleanupDelay      = 5  // seconds

	defaultRateMaxPerSecond    = 10
	defaultRateMaxPerMinute    = 60
	defaultRateBanDuration     = 60  // seconds
	defaultRateIdleExpiry      = 600 // seconds
	defaultMessageMaxPerSecond = 20
	defaultMessageBurst        = 40

	defaultLogLevel  = "info"
	defaultLogFormat = "console"

	// EnvPrefix prefixes every environment override, e.g. PIRAMIDEN_SERVER_PORT.
	EnvPrefix = "PIRAMIDEN"
)

// Config server configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Game     GameConfig     `yaml:"game"`
	Security SecurityConfig `yaml:"security"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig WebSocket/HTTP listener
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxConnections int    `yaml:"max_connections"`
	PublicURL      string `yaml:"public_url"` // base URL encoded in invite QR codes
}

// RedisConfig redis mirror and stats. An empty Addr disables redis.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig round engine tuning
type GameConfig struct {
	ReviewTimeout   int `yaml:"review_timeout"` // seconds
	RoundTimeout    int `yaml:"round_timeout"`  // seconds
	LogLimit        int `yaml:"log_limit"`
	SnapshotLogTail int `yaml:"snapshot_log_tail"`
	MinPlayers      int `yaml:"min_players"`
	MaxPlayers      int `yaml:"max_players"`

	ShutdownTimeout       int `yaml:"shutdown_timeout"`        // minutes
	ShutdownCheckInterval int `yaml:"shutdown_check_interval"` // seconds
	RoomCleanupDelay      int `yaml:"room_cleanup_delay"`      // seconds
}

// SecurityConfig connection admission
type SecurityConfig struct {
	AllowedOrigins []string           `yaml:"allowed_origins"`
	AllowedIPs     []string           `yaml:"allowed_ips"` // empty admits every IP
	BlockedIPs     []string           `yaml:"blocked_ips"`
	RateLimit      RateLimitConfig    `yaml:"rate_limit"`
	MessageLimit   MessageLimitConfig `yaml:"message_limit"`
}

// RateLimitConfig per-IP connection attempts
type RateLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	MaxPerMinute int `yaml:"max_per_minute"`
	BanDuration  int `yaml:"ban_duration"` // seconds
	IdleExpiry   int `yaml:"idle_expiry"`  // seconds an unbanned IP is remembered
}

// MessageLimitConfig per-connection inbound frames
type MessageLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	Burst        int `yaml:"burst"`
}

// LogConfig logger output
type LogConfig struct {
	Level  string `yaml:"level"`  // debug/info/warn/error
	Format string `yaml:"format"` // console/json
	File   string `yaml:"file"`   // optional, stdout when empty
}

// ReviewTimeoutDuration returns the review phase deadline
func (c *GameConfig) ReviewTimeoutDuration() time.Duration {
	return time.Duration(c.ReviewTimeout) * time.Second
}

// RoundTimeoutDuration returns the auto-pass deadline of a round
func (c *GameConfig) RoundTimeoutDuration() time.Duration {
	return time.Duration(c.RoundTimeout) * time.Second
}

// ShutdownTimeoutDuration returns how long a graceful shutdown waits for games
func (c *GameConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Minute
}

// ShutdownCheckIntervalDuration returns the active game poll interval during shutdown
func (c *GameConfig) ShutdownCheckIntervalDuration() time.Duration {
	return time.Duration(c.ShutdownCheckInterval) * time.Second
}

// RoomCleanupDelayDuration returns the grace period before connections are closed
func (c *GameConfig) RoomCleanupDelayDuration() time.Duration {
	return time.Duration(c.RoomCleanupDelay) * time.Second
}

// BanDurationTime returns the ban length
func (c *RateLimitConfig) BanDurationTime() time.Duration {
	return time.Duration(c.BanDuration) * time.Second
}

// IdleExpiryTime returns how long the counters of a quiet IP are kept
func (c *RateLimitConfig) IdleExpiryTime() time.Duration {
	return time.Duration(c.IdleExpiry) * time.Second
}

// Load reads a YAML file, applies PIRAMIDEN_* env overrides and fills defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyEnv(newEnv())
	cfg.applyDefaults()

	return &cfg, nil
}

// Default returns the built-in configuration with env overrides applied.
func Default() *Config {
	var cfg Config
	cfg.applyEnv(newEnv())
	cfg.applyDefaults()
	return &cfg
}

func newEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// applyEnv overrides file values with environment variables (PIRAMIDEN_SERVER_PORT, ...).
func (c *Config) applyEnv(v *viper.Viper) {
	setString(v, "server.host", &c.Server.Host)
	setInt(v, "server.port", &c.Server.Port)
	setInt(v, "server.max_connections", &c.Server.MaxConnections)
	setString(v, "server.public_url", &c.Server.PublicURL)

	setString(v, "redis.addr", &c.Redis.Addr)
	setString(v, "redis.password", &c.Redis.Password)
	setInt(v, "redis.db", &c.Redis.DB)

	setInt(v, "game.review_timeout", &c.Game.ReviewTimeout)
	setInt(v, "game.round_timeout", &c.Game.RoundTimeout)

	if v.IsSet("security.allowed_origins") {
		c.Security.AllowedOrigins = splitList(v.GetString("security.allowed_origins"))
	}
	if v.IsSet("security.allowed_ips") {
		c.Security.AllowedIPs = splitList(v.GetString("security.allowed_ips"))
	}
	if v.IsSet("security.blocked_ips") {
		c.Security.BlockedIPs = splitList(v.GetString("security.blocked_ips"))
	}

	setString(v, "log.level", &c.Log.Level)
	setString(v, "log.format", &c.Log.Format)
	setString(v, "log.file", &c.Log.File)
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = defaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.MaxConnections == 0 {
		c.Server.MaxConnections = defaultMaxConnections
	}
	if c.Server.PublicURL == "" {
		c.Server.PublicURL = defaultPublicURL
	}

	if c.Game.ReviewTimeout == 0 {
		c.Game.ReviewTimeout = defaultReviewTimeout
	}
	if c.Game.RoundTimeout == 0 {
		c.Game.RoundTimeout = defaultRoundTimeout
	}
	if c.Game.LogLimit == 0 {
		c.Game.LogLimit = defaultLogLimit
	}
	if c.Game.SnapshotLogTail == 0 {
		c.Game.SnapshotLogTail = defaultSnapshotLogTail
	}
	if c.Game.MinPlayers == 0 {
		c.Game.MinPlayers = defaultMinPlayers
	}
	if c.Game.MaxPlayers == 0 {
		c.Game.MaxPlayers = defaultMaxPlayers
	}
	if c.Game.ShutdownTimeout == 0 {
		c.Game.ShutdownTimeout = defaultShutdownTimeout
	}
	if c.Game.ShutdownCheckInterval == 0 {
		c.Game.ShutdownCheckInterval = defaultShutdownCheckInterval
	}
	if c.Game.RoomCleanupDelay == 0 {
		c.Game.RoomCleanupDelay = defaultRoomCleanupDelay
	}

	if len(c.Security.AllowedOrigins) == 0 {
		c.Security.AllowedOrigins = []string{"*"}
	}
	if c.Security.RateLimit.MaxPerSecond == 0 {
		c.Security.RateLimit.MaxPerSecond = defaultRateMaxPerSecond
	}
	if c.Security.RateLimit.MaxPerMinute == 0 {
		c.Security.RateLimit.MaxPerMinute = defaultRateMaxPerMinute
	}
	if c.Security.RateLimit.BanDuration == 0 {
		c.Security.RateLimit.BanDuration = defaultRateBanDuration
	}
	if c.Security.RateLimit.IdleExpiry == 0 {
		c.Security.RateLimit.IdleExpiry = defaultRateIdleExpiry
	}
	if c.Security.MessageLimit.MaxPerSecond == 0 {
		c.Security.MessageLimit.MaxPerSecond = defaultMessageMaxPerSecond
	}
	if c.Security.MessageLimit.Burst == 0 {
		c.Security.MessageLimit.Burst = defaultMessageBurst
	}

	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = defaultLogFormat
	}
}

// RedisEnabled reports whether a redis address is configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

func setString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}

func setInt(v *viper.Viper, key string, dst *int) {
	if v.IsSet(key) {
		*dst = v.GetInt(key)
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

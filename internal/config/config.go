package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

type Config struct {
	ListenPort      string        `env:"PORTAL_LISTEN_PORT" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"PORTAL_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	RequestTimeout  time.Duration `env:"PORTAL_REQUEST_TIMEOUT" envDefault:"5s"`

	LogLevel  string `env:"PORTAL_LOG_LEVEL" envDefault:"info"`   // "debug" | "info" | "warn" | "error"
	PrettyLog bool   `env:"PORTAL_PRETTY_LOG" envDefault:"true"` // true => zap dev (color), false => zap prod (JSON)

	StoreFile  string `env:"PORTAL_STORE_FILE" envDefault:"money_config.json"` // the JSON document holding departments and links
	WatchStore bool   `env:"PORTAL_WATCH_STORE" envDefault:"true"`             // log external edits and corruption of StoreFile

	// Sessions
	SessionBackend string        `env:"PORTAL_SESSION_BACKEND" envDefault:"memory"` // "memory" | "redis"
	SessionIdleTTL time.Duration `env:"PORTAL_SESSION_IDLE_TTL" envDefault:"24h"`   // 0 => sessions never expire
	GCInterval     time.Duration `env:"PORTAL_GC_INTERVAL" envDefault:"1h"`         // idle session sweep interval (memory backend)
	MaxSessions    int           `env:"PORTAL_MAX_SESSIONS" envDefault:"10000"`     // memory backend cap, 0 => unbounded
	CookieSecure   bool          `env:"PORTAL_COOKIE_SECURE" envDefault:"false"`    // set Secure on the session cookie

	// Redis (only read when SessionBackend == "redis")
	RedisAddr             string        `env:"PORTAL_REDIS_ADDR"`
	RedisUser             string        `env:"PORTAL_REDIS_USERNAME" envDefault:"default"`
	RedisPassword         string        `env:"PORTAL_REDIS_PASSWORD"`
	RedisPasswordRequired bool          `env:"PORTAL_REDIS_PASSWORD_REQUIRED" envDefault:"false"`
	RedisDB               int           `env:"PORTAL_REDIS_DB" envDefault:"0"`
	RedisDT               time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	RedisRT               time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	RedisWT               time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
	RedisMaxWait          time.Duration `env:"REDIS_MAX_WAIT" envDefault:"10s"`
	RedisPingTimeout      time.Duration `env:"REDIS_PING_TIMEOUT" envDefault:"5s"`
	RedisPoolSize         int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	RedisConnectTimeout   time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
	RedisRetryInterval    time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`
	RedisWarnThreshold    int           `env:"REDIS_WARN_THRESHOLD" envDefault:"3"`

	// Access restrictions
	AllowedHosts []string `env:"PORTAL_ALLOWED_HOSTS" envSeparator:","` // optional, restrict access to specific Host headers
	AllowedCIDRS []string `env:"PORTAL_ALLOWED_CIDRS" envSeparator:","` // optional, restrict healthz/readyz to specific IPs
	TrustProxy   bool     `env:"PORTAL_TRUST_PROXY" envDefault:"false"` // true => trust X-Forwarded-For headers

	// Login throttling, disabled when LoginRateBurst is 0
	LoginRateBurst  int `env:"PORTAL_LOGIN_RATE_BURST" envDefault:"0"`
	LoginRatePerMin int `env:"PORTAL_LOGIN_RATE_PER_MIN" envDefault:"5"`

	// Page branding
	Title    string `env:"PORTAL_TITLE" envDefault:"📱 馬尼通訊：智慧運營入口"`
	Subtitle string `env:"PORTAL_SUBTITLE" envDefault:"Money Communications System Portal | 整合營運中心"`
	Footer   string `env:"PORTAL_FOOTER" envDefault:"© 2026 Money Communications System"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return parse(env.Options{})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.AllowedHosts = splitAndTrim(cfg.AllowedHosts)
	cfg.AllowedCIDRS = splitAndTrim(cfg.AllowedCIDRS)
	cfg.SessionBackend = strings.ToLower(strings.TrimSpace(cfg.SessionBackend))

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.StoreFile) == "" {
		return fmt.Errorf("PORTAL_STORE_FILE must not be empty")
	}
	if c.SessionIdleTTL < 0 {
		return fmt.Errorf("PORTAL_SESSION_IDLE_TTL must be >= 0, got %v", c.SessionIdleTTL)
	}
	if c.SessionIdleTTL > 0 && c.GCInterval <= 0 {
		return fmt.Errorf("PORTAL_GC_INTERVAL must be > 0 when sessions expire, got %v", c.GCInterval)
	}
	if c.MaxSessions < 0 {
		return fmt.Errorf("PORTAL_MAX_SESSIONS must be >= 0, got %d", c.MaxSessions)
	}
	if c.LoginRateBurst < 0 {
		return fmt.Errorf("PORTAL_LOGIN_RATE_BURST must be >= 0, got %d", c.LoginRateBurst)
	}

	switch c.SessionBackend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("PORTAL_REDIS_ADDR is required when PORTAL_SESSION_BACKEND=redis")
		}
		if c.RedisPasswordRequired && c.RedisPassword == "" {
			return fmt.Errorf("PORTAL_REDIS_PASSWORD is required when PORTAL_REDIS_PASSWORD_REQUIRED=true")
		}
	default:
		return fmt.Errorf("unknown PORTAL_SESSION_BACKEND %q (want %q or %q)",
			c.SessionBackend, SessionBackendMemory, SessionBackendRedis)
	}
	return nil
}

func splitAndTrim(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	parts := make([]string, 0, len(values))
	for _, part := range values {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return parts
}

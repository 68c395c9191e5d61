package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale" toml:"tailscale"`
	Auth      AuthConfig      `yaml:"auth" toml:"auth"`
	Storage   StorageConfig   `yaml:"storage" toml:"storage"`
	Calendar  CalendarConfig  `yaml:"calendar" toml:"calendar"`
	Events    EventsConfig    `yaml:"events" toml:"events"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

type ServerConfig struct {
	Host      string `yaml:"host" toml:"host"`
	Port      int    `yaml:"port" toml:"port"`
	StaticDir string `yaml:"static_dir" toml:"static_dir"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled" toml:"enabled"`
	Hostname string `yaml:"hostname" toml:"hostname"`
	StateDir string `yaml:"state_dir" toml:"state_dir"`
}

// Identity modes for AuthConfig.Mode.
const (
	AuthDev       = "dev"
	AuthTailscale = "tailscale"
	AuthJWT       = "jwt"
)

type AuthConfig struct {
	Mode    string    `yaml:"mode" toml:"mode"`
	DevUser string    `yaml:"dev_user" toml:"dev_user"`
	APIKey  string    `yaml:"api_key" toml:"api_key"`
	JWT     JWTConfig `yaml:"jwt" toml:"jwt"`
}

type JWTConfig struct {
	Secret   string `yaml:"secret" toml:"secret"`
	Issuer   string `yaml:"issuer" toml:"issuer"`
	Audience string `yaml:"audience" toml:"audience"`
}

// Storage backends for StorageConfig.Backend.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type StorageConfig struct {
	Backend  string         `yaml:"backend" toml:"backend"`
	CacheMB  int            `yaml:"cache_mb" toml:"cache_mb"`
	Fixtures string         `yaml:"fixtures" toml:"fixtures"`
	Postgres DatabaseConfig `yaml:"postgres" toml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite" toml:"sqlite"`
	Redis    RedisConfig    `yaml:"redis" toml:"redis"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" toml:"host"`
	Port     int    `yaml:"port" toml:"port"`
	Name     string `yaml:"name" toml:"name"`
	User     string `yaml:"user" toml:"user"`
	Password string `yaml:"password" toml:"password"`
	SSLMode  string `yaml:"sslmode" toml:"sslmode"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" toml:"path"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" toml:"addr"`
	Password string `yaml:"password" toml:"password"`
	DB       int    `yaml:"db" toml:"db"`
}

type CalendarConfig struct {
	// Timezone is an IANA zone name. Calendar days and month windows are
	// computed in this zone. Empty means UTC.
	Timezone string `yaml:"timezone" toml:"timezone"`
}

// Event backends for EventsConfig.Backend. Empty disables publishing.
const (
	EventsKafka = "kafka"
	EventsAMQP  = "amqp"
)

type EventsConfig struct {
	Backend string      `yaml:"backend" toml:"backend"`
	Kafka   KafkaConfig `yaml:"kafka" toml:"kafka"`
	AMQP    AMQPConfig  `yaml:"amqp" toml:"amqp"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers" toml:"brokers"`
	Topic   string   `yaml:"topic" toml:"topic"`
}

type AMQPConfig struct {
	URL        string `yaml:"url" toml:"url"`
	Exchange   string `yaml:"exchange" toml:"exchange"`
	RoutingKey string `yaml:"routing_key" toml:"routing_key"`
}

type LoggingConfig struct {
	Level      string `yaml:"level" toml:"level"`
	Format     string `yaml:"format" toml:"format"`
	File       string `yaml:"file" toml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" toml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" toml:"max_age_days"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Location resolves the configured timezone.
func (c CalendarConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func defaults() *Config {
	return &Config{
		Server:    ServerConfig{Host: "127.0.0.1", Port: 8080},
		Tailscale: TailscaleConfig{Hostname: "liftlog"},
		Auth:      AuthConfig{Mode: AuthDev, DevUser: "local"},
		Storage: StorageConfig{
			Backend: BackendSQLite,
			SQLite:  SQLiteConfig{Path: "liftlog.db"},
		},
		Events: EventsConfig{
			Kafka: KafkaConfig{Topic: "liftlog.sessions"},
			AMQP:  AMQPConfig{Exchange: "liftlog", RoutingKey: "session.sealed"},
		},
		Logging: LoggingConfig{Level: "info", Format: "text", MaxSizeMB: 50, MaxBackups: 3, MaxAgeDays: 28},
	}
}

// Load reads config from a YAML file (or TOML when the path ends in .toml)
// on top of the built-in defaults, then applies environment variable
// overrides. Env vars use the prefix LIFTLOG_ and underscore-separated paths:
//
//	LIFTLOG_SERVER_HOST, LIFTLOG_SERVER_PORT, LIFTLOG_SERVER_STATIC_DIR,
//	LIFTLOG_TAILSCALE_ENABLED, LIFTLOG_TAILSCALE_HOSTNAME,
//	LIFTLOG_AUTH_MODE, LIFTLOG_AUTH_API_KEY, LIFTLOG_JWT_SECRET,
//	LIFTLOG_STORAGE_BACKEND, LIFTLOG_SQLITE_PATH,
//	LIFTLOG_DB_HOST, LIFTLOG_DB_PORT, LIFTLOG_DB_NAME,
//	LIFTLOG_DB_USER, LIFTLOG_DB_PASSWORD, LIFTLOG_DB_SSLMODE,
//	LIFTLOG_REDIS_ADDR, LIFTLOG_REDIS_PASSWORD,
//	LIFTLOG_CALENDAR_TIMEZONE,
//	LIFTLOG_EVENTS_BACKEND, LIFTLOG_KAFKA_BROKERS, LIFTLOG_AMQP_URL,
//	LIFTLOG_LOG_LEVEL, LIFTLOG_LOG_FILE
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString("LIFTLOG_SERVER_HOST", &cfg.Server.Host)
	setInt("LIFTLOG_SERVER_PORT", &cfg.Server.Port)
	setString("LIFTLOG_SERVER_STATIC_DIR", &cfg.Server.StaticDir)

	if v := os.Getenv("LIFTLOG_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	setString("LIFTLOG_TAILSCALE_HOSTNAME", &cfg.Tailscale.Hostname)

	setString("LIFTLOG_AUTH_MODE", &cfg.Auth.Mode)
	setString("LIFTLOG_AUTH_API_KEY", &cfg.Auth.APIKey)
	setString("LIFTLOG_JWT_SECRET", &cfg.Auth.JWT.Secret)

	setString("LIFTLOG_STORAGE_BACKEND", &cfg.Storage.Backend)
	setString("LIFTLOG_SQLITE_PATH", &cfg.Storage.SQLite.Path)
	setString("LIFTLOG_DB_HOST", &cfg.Storage.Postgres.Host)
	setInt("LIFTLOG_DB_PORT", &cfg.Storage.Postgres.Port)
	setString("LIFTLOG_DB_NAME", &cfg.Storage.Postgres.Name)
	setString("LIFTLOG_DB_USER", &cfg.Storage.Postgres.User)
	setString("LIFTLOG_DB_PASSWORD", &cfg.Storage.Postgres.Password)
	setString("LIFTLOG_DB_SSLMODE", &cfg.Storage.Postgres.SSLMode)
	setString("LIFTLOG_REDIS_ADDR", &cfg.Storage.Redis.Addr)
	setString("LIFTLOG_REDIS_PASSWORD", &cfg.Storage.Redis.Password)

	setString("LIFTLOG_CALENDAR_TIMEZONE", &cfg.Calendar.Timezone)

	setString("LIFTLOG_EVENTS_BACKEND", &cfg.Events.Backend)
	if v := os.Getenv("LIFTLOG_KAFKA_BROKERS"); v != "" {
		cfg.Events.Kafka.Brokers = strings.Split(v, ",")
	}
	setString("LIFTLOG_AMQP_URL", &cfg.Events.AMQP.URL)

	setString("LIFTLOG_LOG_LEVEL", &cfg.Logging.Level)
	setString("LIFTLOG_LOG_FILE", &cfg.Logging.File)
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}

	switch c.Auth.Mode {
	case AuthDev:
		if c.Auth.DevUser == "" {
			return fmt.Errorf("auth.dev_user is required in dev mode")
		}
	case AuthTailscale:
		if !c.Tailscale.Enabled {
			return fmt.Errorf("auth.mode tailscale requires tailscale.enabled")
		}
	case AuthJWT:
		if c.Auth.JWT.Secret == "" {
			return fmt.Errorf("auth.jwt.secret is required in jwt mode")
		}
	default:
		return fmt.Errorf("auth.mode %q is not one of dev, tailscale, jwt", c.Auth.Mode)
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Storage.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path is required")
		}
	case BackendPostgres:
		db := c.Storage.Postgres
		if db.Host == "" {
			return fmt.Errorf("storage.postgres.host is required")
		}
		if db.Port == 0 {
			return fmt.Errorf("storage.postgres.port is required")
		}
		if db.Name == "" {
			return fmt.Errorf("storage.postgres.name is required")
		}
		if db.User == "" {
			return fmt.Errorf("storage.postgres.user is required")
		}
	case BackendRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("storage.redis.addr is required")
		}
	default:
		return fmt.Errorf("storage.backend %q is not one of memory, sqlite, postgres, redis", c.Storage.Backend)
	}
	if c.Storage.CacheMB < 0 {
		return fmt.Errorf("storage.cache_mb must not be negative")
	}

	if _, err := c.Calendar.Location(); err != nil {
		return err
	}

	switch c.Events.Backend {
	case "":
	case EventsKafka:
		if len(c.Events.Kafka.Brokers) == 0 || c.Events.Kafka.Topic == "" {
			return fmt.Errorf("events.kafka.brokers and events.kafka.topic are required")
		}
	case EventsAMQP:
		if c.Events.AMQP.URL == "" || c.Events.AMQP.Exchange == "" {
			return fmt.Errorf("events.amqp.url and events.amqp.exchange are required")
		}
	default:
		return fmt.Errorf("events.backend %q is not one of kafka, amqp", c.Events.Backend)
	}
	return nil
}

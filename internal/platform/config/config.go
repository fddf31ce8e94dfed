// Package config loads service configuration from an optional YAML file and
// CIS_* environment variables. Environment variables win over the file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Lock backends accepted by Allocation.LockBackend.
const (
	LockBackendMemory = "memory"
	LockBackendRedis  = "redis"
)

// Config is the complete service configuration.
type Config struct {
	Server     Server     `yaml:"server"`
	Database   Database   `yaml:"database"`
	Redis      Redis      `yaml:"redis"`
	Kafka      Kafka      `yaml:"kafka"`
	Auth       Auth       `yaml:"auth"`
	Allocation Allocation `yaml:"allocation"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `yaml:"addr"`
	LogLevel        string        `yaml:"log_level"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Database selects the store backend. An empty DSN keeps everything in memory.
type Database struct {
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	Migrate      bool   `yaml:"migrate"`
}

// Redis configures the client used by the distributed lock.
type Redis struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Kafka configures the audit event sink. No brokers means audit events are
// kept in memory.
type Kafka struct {
	Brokers           []string `yaml:"brokers"`
	AuditTopic        string   `yaml:"audit_topic"`
	Partitions        int32    `yaml:"partitions"`
	ReplicationFactor int16    `yaml:"replication_factor"`
}

// Auth enables bearer token authentication when SigningKey is set. The
// pregeneration endpoints are only mounted when AdminToken is set.
type Auth struct {
	SigningKey string `yaml:"signing_key"`
	Issuer     string `yaml:"issuer"`
	AdminToken string `yaml:"admin_token"`
}

// Allocation tunes the identifier engine.
type Allocation struct {
	MaxAttempts int           `yaml:"max_attempts"`
	LockBackend string        `yaml:"lock_backend"`
	LockTTL     time.Duration `yaml:"lock_ttl"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			LogLevel:        "info",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: Database{
			MaxOpenConns: 20,
			Migrate:      true,
		},
		Redis: Redis{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: Kafka{
			AuditTopic:        "cis.audit",
			Partitions:        3,
			ReplicationFactor: 1,
		},
		Allocation: Allocation{
			MaxAttempts: 100,
			LockBackend: LockBackendMemory,
			LockTTL:     30 * time.Second,
		},
	}
}

// FromEnv builds the configuration: defaults, then the YAML file named by
// CIS_CONFIG_FILE if set, then CIS_* environment variables.
func FromEnv() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Default()
	if path := getenv("CIS_CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	env := envReader{getenv: getenv}
	env.str("CIS_ADDR", &cfg.Server.Addr)
	env.str("CIS_LOG_LEVEL", &cfg.Server.LogLevel)
	env.duration("CIS_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	env.str("CIS_DATABASE_DSN", &cfg.Database.DSN)
	env.integer("CIS_DATABASE_MAX_OPEN_CONNS", &cfg.Database.MaxOpenConns)
	env.boolean("CIS_DATABASE_MIGRATE", &cfg.Database.Migrate)

	env.str("CIS_REDIS_URL", &cfg.Redis.URL)
	env.integer("CIS_REDIS_POOL_SIZE", &cfg.Redis.PoolSize)

	if v := getenv("CIS_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitCSV(v)
	}
	env.str("CIS_KAFKA_AUDIT_TOPIC", &cfg.Kafka.AuditTopic)

	env.str("CIS_JWT_SIGNING_KEY", &cfg.Auth.SigningKey)
	env.str("CIS_JWT_ISSUER", &cfg.Auth.Issuer)
	env.str("CIS_ADMIN_TOKEN", &cfg.Auth.AdminToken)

	env.integer("CIS_MAX_ATTEMPTS", &cfg.Allocation.MaxAttempts)
	env.str("CIS_LOCK_BACKEND", &cfg.Allocation.LockBackend)
	env.duration("CIS_LOCK_TTL", &cfg.Allocation.LockTTL)

	if env.err != nil {
		return Config{}, env.err
	}
	return cfg, cfg.Validate()
}

// Validate rejects combinations the server cannot start with.
func (c Config) Validate() error {
	switch c.Allocation.LockBackend {
	case LockBackendMemory:
	case LockBackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("lock backend %q requires CIS_REDIS_URL", LockBackendRedis)
		}
	default:
		return fmt.Errorf("unknown lock backend %q", c.Allocation.LockBackend)
	}
	if c.Allocation.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts must be positive, got %d", c.Allocation.MaxAttempts)
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.AuditTopic == "" {
		return fmt.Errorf("kafka brokers configured without an audit topic")
	}
	return nil
}

// envReader applies non-empty variables and keeps the first parse error.
type envReader struct {
	getenv func(string) string
	err    error
}

func (e *envReader) str(key string, dst *string) {
	if v := e.getenv(key); v != "" {
		*dst = v
	}
}

func (e *envReader) integer(key string, dst *int) {
	v := e.getenv(key)
	if v == "" || e.err != nil {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.err = fmt.Errorf("%s: %w", key, err)
		return
	}
	*dst = n
}

func (e *envReader) boolean(key string, dst *bool) {
	v := e.getenv(key)
	if v == "" || e.err != nil {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.err = fmt.Errorf("%s: %w", key, err)
		return
	}
	*dst = b
}

func (e *envReader) duration(key string, dst *time.Duration) {
	v := e.getenv(key)
	if v == "" || e.err != nil {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.err = fmt.Errorf("%s: %w", key, err)
		return
	}
	*dst = d
}

func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

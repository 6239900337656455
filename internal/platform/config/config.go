// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"supaboard/pkg/platform/middleware/metadata"
	strutil "supaboard/pkg/platform/strings"
)

// ErrMissingBackend is returned when the backend URL or anon key is unset.
var ErrMissingBackend = errors.New("NO ENV VARIABLES: PUBLIC_SUPABASE_URL and PUBLIC_SUPABASE_ANON_KEY are required")

// Board store kinds.
const (
	BoardStorePostgREST = "postgrest"
	BoardStorePostgres  = "postgres"
	BoardStoreMemory    = "memory"
)

// Config is the full process configuration.
type Config struct {
	Server    Server
	Supabase  SupabaseConfig
	Auth      AuthConfig
	Cookie    CookieConfig
	Redis     RedisConfig
	Postgres  PostgresConfig
	Kafka     KafkaConfig
	Board     BoardConfig
	RateLimit RateLimitConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr              string        `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout    time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"90s"`
	// TrustedProxies are CIDRs or addresses whose forwarding headers are
	// believed. Empty means the peer address is the client.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

// SupabaseConfig points at the hosted auth and table APIs.
type SupabaseConfig struct {
	URL       string        `env:"PUBLIC_SUPABASE_URL"`
	AnonKey   string        `env:"PUBLIC_SUPABASE_ANON_KEY"`
	FlowType  string        `env:"SUPABASE_FLOW_TYPE" envDefault:"pkce"`
	JWTSecret string        `env:"SUPABASE_JWT_SECRET"`
	Timeout   time.Duration `env:"SUPABASE_TIMEOUT" envDefault:"10s"`
	Schema    string        `env:"SUPABASE_SCHEMA" envDefault:"public"`
}

// AuthConfig holds the redirect targets used by the auth actions.
type AuthConfig struct {
	EmailRedirectTo  string        `env:"AUTH_EMAIL_REDIRECT_TO"`
	SignInRedirectTo string        `env:"AUTH_SIGN_IN_REDIRECT_TO" envDefault:"/"`
	SignInPath       string        `env:"AUTH_SIGN_IN_PATH" envDefault:"/auth/sign-in"`
	PKCEFlowTTL      time.Duration `env:"AUTH_PKCE_FLOW_TTL" envDefault:"10m"`
	EmailFlowTTL     time.Duration `env:"AUTH_EMAIL_FLOW_TTL" envDefault:"24h"`
}

// CookieConfig overrides the session cookie attributes that vary per deployment.
type CookieConfig struct {
	Secure bool   `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	Domain string `env:"SESSION_COOKIE_DOMAIN"`
}

// RedisConfig configures the optional Redis PKCE verifier store.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// PostgresConfig configures the direct Postgres task store.
type PostgresConfig struct {
	URL      string `env:"DATABASE_URL"`
	MaxConns int32  `env:"DATABASE_MAX_CONNS" envDefault:"10"`
}

// KafkaConfig configures the audit event publisher. Empty brokers disables it.
type KafkaConfig struct {
	Brokers           []string `env:"KAFKA_BROKERS" envSeparator:","`
	AuditTopic        string   `env:"AUDIT_TOPIC" envDefault:"auth.audit"`
	Partitions        int32    `env:"AUDIT_TOPIC_PARTITIONS" envDefault:"1"`
	ReplicationFactor int16    `env:"AUDIT_TOPIC_REPLICATION" envDefault:"1"`
	// DeliveryTimeout and ProduceRetries cap how long one audit record may be retried.
	DeliveryTimeout time.Duration `env:"KAFKA_DELIVERY_TIMEOUT" envDefault:"10s"`
	ProduceRetries  int           `env:"KAFKA_PRODUCE_RETRIES" envDefault:"3"`
	// DrainTimeout bounds how long shutdown waits for buffered audit events.
	DrainTimeout time.Duration `env:"AUDIT_DRAIN_TIMEOUT" envDefault:"5s"`
}

// BoardConfig selects the task store.
type BoardConfig struct {
	Store string `env:"BOARD_STORE" envDefault:"postgrest"`
}

// RateLimitConfig throttles auth actions and task mutations per client IP.
type RateLimitConfig struct {
	Enabled       bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	AuthRequests  int           `env:"RATE_LIMIT_AUTH_REQUESTS" envDefault:"10"`
	AuthWindow    time.Duration `env:"RATE_LIMIT_AUTH_WINDOW" envDefault:"1m"`
	WriteRequests int           `env:"RATE_LIMIT_WRITE_REQUESTS" envDefault:"60"`
	WriteWindow   time.Duration `env:"RATE_LIMIT_WRITE_WINDOW" envDefault:"1m"`
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Kafka.Brokers = strutil.DedupeAndTrim(cfg.Kafka.Brokers)
	cfg.Server.TrustedProxies = strutil.DedupeAndTrim(cfg.Server.TrustedProxies)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c Config) Validate() error {
	if c.Supabase.URL == "" || c.Supabase.AnonKey == "" {
		return ErrMissingBackend
	}
	u, err := url.Parse(c.Supabase.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid PUBLIC_SUPABASE_URL %q", c.Supabase.URL)
	}
	switch c.Supabase.FlowType {
	case "pkce", "implicit":
	default:
		return fmt.Errorf("invalid SUPABASE_FLOW_TYPE %q: want pkce or implicit", c.Supabase.FlowType)
	}
	switch strings.ToLower(c.Board.Store) {
	case BoardStorePostgREST, BoardStoreMemory:
	case BoardStorePostgres:
		if c.Postgres.URL == "" {
			return errors.New("BOARD_STORE=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("invalid BOARD_STORE %q", c.Board.Store)
	}
	if c.Auth.PKCEFlowTTL <= 0 || c.Auth.EmailFlowTTL < c.Auth.PKCEFlowTTL {
		return errors.New("AUTH_PKCE_FLOW_TTL must be positive and AUTH_EMAIL_FLOW_TTL no shorter")
	}
	if len(c.Kafka.Brokers) > 0 && (c.Kafka.DeliveryTimeout <= 0 || c.Kafka.ProduceRetries < 0) {
		return errors.New("KAFKA_DELIVERY_TIMEOUT must be positive and KAFKA_PRODUCE_RETRIES not negative")
	}
	if _, err := metadata.ParseTrustedProxies(c.Server.TrustedProxies); err != nil {
		return fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.AuthRequests <= 0 || c.RateLimit.AuthWindow <= 0 {
			return errors.New("RATE_LIMIT_AUTH_REQUESTS and RATE_LIMIT_AUTH_WINDOW must be positive")
		}
		if c.RateLimit.WriteRequests <= 0 || c.RateLimit.WriteWindow <= 0 {
			return errors.New("RATE_LIMIT_WRITE_REQUESTS and RATE_LIMIT_WRITE_WINDOW must be positive")
		}
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const devSigningKey = "dev-secret-key-change-in-production"

// Config is the complete service configuration, read from the environment.
type Config struct {
	Env          string `env:"VOTEGATE_ENV" envDefault:"dev"`
	Server       Server
	Log          Log
	Auth         Auth
	OTP          OTP
	Face         Face
	Registration Registration
	Ballot       Ballot
	Postgres     Postgres
	Redis        RedisConfig
	Mongo        Mongo
	Kafka        Kafka
	SMTP         SMTP
	SMS          SMS
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"VOTEGATE_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AdminToken      string        `env:"ADMIN_TOKEN"`
	// AllowedOrigins are host patterns accepted on cross-origin websocket handshakes.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type Auth struct {
	JWTSigningKey   string        `env:"JWT_SIGNING_KEY"`
	Issuer          string        `env:"JWT_ISSUER" envDefault:"votegate"`
	LimitedTokenTTL time.Duration `env:"LIMITED_TOKEN_TTL" envDefault:"5m"`
	FullTokenTTL    time.Duration `env:"FULL_TOKEN_TTL" envDefault:"24h"`
	PasswordScheme  string        `env:"PASSWORD_SCHEME" envDefault:"bcrypt"`
}

type OTP struct {
	Length      int           `env:"OTP_LENGTH" envDefault:"6"`
	TTL         time.Duration `env:"OTP_TTL" envDefault:"10m"`
	MaxAttempts int           `env:"OTP_MAX_ATTEMPTS" envDefault:"5"`
	ProofTTL    time.Duration `env:"OTP_PROOF_TTL" envDefault:"30m"`
	SendLimit   int           `env:"OTP_SEND_LIMIT" envDefault:"5"`
	SendWindow  time.Duration `env:"OTP_SEND_WINDOW" envDefault:"15m"`
	SweepEvery  time.Duration `env:"OTP_SWEEP_INTERVAL" envDefault:"1m"`
}

type Face struct {
	MatchThreshold float64       `env:"FACE_MATCH_THRESHOLD" envDefault:"0.65"`
	MatcherURL     string        `env:"FACE_MATCHER_URL"`
	MatcherTimeout time.Duration `env:"FACE_MATCHER_TIMEOUT" envDefault:"5s"`
}

type Registration struct {
	MinimumAge int `env:"MINIMUM_AGE" envDefault:"18"`
}

type Ballot struct {
	IPHashSalt string `env:"IP_HASH_SALT"`
}

type Postgres struct {
	URL    string `env:"DATABASE_URL"`
	Driver string `env:"DATABASE_DRIVER" envDefault:"pgx"`
}

// RedisConfig holds the Redis connection settings. An empty URL disables Redis.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"20"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

type Mongo struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DATABASE" envDefault:"votegate"`
}

type Kafka struct {
	Brokers    []string `env:"KAFKA_BROKERS" envSeparator:","`
	AuditTopic string   `env:"KAFKA_AUDIT_TOPIC" envDefault:"votegate.audit"`
}

type SMTP struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM" envDefault:"no-reply@votegate.local"`
}

type SMS struct {
	WebhookURL string        `env:"SMS_WEBHOOK_URL"`
	Timeout    time.Duration `env:"SMS_TIMEOUT" envDefault:"5s"`
}

// IsDev reports whether the service runs in development mode.
func (c *Config) IsDev() bool {
	return strings.EqualFold(c.Env, "dev") || strings.EqualFold(c.Env, "development")
}

// Load reads optional dotenv files, then parses the environment.
// Missing dotenv files are ignored; values already in the environment win.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if f == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fills development defaults and rejects unusable settings.
func (c *Config) Validate() error {
	if c.Auth.JWTSigningKey == "" {
		if !c.IsDev() {
			return errors.New("JWT_SIGNING_KEY is required outside dev")
		}
		c.Auth.JWTSigningKey = devSigningKey
	}
	if c.Auth.LimitedTokenTTL <= 0 || c.Auth.FullTokenTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if c.Auth.LimitedTokenTTL >= c.Auth.FullTokenTTL {
		return errors.New("LIMITED_TOKEN_TTL must be shorter than FULL_TOKEN_TTL")
	}
	if c.OTP.Length < 4 || c.OTP.Length > 10 {
		return errors.New("OTP_LENGTH must be between 4 and 10")
	}
	if c.OTP.TTL <= 0 || c.OTP.MaxAttempts <= 0 {
		return errors.New("OTP_TTL and OTP_MAX_ATTEMPTS must be positive")
	}
	if c.Face.MatchThreshold <= 0 || c.Face.MatchThreshold >= 1 {
		return errors.New("FACE_MATCH_THRESHOLD must be within (0, 1)")
	}
	if c.Registration.MinimumAge <= 0 {
		return errors.New("MINIMUM_AGE must be positive")
	}
	switch c.Postgres.Driver {
	case "pgx", "postgres":
	default:
		return fmt.Errorf("DATABASE_DRIVER must be pgx or postgres, got %q", c.Postgres.Driver)
	}
	return nil
}

// Warnings lists settings that are allowed but outside their recommended range.
func (c *Config) Warnings() []string {
	var out []string
	if c.Face.MatchThreshold < 0.6 || c.Face.MatchThreshold > 0.7 {
		out = append(out, fmt.Sprintf("FACE_MATCH_THRESHOLD %.2f is outside the recommended 0.60-0.70 band", c.Face.MatchThreshold))
	}
	if c.Server.AdminToken == "" {
		out = append(out, "ADMIN_TOKEN is empty; admin routes and admin realtime connections are disabled")
	}
	if c.Face.MatcherURL == "" {
		out = append(out, "FACE_MATCHER_URL is empty; using the built-in deterministic matcher")
	}
	if c.Ballot.IPHashSalt == "" {
		out = append(out, "IP_HASH_SALT is empty; vote IP hashes use an unkeyed digest")
	}
	return out
}

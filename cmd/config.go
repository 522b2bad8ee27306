package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"orderflow/internal/adapters/out/postgres"
)

type Config struct {
	HTTPPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	JWTSecret string

	PushEndpoint       string
	PushAccessToken    string
	PushTimeout        time.Duration
	PushMaxRetries     uint64
	PushInitialBackoff time.Duration

	SubscriberSendTimeout time.Duration
	SubscriberBuffer      int
	TopicIdleTTL          time.Duration

	// RabbitMQURL is optional; integration events are dropped when empty.
	RabbitMQURL      string
	RabbitMQExchange string
}

// LoadConfig reads the configuration from the environment. lookup is
// os.LookupEnv outside of tests.
func LoadConfig(lookup func(string) (string, bool)) (Config, error) {
	r := envReader{lookup: lookup}

	cfg := Config{
		HTTPPort:   r.str("HTTP_PORT", "8080"),
		DBHost:     r.str("DB_HOST", "localhost"),
		DBPort:     r.str("DB_PORT", "5432"),
		DBUser:     r.str("DB_USER", ""),
		DBPassword: r.str("DB_PASSWORD", ""),
		DBName:     r.str("DB_NAME", ""),
		DBSslMode:  r.str("DB_SSLMODE", "disable"),

		JWTSecret: r.str("JWT_SECRET", ""),

		PushEndpoint:       r.str("PUSH_ENDPOINT", ""),
		PushAccessToken:    r.str("PUSH_ACCESS_TOKEN", ""),
		PushTimeout:        r.dur("PUSH_TIMEOUT", 10*time.Second),
		PushMaxRetries:     r.count("PUSH_MAX_RETRIES", 3),
		PushInitialBackoff: r.dur("PUSH_INITIAL_BACKOFF", time.Second),

		SubscriberSendTimeout: r.dur("SUBSCRIBER_SEND_TIMEOUT", 2*time.Second),
		SubscriberBuffer:      r.integer("SUBSCRIBER_BUFFER", 32),
		TopicIdleTTL:          r.dur("TOPIC_IDLE_TTL", 10*time.Minute),

		RabbitMQURL:      r.str("RABBITMQ_URL", ""),
		RabbitMQExchange: r.str("RABBITMQ_EXCHANGE", "orderflow.events"),
	}

	if r.err != nil {
		return Config{}, r.err
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if cfg.DBUser == "" || cfg.DBName == "" {
		return Config{}, errors.New("DB_USER and DB_NAME are required")
	}

	return cfg, nil
}

// EnvLookup is the production lookup for LoadConfig.
func EnvLookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

func (c Config) Database() postgres.Config {
	return postgres.Config{
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Name:     c.DBName,
		SSLMode:  c.DBSslMode,
	}
}

// envReader keeps the first parse error so LoadConfig can report it once.
type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *envReader) str(key, def string) string {
	if v, ok := r.lookup(key); ok && v != "" {
		return v
	}
	return def
}

func (r *envReader) dur(key string, def time.Duration) time.Duration {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		r.fail(key, v)
		return def
	}
	return d
}

func (r *envReader) integer(key string, def int) int {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		r.fail(key, v)
		return def
	}
	return n
}

func (r *envReader) count(key string, def uint64) uint64 {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		r.fail(key, v)
		return def
	}
	return n
}

func (r *envReader) fail(key, value string) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid value %q for %s", value, key)
	}
}

package app

import (
	"strings"
	"time"

	"github.com/charlesng35/chattu/internal/database"
	"github.com/charlesng35/chattu/internal/events"
	"github.com/charlesng35/chattu/internal/realtime"
	"github.com/charlesng35/chattu/internal/store"
)

const defaultHandshakeTimeout = 10 * time.Second

// HubOptions converts realtime and persistence settings into hub options.
// Sinks and the logger are attached by the caller.
func (c *Config) HubOptions() realtime.Options {
	return realtime.Options{
		Conn: realtime.ConnOptions{
			SendBuffer:     c.Realtime.SendBuffer,
			WriteWait:      c.Realtime.WriteWait,
			PongWait:       c.Realtime.PongWait,
			MaxMessageSize: c.Realtime.MaxMessageSize,
		},
		AllowedOrigins: append([]string(nil), c.Server.AllowedOrigins...),
		PersistTimeout: c.Persistence.Timeout,
	}
}

// Handshake returns the bound on authenticating a websocket upgrade.
func (c RealtimeConfig) Handshake() time.Duration {
	if c.HandshakeTimeout <= 0 {
		return defaultHandshakeTimeout
	}
	return c.HandshakeTimeout
}

// DatabaseOptions converts DatabaseConfig into database.Config.
func (c DatabaseConfig) DatabaseOptions() database.Config {
	driver := strings.ToLower(strings.TrimSpace(c.Driver))
	cfg := database.Config{
		Driver: driver,
		Path:   c.Path,
		DSN:    c.DSN,
	}

	var creds DBAuthConfig
	switch driver {
	case "postgres", "postgresql":
		creds = c.Postgres
	case "mysql":
		creds = c.MySQL
	default:
		return cfg
	}
	cfg.Host = creds.Host
	cfg.Port = creds.Port
	cfg.Name = creds.Database
	cfg.User = creds.Username
	cfg.Password = creds.Password
	return cfg
}

// BackendName returns the normalised persistence backend.
func (c PersistenceConfig) BackendName() string {
	backend := strings.ToLower(strings.TrimSpace(c.Backend))
	if backend == "" {
		return "sql"
	}
	return backend
}

// MongoConfig converts the mongo settings into store.MongoConfig.
func (c PersistenceConfig) MongoConfig() store.MongoConfig {
	return store.MongoConfig{
		URI:        strings.TrimSpace(c.Mongo.URI),
		Database:   c.Mongo.Database,
		Collection: c.Mongo.Collection,
		Timeout:    c.Timeout,
	}
}

// Retention returns how long messages are kept, or zero to keep them forever.
func (c PersistenceConfig) Retention() time.Duration {
	if c.RetentionDays <= 0 {
		return 0
	}
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// KafkaConfig converts the producer settings into events.KafkaConfig.
func (c EventsConfig) KafkaConfig() events.KafkaConfig {
	return events.KafkaConfig{
		Brokers: append([]string(nil), c.Kafka.Brokers...),
		Topic:   strings.TrimSpace(c.Kafka.Topic),
	}
}

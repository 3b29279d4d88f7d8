package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/chattu/internal/auth"
	"github.com/charlesng35/chattu/internal/cache"
	"github.com/charlesng35/chattu/internal/database"
	"github.com/charlesng35/chattu/internal/events"
	"github.com/charlesng35/chattu/internal/store"
)

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("testdata"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, []string{"https://chat.example.com", "http://localhost:4173"}, cfg.Server.AllowedOrigins)
	require.Equal(t, 50, cfg.Server.RateLimit.Requests)
	require.Equal(t, 30*time.Second, cfg.Server.RateLimit.Window)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 5433, cfg.Database.Postgres.Port)

	require.True(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, 2*time.Second, cfg.Cache.Redis.Timeout)
	require.Equal(t, 2*time.Minute, cfg.Cache.IdentityTTL)

	require.Equal(t, "jwt-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, 24*time.Hour, cfg.Auth.JWT.TTL)
	require.Equal(t, "ChatRoom_Token", cfg.Auth.Cookie())

	require.Equal(t, 5*time.Second, cfg.Realtime.Handshake())
	require.Equal(t, 128, cfg.Realtime.SendBuffer)
	require.Equal(t, 10*time.Second, cfg.Realtime.WriteWait)
	require.Equal(t, 30*time.Second, cfg.Realtime.PongWait)
	require.EqualValues(t, 1<<20, cfg.Realtime.MaxMessageSize)

	require.Equal(t, "mongo", cfg.Persistence.BackendName())
	require.Equal(t, 30*24*time.Hour, cfg.Persistence.Retention())

	require.True(t, cfg.Events.Kafka.Enabled)
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Events.Kafka.Brokers)

	require.Equal(t, "@every 30s", cfg.Maintenance.PresenceSchedule)
	require.Equal(t, "@daily", cfg.Maintenance.RetentionSchedule)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 3001, cfg.Server.Port)
	require.Equal(t, []string{"http://localhost:3005", "http://localhost:4173"}, cfg.Server.AllowedOrigins)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "sql", cfg.Persistence.BackendName())
	require.Equal(t, 5*time.Second, cfg.Persistence.Timeout)
	require.Zero(t, cfg.Persistence.Retention())
	require.Equal(t, 64, cfg.Realtime.SendBuffer)
	require.Equal(t, 5*time.Minute, cfg.Cache.IdentityTTL)
	require.Equal(t, "@every 1m", cfg.Maintenance.PresenceSchedule)

	require.EqualError(t, cfg.Validate(), "config: auth.jwt.secret is required")
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("CHATTU_AUTH_JWT_SECRET", "from-env")
	t.Setenv("CHATTU_SERVER_PORT", "4000")
	t.Setenv("CHATTU_REALTIME_PONG_WAIT", "45s")
	t.Setenv("CHATTU_EVENTS_KAFKA_BROKERS", "a:9092,b:9092")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, "from-env", cfg.Auth.JWT.Secret)
	require.Equal(t, 4000, cfg.Server.Port)
	require.Equal(t, 45*time.Second, cfg.Realtime.PongWait)
	require.Equal(t, []string{"a:9092", "b:9092"}, cfg.Events.Kafka.Brokers)
}

func TestConfigValidate(t *testing.T) {
	base := func() Config {
		return Config{Auth: AuthConfig{JWT: JWTSettings{Secret: "s"}}}
	}

	cfg := base()
	require.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Persistence.Backend = "cassandra"
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Persistence.Backend = "mongo"
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Events.Kafka.Enabled = true
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Persistence.RetentionDays = -1
	require.Error(t, cfg.Validate())
}

func TestAuthConfigAdapters(t *testing.T) {
	cfg := AuthConfig{
		JWT: JWTSettings{
			Secret: "secret",
			Issuer: "issuer",
			TTL:    30 * time.Minute,
		},
		CookieName: " token ",
	}

	require.Equal(t, auth.JWTConfig{
		Secret:         "secret",
		Issuer:         "issuer",
		AccessTokenTTL: 30 * time.Minute,
	}, cfg.JWTServiceConfig())
	require.Equal(t, "token", cfg.Cookie())

	var empty AuthConfig
	require.Equal(t, auth.DefaultAccessTokenTTL, empty.JWTServiceConfig().AccessTokenTTL)
	require.Equal(t, "ChatRoom_Token", empty.Cookie())
}

func TestPackageConfigAdapters(t *testing.T) {
	cfg := Config{
		Server: ServerConfig{AllowedOrigins: []string{"http://a"}},
		Database: DatabaseConfig{
			Driver: "MySQL",
			MySQL:  DBAuthConfig{Host: "db", Port: 3307, Database: "chat", Username: "u", Password: "p"},
		},
		Cache: CacheConfig{Redis: RedisCacheConfig{Address: " cache:6379 ", DB: 1, Timeout: time.Second}},
		Realtime: RealtimeConfig{
			SendBuffer: 8,
			WriteWait:  time.Second,
		},
		Persistence: PersistenceConfig{
			Timeout: 2 * time.Second,
			Mongo:   MongoSettings{URI: " mongodb://m ", Database: "chat", Collection: "messages"},
		},
		Events: EventsConfig{Kafka: KafkaSettings{Brokers: []string{"k:9092"}, Topic: " topic "}},
	}

	require.Equal(t, database.Config{
		Driver: "mysql", Host: "db", Port: 3307, Name: "chat", User: "u", Password: "p",
	}, cfg.Database.DatabaseOptions())

	require.Equal(t, cache.RedisConfig{Address: "cache:6379", DB: 1, Timeout: time.Second}, cfg.Cache.RedisClientConfig())
	require.Zero(t, cfg.Cache.IdentityCacheTTL())
	cfg.Cache.Redis.Enabled = true
	require.Equal(t, auth.DefaultIdentityCacheTTL, cfg.Cache.IdentityCacheTTL())

	opts := cfg.HubOptions()
	require.Equal(t, 8, opts.Conn.SendBuffer)
	require.Equal(t, time.Second, opts.Conn.WriteWait)
	require.Equal(t, []string{"http://a"}, opts.AllowedOrigins)
	require.Equal(t, 2*time.Second, opts.PersistTimeout)

	require.Equal(t, store.MongoConfig{
		URI: "mongodb://m", Database: "chat", Collection: "messages", Timeout: 2 * time.Second,
	}, cfg.Persistence.MongoConfig())

	require.Equal(t, events.KafkaConfig{Brokers: []string{"k:9092"}, Topic: "topic"}, cfg.Events.KafkaConfig())
}

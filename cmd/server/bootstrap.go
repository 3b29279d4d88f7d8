package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/chattu/internal/api"
	"github.com/charlesng35/chattu/internal/app"
	"github.com/charlesng35/chattu/internal/app/maintenance"
	iauth "github.com/charlesng35/chattu/internal/auth"
	"github.com/charlesng35/chattu/internal/cache"
	"github.com/charlesng35/chattu/internal/database"
	"github.com/charlesng35/chattu/internal/events"
	"github.com/charlesng35/chattu/internal/middleware"
	"github.com/charlesng35/chattu/internal/monitoring"
	"github.com/charlesng35/chattu/internal/monitoring/checks"
	"github.com/charlesng35/chattu/internal/realtime"
	"github.com/charlesng35/chattu/internal/store"
	"github.com/charlesng35/chattu/pkg/logger"
)

const maintenanceMaxAge = 26 * time.Hour

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB         *gorm.DB
	Redis      *cache.RedisClient
	Mongo      *mongo.Client
	Kafka      *events.KafkaPublisher
	Monitoring *monitoring.Module
	Hub        *realtime.Hub
	Cleaner    *maintenance.Cleaner
	Router     *gin.Engine
}

// bootstrapRuntime initialises storage, the realtime hub, background jobs
// and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			_ = stack.Shutdown(context.Background(), log)
		}
	}()

	// enable gin debug mod
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.Monitoring, err = monitoring.NewModule(monitoring.Options{})
	if err != nil {
		return nil, fmt.Errorf("initialise monitoring: %w", err)
	}
	monitoring.SetModule(stack.Monitoring)

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Cache.Redis.Enabled {
		if stack.Redis, err = cache.NewRedisClient(cfg.Cache.RedisClientConfig()); err != nil {
			log.Warn("redis unavailable; rate limits and identities held locally", zap.Error(err))
			stack.Redis = nil
		} else {
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		}
	}

	var rateStore middleware.RateStore
	if stack.Redis != nil {
		rateStore = middleware.NewCacheRateStore(stack.Redis)
	}

	directory, err := store.NewUserDirectory(stack.DB)
	if err != nil {
		return nil, err
	}
	var users iauth.UserLookup = directory
	if stack.Redis != nil {
		users = iauth.NewCachedUsers(directory, stack.Redis, cfg.Cache.IdentityCacheTTL())
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	authn, err := iauth.NewAuthenticator(jwtSvc, users)
	if err != nil {
		return nil, fmt.Errorf("initialise authenticator: %w", err)
	}

	sinks, pruner, err := stack.messageSinks(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	hubOpts := cfg.HubOptions()
	hubOpts.Sinks = sinks
	hubOpts.Logger = logger.WithModule("realtime")
	stack.Hub = realtime.NewHub(hubOpts)

	registerHealthChecks(stack, cfg)

	stack.Cleaner = maintenance.NewCleaner(stack.Hub,
		maintenance.WithPresenceSchedule(cfg.Maintenance.PresenceSchedule),
		maintenance.WithRetentionSchedule(cfg.Maintenance.RetentionSchedule),
		maintenance.WithRetention(pruner, cfg.Persistence.Retention()),
	)
	if err := stack.Cleaner.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	stack.Router, err = api.NewRouter(api.Dependencies{
		Config:        cfg,
		Hub:           stack.Hub,
		Authenticator: authn,
		JWT:           jwtSvc,
		Monitoring:    stack.Monitoring,
		RateStore:     rateStore,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// messageSinks opens the configured message store and, when enabled, the
// kafka publisher. The returned pruner is nil when the backend keeps nothing.
func (s *runtimeStack) messageSinks(ctx context.Context, cfg *app.Config, log *zap.Logger) ([]realtime.NamedSink, maintenance.MessagePruner, error) {
	var (
		sinks  []realtime.NamedSink
		pruner maintenance.MessagePruner
	)

	switch backend := cfg.Persistence.BackendName(); backend {
	case "sql":
		messages, err := store.NewSQLMessageStore(s.DB)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, realtime.NamedSink{Name: "sql", Sink: messages})
		pruner = messages
	case "mongo":
		mongoCfg := cfg.Persistence.MongoConfig()
		client, err := store.ConnectMongo(ctx, mongoCfg)
		if err != nil {
			return nil, nil, err
		}
		s.Mongo = client

		messages, err := store.NewMongoMessageStore(ctx, client.Database(mongoCfg.Database).Collection(mongoCfg.Collection))
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, realtime.NamedSink{Name: "mongo", Sink: messages})
		pruner = messages
		log.Info("mongo connected", zap.String("database", mongoCfg.Database), zap.String("collection", mongoCfg.Collection))
	case "none":
		log.Info("message persistence disabled")
	default:
		return nil, nil, fmt.Errorf("unsupported persistence backend %q", backend)
	}

	if cfg.Events.Kafka.Enabled {
		publisher, err := events.NewKafkaPublisher(cfg.Events.KafkaConfig())
		if err != nil {
			return nil, nil, fmt.Errorf("initialise kafka publisher: %w", err)
		}
		s.Kafka = publisher
		sinks = append(sinks, realtime.NamedSink{Name: "kafka", Sink: publisher})
		log.Info("kafka publisher ready", zap.Strings("brokers", cfg.Events.Kafka.Brokers), zap.String("topic", cfg.Events.Kafka.Topic))
	}

	return sinks, pruner, nil
}

func registerHealthChecks(stack *runtimeStack, cfg *app.Config) {
	health := stack.Monitoring.Health()
	health.RegisterLiveness(checks.Realtime(stack.Hub))

	health.RegisterReadiness(checks.Database(stack.DB, 0))
	if stack.Redis != nil {
		health.RegisterReadiness(checks.Redis(stack.Redis, cfg.Cache.Redis.Enabled, cfg.Cache.Redis.Timeout))
	} else {
		health.RegisterReadiness(checks.Redis(nil, cfg.Cache.Redis.Enabled, 0))
	}
	if stack.Mongo != nil {
		health.RegisterReadiness(checks.Mongo(stack.Mongo, cfg.Persistence.Timeout))
	}
	health.RegisterReadiness(checks.Maintenance(maintenanceMaxAge))
}

// Shutdown closes every session, stops background jobs and releases
// connections. Errors are joined; every step runs regardless.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) error {
	if s == nil {
		return nil
	}

	var errs error
	if s.Hub != nil {
		if err := s.Hub.Shutdown(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("realtime hub: %w", err))
		}
	}

	if s.Cleaner != nil {
		select {
		case <-s.Cleaner.Stop().Done():
		case <-ctx.Done():
			log.Warn("maintenance jobs still running at shutdown")
		}
	}

	if s.Kafka != nil {
		if err := s.Kafka.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("kafka: %w", err))
		}
	}

	if s.Mongo != nil {
		if err := s.Mongo.Disconnect(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("mongo: %w", err))
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("redis: %w", err))
		}
	}

	if s.DB != nil {
		if err := database.Close(s.DB); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("database: %w", err))
		}
	}

	for _, err := range multierr.Errors(errs) {
		log.Warn("shutdown step failed", zap.Error(err))
	}
	return errs
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.DatabaseOptions()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.Prepare(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", dbCfg.Driver))

	return db, nil
}

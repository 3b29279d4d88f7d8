package checks

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/gorm"

	"github.com/charlesng35/chattu/internal/monitoring"
)

const defaultPingTimeout = 2 * time.Second

// RedisPinger is satisfied by *cache.RedisClient.
type RedisPinger interface {
	Ping(ctx context.Context) error
}

// MongoPinger is satisfied by *mongo.Client.
type MongoPinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// Database pings the SQL store holding users and messages. The dialect name
// is reported as detail.
func Database(db *gorm.DB, timeout time.Duration) monitoring.Check {
	return monitoring.NewCheck("database", func(ctx context.Context) monitoring.ProbeResult {
		if db == nil {
			return unavailable("database", monitoring.StatusDown, "database not configured")
		}
		result := ping(ctx, "database", timeout, func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		})
		if result.Status == monitoring.StatusUp {
			result.Details = db.Dialector.Name()
		}
		return result
	})
}

// Redis probes the shared cache behind rate limits and the identity cache.
// A disabled cache is reported up; an enabled one that never connected
// degrades readiness because both consumers fall back to local state.
func Redis(client RedisPinger, enabled bool, timeout time.Duration) monitoring.Check {
	return monitoring.NewCheck("redis", func(ctx context.Context) monitoring.ProbeResult {
		if !enabled {
			return unavailable("redis", monitoring.StatusUp, "redis disabled, rate limits held in memory")
		}
		if client == nil {
			return unavailable("redis", monitoring.StatusDegraded, "redis unavailable")
		}
		return ping(ctx, "redis", timeout, client.Ping)
	})
}

// Mongo probes the message store's primary.
func Mongo(client MongoPinger, timeout time.Duration) monitoring.Check {
	return monitoring.NewCheck("mongo", func(ctx context.Context) monitoring.ProbeResult {
		if client == nil {
			return unavailable("mongo", monitoring.StatusDown, "mongo client unavailable")
		}
		return ping(ctx, "mongo", timeout, func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		})
	})
}

func ping(ctx context.Context, component string, timeout time.Duration, fn func(context.Context) error) monitoring.ProbeResult {
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	return monitoring.ResultFromError(component, fn(probeCtx), time.Since(start))
}

func unavailable(component string, status monitoring.ProbeStatus, details string) monitoring.ProbeResult {
	return monitoring.ProbeResult{Component: component, Status: status, Details: details}
}

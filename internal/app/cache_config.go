package app

import (
	"strings"
	"time"

	"github.com/charlesng35/chattu/internal/auth"
	"github.com/charlesng35/chattu/internal/cache"
)

// RedisClientConfig converts the redis settings into cache.RedisConfig.
func (c CacheConfig) RedisClientConfig() cache.RedisConfig {
	return cache.RedisConfig{
		Address:  strings.TrimSpace(c.Redis.Address),
		Username: strings.TrimSpace(c.Redis.Username),
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		TLS:      c.Redis.TLS,
		Timeout:  c.Redis.Timeout,
	}
}

// IdentityCacheTTL returns how long handshake identities stay cached, or
// zero when redis is disabled and nothing is cached.
func (c CacheConfig) IdentityCacheTTL() time.Duration {
	switch {
	case !c.Redis.Enabled:
		return 0
	case c.IdentityTTL <= 0:
		return auth.DefaultIdentityCacheTTL
	default:
		return c.IdentityTTL
	}
}

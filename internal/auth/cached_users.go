package auth

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/charlesng35/chattu/internal/cache"
	"github.com/charlesng35/chattu/internal/models"
	"github.com/charlesng35/chattu/pkg/logger"
)

const (
	DefaultIdentityCacheTTL = 5 * time.Minute
	identityKeyPrefix       = "identity:"
)

// CachedUsers fronts a UserLookup with the shared cache so reconnect storms
// do not each hit the user table. Only found users are cached; a deleted
// account stops authenticating once its entry expires.
type CachedUsers struct {
	next  UserLookup
	store cache.Store
	ttl   time.Duration
	log   *zap.Logger
}

// NewCachedUsers wraps next. A nil store returns next unchanged.
func NewCachedUsers(next UserLookup, store cache.Store, ttl time.Duration) UserLookup {
	if store == nil || next == nil {
		return next
	}
	if ttl <= 0 {
		ttl = DefaultIdentityCacheTTL
	}
	return &CachedUsers{next: next, store: store, ttl: ttl, log: logger.WithModule("auth")}
}

// FindUser serves id from the cache, falling back to the wrapped lookup.
// Cache errors are logged and bypassed.
func (c *CachedUsers) FindUser(ctx context.Context, id string) (models.User, error) {
	key := identityKeyPrefix + strings.TrimSpace(id)

	raw, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		c.log.Warn("identity cache read failed", zap.String("user_id", id), zap.Error(err))
	case ok:
		var user models.User
		if err := json.Unmarshal(raw, &user); err == nil {
			return user, nil
		}
		c.log.Debug("discarding corrupt identity cache entry", zap.String("user_id", id))
		if err := c.store.Delete(ctx, key); err != nil {
			c.log.Warn("identity cache delete failed", zap.String("user_id", id), zap.Error(err))
		}
	}

	user, err := c.next.FindUser(ctx, id)
	if err != nil {
		return user, err
	}

	if payload, err := json.Marshal(user); err == nil {
		if err := c.store.Set(ctx, key, payload, c.ttl); err != nil {
			c.log.Warn("identity cache write failed", zap.String("user_id", id), zap.Error(err))
		}
	}
	return user, nil
}

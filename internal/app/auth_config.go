package app

import (
	"strings"

	"github.com/charlesng35/chattu/internal/auth"
)

const defaultCookieName = "ChatRoom_Token"

// JWTServiceConfig converts AuthConfig into the parameters expected by the JWT service.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	ttl := c.JWT.TTL
	if ttl <= 0 {
		ttl = auth.DefaultAccessTokenTTL
	}

	return auth.JWTConfig{
		Secret:         c.JWT.Secret,
		Issuer:         c.JWT.Issuer,
		AccessTokenTTL: ttl,
		Leeway:         c.JWT.Leeway,
		RequireExpiry:  c.JWT.RequireExpiry,
	}
}

// Cookie returns the handshake cookie name, falling back to ChatRoom_Token.
func (c AuthConfig) Cookie() string {
	if name := strings.TrimSpace(c.CookieName); name != "" {
		return name
	}
	return defaultCookieName
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charlesng35/chattu/internal/models"
	"github.com/charlesng35/chattu/internal/realtime"
	"github.com/charlesng35/chattu/internal/store"
)

// UserLookup resolves the account a verified token refers to.
type UserLookup interface {
	FindUser(ctx context.Context, id string) (models.User, error)
}

// Authenticator turns a handshake credential into a realtime identity.
type Authenticator struct {
	jwt   *JWTService
	users UserLookup
}

// NewAuthenticator builds an authenticator. users may be nil, in which case
// the identity comes from the token claims alone.
func NewAuthenticator(jwtService *JWTService, users UserLookup) (*Authenticator, error) {
	if jwtService == nil {
		return nil, errors.New("authenticator: jwt service is required")
	}
	return &Authenticator{jwt: jwtService, users: users}, nil
}

// Authenticate verifies credential and loads the user it names. Bad, expired
// or orphaned credentials yield an error wrapping realtime.ErrAuthFailure;
// lookup outages are returned unwrapped so callers can tell them apart.
func (a *Authenticator) Authenticate(ctx context.Context, credential string) (realtime.Identity, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return realtime.Identity{}, fmt.Errorf("%w: missing credential", realtime.ErrAuthFailure)
	}

	claims, err := a.jwt.ValidateAccessToken(credential)
	if err != nil {
		return realtime.Identity{}, fmt.Errorf("%w: %v", realtime.ErrAuthFailure, err)
	}

	identity := realtime.Identity{ID: claims.UserID, Name: claims.Name}
	if a.users == nil {
		return identity, nil
	}

	user, err := a.users.FindUser(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return realtime.Identity{}, fmt.Errorf("%w: user %s no longer exists", realtime.ErrAuthFailure, claims.UserID)
	}
	if err != nil {
		return realtime.Identity{}, fmt.Errorf("authenticator: lookup user: %w", err)
	}
	if name := strings.TrimSpace(user.Name); name != "" {
		identity.Name = name
	}
	return identity, nil
}

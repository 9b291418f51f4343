package ports

import (
	"context"

	"github.com/inkpress/blog-api/internal/core/domain"
	"github.com/inkpress/blog-api/internal/core/token"
)

// UserRepository defines the persistence interface for user records.
// Email uniqueness is enforced by the store itself (unique index), not here.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, page, limit int) ([]*domain.User, int64, error)
}

// AuthService exposes registration, login and identity resolution.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	UserByID(ctx context.Context, id string) (*domain.User, error)
}

// TokenVerifier is the subset of the token service the middleware needs.
type TokenVerifier interface {
	Verify(raw string) (*token.Claims, error)
}

// IdentityResolver resolves a verified token claim to the current user
// record. Implemented by AuthService.
type IdentityResolver interface {
	UserByID(ctx context.Context, id string) (*domain.User, error)
}

// LoginLimiter throttles repeated login attempts per key.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

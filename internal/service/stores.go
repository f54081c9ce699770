package service

import (
	"context"
	"time"

	"chat-api/internal/model"
)

// Store contracts consumed by the services. The pgx repositories satisfy
// them; tests substitute in-memory fakes.

type UserStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	ExistsByUsername(ctx context.Context, username string, excludeID string) (bool, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	Create(ctx context.Context, u model.User, roleIDs []string) error
	Update(ctx context.Context, u model.User, roleIDs []string) error
	SoftDelete(ctx context.Context, id string) error
	SetRefreshToken(ctx context.Context, userID string, token string) error
	SetPassword(ctx context.Context, userID string, passwordHash string) error
	IncrementLoginAttempts(ctx context.Context, userID string) error
	ResetLoginAttempts(ctx context.Context, userID string) error
	Lockout(ctx context.Context, userID string, until time.Time) error
	List(ctx context.Context, filter model.UserFilter) (model.Page[model.UserInfo], error)
}

type RoleStore interface {
	FindByID(ctx context.Context, id string) (model.Role, error)
	FindByName(ctx context.Context, name string) (model.Role, bool, error)
	Create(ctx context.Context, role model.Role) error
	Update(ctx context.Context, role model.Role) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, filter model.RoleFilter) (model.Page[model.Role], error)
}

type EndpointStore interface {
	FindActiveByRouteAndVerb(ctx context.Context, route string, verb string) (model.EndpointPolicy, bool, error)
	FindByID(ctx context.Context, id string) (model.EndpointPolicy, error)
	Create(ctx context.Context, p model.EndpointPolicy) error
	Update(ctx context.Context, p model.EndpointPolicy) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, filter model.EndpointFilter) (model.Page[model.EndpointPolicy], error)
}

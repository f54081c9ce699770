package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"chat-api/internal/model"
	"chat-api/internal/objectid"
	"chat-api/pkg/apierror"
)

const bcryptCost = 12

// UserService covers administrative user management.
type UserService struct {
	users UserStore
	roles RoleStore
	now   func() time.Time
}

func NewUserService(users UserStore, roles RoleStore) *UserService {
	return &UserService{users: users, roles: roles, now: time.Now}
}

func (s *UserService) Create(ctx context.Context, req model.CreateUserRequest) (model.UserInfo, error) {
	if taken, err := s.users.ExistsByUsername(ctx, req.Username, ""); err != nil {
		return model.UserInfo{}, err
	} else if taken {
		return model.UserInfo{}, fmt.Errorf("%w: username already in use", model.ErrUserAlreadyExists)
	}
	if taken, err := s.users.ExistsByEmail(ctx, req.Email, ""); err != nil {
		return model.UserInfo{}, err
	} else if taken {
		return model.UserInfo{}, fmt.Errorf("%w: email already in use", model.ErrUserAlreadyExists)
	}

	assigned, err := s.resolveRoles(ctx, req.Roles)
	if err != nil {
		return model.UserInfo{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return model.UserInfo{}, err
	}

	now := s.now().UTC()
	user := model.User{
		ID:           objectid.New(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		Roles:        assigned,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user, req.Roles); err != nil {
		return model.UserInfo{}, err
	}
	return user.Info(), nil
}

func (s *UserService) Edit(ctx context.Context, id string, req model.EditUserRequest) (model.UserInfo, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.UserInfo{}, err
	}

	if taken, err := s.users.ExistsByUsername(ctx, req.Username, id); err != nil {
		return model.UserInfo{}, err
	} else if taken {
		return model.UserInfo{}, fmt.Errorf("%w: username already in use", model.ErrUserAlreadyExists)
	}
	if taken, err := s.users.ExistsByEmail(ctx, req.Email, id); err != nil {
		return model.UserInfo{}, err
	} else if taken {
		return model.UserInfo{}, fmt.Errorf("%w: email already in use", model.ErrUserAlreadyExists)
	}

	assigned, err := s.resolveRoles(ctx, req.Roles)
	if err != nil {
		return model.UserInfo{}, err
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Email = req.Email
	user.Username = req.Username
	user.Roles = assigned
	user.UpdatedAt = s.now().UTC()

	if err := s.users.Update(ctx, user, req.Roles); err != nil {
		return model.UserInfo{}, err
	}
	return user.Info(), nil
}

func (s *UserService) Get(ctx context.Context, id string) (model.UserInfo, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.UserInfo{}, err
	}
	return user.Info(), nil
}

// Delete soft-disables the user and returns the disabled record.
func (s *UserService) Delete(ctx context.Context, id string) (model.UserInfo, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.UserInfo{}, err
	}
	if err := s.users.SoftDelete(ctx, id); err != nil {
		return model.UserInfo{}, err
	}
	return user.Info(), nil
}

func (s *UserService) List(ctx context.Context, filter model.UserFilter) (model.Page[model.UserInfo], error) {
	return s.users.List(ctx, filter)
}

// resolveRoles loads every referenced role, rejecting ids that do not exist
// or point at a disabled role.
func (s *UserService) resolveRoles(ctx context.Context, roleIDs []string) ([]model.Role, error) {
	resolved := make([]model.Role, 0, len(roleIDs))
	for _, id := range roleIDs {
		role, err := s.roles.FindByID(ctx, id)
		if err != nil {
			return nil, apierror.Validation("one or more roles do not exist")
		}
		if role.DisabledAt != nil {
			return nil, apierror.Validation("one or more roles are disabled")
		}
		resolved = append(resolved, role)
	}
	return resolved, nil
}

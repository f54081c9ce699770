package service

import (
	"context"
	"strings"
	"time"

	"chat-api/internal/model"
	"chat-api/internal/objectid"
	"chat-api/pkg/apierror"
)

type RoleService struct {
	roles RoleStore
	now   func() time.Time
}

func NewRoleService(roles RoleStore) *RoleService {
	return &RoleService{roles: roles, now: time.Now}
}

func (s *RoleService) Create(ctx context.Context, req model.SaveRoleRequest) (model.Role, error) {
	normalized := strings.ToUpper(strings.TrimSpace(req.Name))
	if _, found, err := s.roles.FindByName(ctx, normalized); err != nil {
		return model.Role{}, err
	} else if found {
		return model.Role{}, apierror.Validation("a role with that name already exists")
	}

	now := s.now().UTC()
	role := model.Role{
		ID:             objectid.New(),
		Name:           strings.TrimSpace(req.Name),
		NormalizedName: normalized,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.roles.Create(ctx, role); err != nil {
		return model.Role{}, err
	}
	return role, nil
}

func (s *RoleService) Edit(ctx context.Context, id string, req model.SaveRoleRequest) (model.Role, error) {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return model.Role{}, err
	}

	normalized := strings.ToUpper(strings.TrimSpace(req.Name))
	if existing, found, err := s.roles.FindByName(ctx, normalized); err != nil {
		return model.Role{}, err
	} else if found && existing.ID != id {
		return model.Role{}, apierror.Validation("a role with that name already exists")
	}

	role.Name = strings.TrimSpace(req.Name)
	role.NormalizedName = normalized
	role.UpdatedAt = s.now().UTC()

	if err := s.roles.Update(ctx, role); err != nil {
		return model.Role{}, err
	}
	return role, nil
}

func (s *RoleService) Get(ctx context.Context, id string) (model.Role, error) {
	return s.roles.FindByID(ctx, id)
}

func (s *RoleService) Delete(ctx context.Context, id string) (model.Role, error) {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return model.Role{}, err
	}
	if err := s.roles.SoftDelete(ctx, id); err != nil {
		return model.Role{}, err
	}
	return role, nil
}

func (s *RoleService) List(ctx context.Context, filter model.RoleFilter) (model.Page[model.Role], error) {
	return s.roles.List(ctx, filter)
}

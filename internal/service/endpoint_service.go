package service

import (
	"context"
	"strings"
	"time"

	"chat-api/internal/event"
	"chat-api/internal/model"
	"chat-api/internal/objectid"
	"chat-api/pkg/apierror"
)

// EndpointService manages the route policies the authorization filter reads.
// Route and verb are normalized on write so lookups stay exact-match.
type EndpointService struct {
	endpoints EndpointStore
	roles     RoleStore
	bus       event.Bus
	now       func() time.Time
}

func NewEndpointService(endpoints EndpointStore, roles RoleStore, bus event.Bus) *EndpointService {
	return &EndpointService{endpoints: endpoints, roles: roles, bus: bus, now: time.Now}
}

func (s *EndpointService) Create(ctx context.Context, req model.SaveEndpointRequest) (model.EndpointPolicy, error) {
	route, verb := normalizeRoute(req.Route), normalizeVerb(req.Verb)

	if _, found, err := s.endpoints.FindActiveByRouteAndVerb(ctx, route, verb); err != nil {
		return model.EndpointPolicy{}, err
	} else if found {
		return model.EndpointPolicy{}, model.ErrEndpointConflict
	}

	roleNames, err := s.resolveRoleNames(ctx, req.Roles)
	if err != nil {
		return model.EndpointPolicy{}, err
	}

	now := s.now().UTC()
	policy := model.EndpointPolicy{
		ID:        objectid.New(),
		Route:     route,
		Verb:      verb,
		Roles:     roleNames,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.endpoints.Create(ctx, policy); err != nil {
		return model.EndpointPolicy{}, err
	}

	s.bus.Publish(event.New(event.TypeEndpointChanged, policy, policy.ID))
	return policy, nil
}

func (s *EndpointService) Edit(ctx context.Context, id string, req model.SaveEndpointRequest) (model.EndpointPolicy, error) {
	policy, err := s.endpoints.FindByID(ctx, id)
	if err != nil {
		return model.EndpointPolicy{}, err
	}

	route, verb := normalizeRoute(req.Route), normalizeVerb(req.Verb)

	if existing, found, err := s.endpoints.FindActiveByRouteAndVerb(ctx, route, verb); err != nil {
		return model.EndpointPolicy{}, err
	} else if found && existing.ID != id {
		return model.EndpointPolicy{}, model.ErrEndpointConflict
	}

	roleNames, err := s.resolveRoleNames(ctx, req.Roles)
	if err != nil {
		return model.EndpointPolicy{}, err
	}

	policy.Route = route
	policy.Verb = verb
	policy.Roles = roleNames
	policy.UpdatedAt = s.now().UTC()

	if err := s.endpoints.Update(ctx, policy); err != nil {
		return model.EndpointPolicy{}, err
	}

	s.bus.Publish(event.New(event.TypeEndpointChanged, policy, policy.ID))
	return policy, nil
}

func (s *EndpointService) Get(ctx context.Context, id string) (model.EndpointPolicy, error) {
	return s.endpoints.FindByID(ctx, id)
}

// Delete soft-disables the policy. Requests to its route fall back to
// pass-through until a new active policy is created.
func (s *EndpointService) Delete(ctx context.Context, id string) (model.EndpointPolicy, error) {
	policy, err := s.endpoints.FindByID(ctx, id)
	if err != nil {
		return model.EndpointPolicy{}, err
	}
	if err := s.endpoints.SoftDelete(ctx, id); err != nil {
		return model.EndpointPolicy{}, err
	}

	s.bus.Publish(event.New(event.TypeEndpointChanged, policy, policy.ID))
	return policy, nil
}

func (s *EndpointService) List(ctx context.Context, filter model.EndpointFilter) (model.Page[model.EndpointPolicy], error) {
	return s.endpoints.List(ctx, filter)
}

// resolveRoleNames maps role names to their normalized form, requiring each
// to exist as an active role.
func (s *EndpointService) resolveRoleNames(ctx context.Context, names []string) ([]string, error) {
	resolved := make([]string, 0, len(names))
	for _, name := range names {
		role, found, err := s.roles.FindByName(ctx, strings.ToUpper(strings.TrimSpace(name)))
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, apierror.Validation("role " + name + " does not exist")
		}
		resolved = append(resolved, role.NormalizedName)
	}
	return resolved, nil
}

// normalizeRoute stores routes the way request paths canonicalize: leading
// slash, no trailing slash, lowercased.
func normalizeRoute(route string) string {
	route = strings.ToLower(strings.TrimSpace(route))
	route = strings.TrimSuffix(route, "/")
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return route
}

func normalizeVerb(verb string) string {
	return strings.ToUpper(strings.TrimSpace(verb))
}

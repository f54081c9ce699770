package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"chat-api/internal/event"
	"chat-api/internal/model"
)

// In-memory store fakes shared by the service tests.

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newFakeUserStore(users ...model.User) *fakeUserStore {
	store := &fakeUserStore{users: map[string]model.User{}}
	for _, u := range users {
		store.users[u.ID] = u
	}
	return store
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok || user.DisabledAt != nil {
		return model.User{}, model.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) FindByUsername(_ context.Context, username string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Username == username && user.DisabledAt == nil {
			return user, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (f *fakeUserStore) ExistsByUsername(_ context.Context, username string, excludeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Username == username && user.DisabledAt == nil && user.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) ExistsByEmail(_ context.Context, email string, excludeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email && user.DisabledAt == nil && user.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) Create(_ context.Context, u model.User, _ []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserStore) Update(_ context.Context, u model.User, _ []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return model.ErrUserNotFound
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserStore) SoftDelete(_ context.Context, id string) error {
	return f.mutate(id, func(u *model.User) {
		now := time.Now()
		u.DisabledAt = &now
	})
}

func (f *fakeUserStore) SetRefreshToken(_ context.Context, userID string, token string) error {
	return f.mutate(userID, func(u *model.User) { u.RefreshToken = token })
}

func (f *fakeUserStore) SetPassword(_ context.Context, userID string, passwordHash string) error {
	return f.mutate(userID, func(u *model.User) { u.PasswordHash = passwordHash })
}

func (f *fakeUserStore) IncrementLoginAttempts(_ context.Context, userID string) error {
	return f.mutate(userID, func(u *model.User) { u.LoginAttempts++ })
}

func (f *fakeUserStore) ResetLoginAttempts(_ context.Context, userID string) error {
	return f.mutate(userID, func(u *model.User) {
		u.LoginAttempts = 0
		u.LockoutUntil = nil
	})
}

func (f *fakeUserStore) Lockout(_ context.Context, userID string, until time.Time) error {
	return f.mutate(userID, func(u *model.User) { u.LockoutUntil = &until })
}

func (f *fakeUserStore) List(_ context.Context, filter model.UserFilter) (model.Page[model.UserInfo], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	infos := make([]model.UserInfo, 0, len(f.users))
	for _, user := range f.users {
		if user.DisabledAt == nil {
			infos = append(infos, user.Info())
		}
	}
	return model.NewPage(infos, int64(len(infos)), filter.Page, filter.Limit), nil
}

func (f *fakeUserStore) mutate(id string, fn func(*model.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	fn(&user)
	f.users[id] = user
	return nil
}

type fakeRoleStore struct {
	mu    sync.Mutex
	roles map[string]model.Role
}

func newFakeRoleStore(roles ...model.Role) *fakeRoleStore {
	store := &fakeRoleStore{roles: map[string]model.Role{}}
	for _, r := range roles {
		store.roles[r.ID] = r
	}
	return store
}

func (f *fakeRoleStore) FindByID(_ context.Context, id string) (model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	role, ok := f.roles[id]
	if !ok {
		return model.Role{}, model.ErrRoleNotFound
	}
	return role, nil
}

func (f *fakeRoleStore) FindByName(_ context.Context, name string) (model.Role, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, role := range f.roles {
		if role.NormalizedName == name && role.DisabledAt == nil {
			return role, true, nil
		}
	}
	return model.Role{}, false, nil
}

func (f *fakeRoleStore) Create(_ context.Context, role model.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[role.ID] = role
	return nil
}

func (f *fakeRoleStore) Update(_ context.Context, role model.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.roles[role.ID]; !ok {
		return model.ErrRoleNotFound
	}
	f.roles[role.ID] = role
	return nil
}

func (f *fakeRoleStore) SoftDelete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	role, ok := f.roles[id]
	if !ok {
		return model.ErrRoleNotFound
	}
	now := time.Now()
	role.DisabledAt = &now
	f.roles[id] = role
	return nil
}

func (f *fakeRoleStore) List(_ context.Context, filter model.RoleFilter) (model.Page[model.Role], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	roles := make([]model.Role, 0, len(f.roles))
	for _, role := range f.roles {
		if role.DisabledAt == nil {
			roles = append(roles, role)
		}
	}
	return model.NewPage(roles, int64(len(roles)), filter.Page, filter.Limit), nil
}

type fakeEndpointStore struct {
	mu       sync.Mutex
	policies map[string]model.EndpointPolicy
	err      error
}

func newFakeEndpointStore(policies ...model.EndpointPolicy) *fakeEndpointStore {
	store := &fakeEndpointStore{policies: map[string]model.EndpointPolicy{}}
	for _, p := range policies {
		store.policies[p.ID] = p
	}
	return store
}

func (f *fakeEndpointStore) FindActiveByRouteAndVerb(_ context.Context, route string, verb string) (model.EndpointPolicy, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.EndpointPolicy{}, false, f.err
	}
	for _, policy := range f.policies {
		if policy.Route == route && policy.Verb == verb && policy.DisabledAt == nil {
			return policy, true, nil
		}
	}
	return model.EndpointPolicy{}, false, nil
}

func (f *fakeEndpointStore) FindByID(_ context.Context, id string) (model.EndpointPolicy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	policy, ok := f.policies[id]
	if !ok {
		return model.EndpointPolicy{}, model.ErrEndpointNotFound
	}
	return policy, nil
}

func (f *fakeEndpointStore) Create(_ context.Context, p model.EndpointPolicy) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.policies[p.ID] = p
	return nil
}

func (f *fakeEndpointStore) Update(_ context.Context, p model.EndpointPolicy) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.policies[p.ID]; !ok {
		return model.ErrEndpointNotFound
	}
	f.policies[p.ID] = p
	return nil
}

func (f *fakeEndpointStore) SoftDelete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	policy, ok := f.policies[id]
	if !ok {
		return model.ErrEndpointNotFound
	}
	now := time.Now()
	policy.DisabledAt = &now
	f.policies[id] = policy
	return nil
}

func (f *fakeEndpointStore) List(_ context.Context, filter model.EndpointFilter) (model.Page[model.EndpointPolicy], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	policies := make([]model.EndpointPolicy, 0, len(f.policies))
	for _, policy := range f.policies {
		if policy.DisabledAt == nil {
			policies = append(policies, policy)
		}
	}
	return model.NewPage(policies, int64(len(policies)), filter.Page, filter.Limit), nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, to, _, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to+":"+password)
	return nil
}

func (f *fakeMailer) lastPassword() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return "", false
	}
	last := f.sent[len(f.sent)-1]
	for i := range last {
		if last[i] == ':' {
			return last[i+1:], true
		}
	}
	return "", false
}

type recordingBus struct {
	mu     sync.Mutex
	events []event.Event
}

func (b *recordingBus) Publish(e event.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) Subscribe() (<-chan event.Event, func()) {
	ch := make(chan event.Event)
	return ch, func() { close(ch) }
}

func (b *recordingBus) published() []event.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]event.Event(nil), b.events...)
}

var errStoreDown = errors.New("store unavailable")

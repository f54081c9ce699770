package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-api/internal/model"
)

func newUserFixture() (*UserService, *fakeUserStore) {
	users := newFakeUserStore()
	roles := newFakeRoleStore(
		model.Role{ID: "000000000000000000000001", Name: "Admin", NormalizedName: "ADMIN"},
		model.Role{ID: "000000000000000000000002", Name: "User", NormalizedName: "USER"},
	)
	return NewUserService(users, roles), users
}

func createRequest() model.CreateUserRequest {
	return model.CreateUserRequest{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Username:  "jdoe",
		Password:  "secret123",
		Roles:     []string{"000000000000000000000002"},
	}
}

func TestUserService_Create(t *testing.T) {
	svc, users := newUserFixture()

	info, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	assert.Len(t, info.ID, 24)
	assert.Equal(t, []string{"USER"}, info.Roles)

	stored, err := users.FindByID(context.Background(), info.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
}

func TestUserService_CreateRejectsDuplicateUsernameAndEmail(t *testing.T) {
	svc, _ := newUserFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	dupUsername := createRequest()
	dupUsername.Email = "other@example.com"
	_, err = svc.Create(ctx, dupUsername)
	assert.ErrorIs(t, err, model.ErrUserAlreadyExists)

	dupEmail := createRequest()
	dupEmail.Username = "other"
	_, err = svc.Create(ctx, dupEmail)
	assert.ErrorIs(t, err, model.ErrUserAlreadyExists)
}

func TestUserService_CreateRejectsUnknownRole(t *testing.T) {
	svc, _ := newUserFixture()

	req := createRequest()
	req.Roles = []string{"ffffffffffffffffffffffff"}

	_, err := svc.Create(context.Background(), req)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestUserService_Edit(t *testing.T) {
	svc, _ := newUserFixture()
	ctx := context.Background()

	info, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	updated, err := svc.Edit(ctx, info.ID, model.EditUserRequest{
		FirstName: "Janet",
		LastName:  "Doe",
		Email:     "janet@example.com",
		Username:  "jdoe",
		Roles:     []string{"000000000000000000000001"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Janet", updated.FirstName)
	assert.Equal(t, []string{"ADMIN"}, updated.Roles)
}

func TestUserService_DeleteReturnsDisabledRecord(t *testing.T) {
	svc, _ := newUserFixture()
	ctx := context.Background()

	info, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, info.ID, deleted.ID)

	_, err = svc.Get(ctx, info.ID)
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

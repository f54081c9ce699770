package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-api/internal/model"
)

func TestRoleService_CreateNormalizesName(t *testing.T) {
	svc := NewRoleService(newFakeRoleStore())

	role, err := svc.Create(context.Background(), model.SaveRoleRequest{Name: " Moderator "})
	require.NoError(t, err)

	assert.Equal(t, "Moderator", role.Name)
	assert.Equal(t, "MODERATOR", role.NormalizedName)
	assert.Len(t, role.ID, 24)
}

func TestRoleService_CreateRejectsDuplicateByNormalizedName(t *testing.T) {
	svc := NewRoleService(newFakeRoleStore())
	ctx := context.Background()

	_, err := svc.Create(ctx, model.SaveRoleRequest{Name: "Moderator"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, model.SaveRoleRequest{Name: "MODERATOR"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestRoleService_EditKeepsOwnName(t *testing.T) {
	svc := NewRoleService(newFakeRoleStore())
	ctx := context.Background()

	role, err := svc.Create(ctx, model.SaveRoleRequest{Name: "Moderator"})
	require.NoError(t, err)

	// Renaming to a different casing of itself is allowed.
	updated, err := svc.Edit(ctx, role.ID, model.SaveRoleRequest{Name: "moderator"})
	require.NoError(t, err)
	assert.Equal(t, "moderator", updated.Name)
	assert.Equal(t, "MODERATOR", updated.NormalizedName)
}

func TestRoleService_DeleteFreesName(t *testing.T) {
	svc := NewRoleService(newFakeRoleStore())
	ctx := context.Background()

	role, err := svc.Create(ctx, model.SaveRoleRequest{Name: "Moderator"})
	require.NoError(t, err)

	_, err = svc.Delete(ctx, role.ID)
	require.NoError(t, err)

	_, err = svc.Create(ctx, model.SaveRoleRequest{Name: "Moderator"})
	assert.NoError(t, err)
}

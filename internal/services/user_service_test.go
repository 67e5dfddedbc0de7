package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "github.com/yukikurage/taskquest-api/internal/errors"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/testutil"
)

func TestUserService_UpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "ada@example.com")

	name := "  Ada L. "
	avatar := "https://img/ada.png"
	updated, err := env.users.UpdateProfile(ctx, user.ID, UpdateProfileInput{DisplayName: &name, AvatarURL: &avatar})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", updated.DisplayName)
	assert.Equal(t, "https://img/ada.png", updated.AvatarURL)
	require.NotNil(t, updated.Tier)

	_, err = env.users.UpdateProfile(ctx, "00000000-0000-0000-0000-000000000000", UpdateProfileInput{DisplayName: &name})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_AdminUpdateUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "ada@example.com")
	tiers, err := env.tierRepo.List(ctx)
	require.NoError(t, err)
	top := tiers[len(tiers)-1]

	leader := models.RoleLeader
	updated, err := env.users.AdminUpdateUser(ctx, user.ID, &leader, &top.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleLeader, updated.Role)
	assert.Equal(t, top.ID, updated.TierID)
	assert.Equal(t, top.Name, updated.Tier.Name)

	bogus := models.Role("OWNER")
	_, err = env.users.AdminUpdateUser(ctx, user.ID, &bogus, nil)
	assert.Equal(t, apierrors.KindValidation, apierrors.KindOf(err))

	missing := "00000000-0000-0000-0000-000000000000"
	_, err = env.users.AdminUpdateUser(ctx, user.ID, nil, &missing)
	assert.ErrorIs(t, err, ErrTierNotFound)

	_, err = env.users.AdminUpdateUser(ctx, missing, &leader, nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

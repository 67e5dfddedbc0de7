package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/testutil"
)

func TestProjectService_CreateAndJoin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db, "owner@example.com")
	joiner := testutil.CreateUser(t, env.db, "joiner@example.com")

	project, err := env.projects.CreateProject(ctx, CreateProjectInput{Name: "  Apollo ", Description: "moon", OwnerID: owner.ID})
	require.NoError(t, err)
	assert.Equal(t, "Apollo", project.Name)
	assert.Regexp(t, `^[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}$`, project.InviteCode)

	access, err := env.projects.Access(ctx, project.ID, callerFor(owner))
	require.NoError(t, err)
	assert.True(t, access.IsOwner())
	assert.Equal(t, models.ProjectRoleOwner, access.Role())

	joined, err := env.projects.JoinProjectByInvite(ctx, joiner.ID, " "+strings.ToLower(project.InviteCode)+" ")
	require.NoError(t, err)
	assert.Equal(t, project.ID, joined.ID)

	_, err = env.projects.JoinProjectByInvite(ctx, joiner.ID, project.InviteCode)
	assert.ErrorIs(t, err, ErrAlreadyProjectMember)

	_, err = env.projects.JoinProjectByInvite(ctx, joiner.ID, "0000-0000-0000")
	assert.ErrorIs(t, err, ErrInvalidInviteCode)

	access, err = env.projects.Access(ctx, project.ID, callerFor(joiner))
	require.NoError(t, err)
	assert.False(t, access.IsOwner())
	assert.Equal(t, models.ProjectRoleMember, access.Role())

	memberships, err := env.projects.ListProjectsForUser(ctx, joiner.ID)
	require.NoError(t, err)
	require.Len(t, memberships, 1)
	assert.Equal(t, "Apollo", memberships[0].Project.Name)
}

func TestProjectService_Access(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db, "owner@example.com")
	outsider := testutil.CreateUser(t, env.db, "outsider@example.com")
	admin := testutil.CreateUser(t, env.db, "admin@example.com", func(u *models.User) { u.Role = models.RoleAdmin })
	project := testutil.CreateProject(t, env.db, "Board", owner)

	_, err := env.projects.Access(ctx, project.ID, callerFor(outsider))
	assert.ErrorIs(t, err, ErrNotProjectMember)

	access, err := env.projects.Access(ctx, project.ID, callerFor(admin))
	require.NoError(t, err)
	assert.Nil(t, access.Member)
	assert.True(t, access.IsOwner())
	assert.Empty(t, access.Role())

	_, err = env.projects.Access(ctx, "00000000-0000-0000-0000-000000000000", callerFor(owner))
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectService_Detail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db, "owner@example.com")
	member := testutil.CreateUser(t, env.db, "member@example.com")
	project := testutil.CreateProject(t, env.db, "Board", owner)
	testutil.AddMember(t, env.db, project, member, models.ProjectRoleMember)

	_, err := env.projects.CreateColumn(ctx, project.ID, "Todo", nil)
	require.NoError(t, err)
	second, err := env.projects.CreateColumn(ctx, project.ID, " Done ", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Position)
	assert.Equal(t, "Done", second.Name)

	detail, err := env.projects.GetProjectDetail(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ID, detail.Project.ID)
	assert.Len(t, detail.Members, 2)
	require.Len(t, detail.Columns, 2)
	assert.Equal(t, "Todo", detail.Columns[0].Name)
}

func TestProjectService_UpdateRegenerateDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db, "owner@example.com")
	project := testutil.CreateProject(t, env.db, "Board", owner)
	testutil.CreateTask(t, env.db, "task", project, owner)

	name := " Renamed "
	updated, err := env.projects.UpdateProject(ctx, project.ID, &name, nil)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	regenerated, err := env.projects.RegenerateInviteCode(ctx, project.ID)
	require.NoError(t, err)
	assert.NotEqual(t, project.InviteCode, regenerated.InviteCode)

	require.NoError(t, env.projects.DeleteProject(ctx, project.ID))
	assert.ErrorIs(t, env.projects.Exists(ctx, project.ID), ErrProjectNotFound)
	assert.ErrorIs(t, env.projects.DeleteProject(ctx, project.ID), ErrProjectNotFound)

	var tasks int64
	require.NoError(t, env.db.Model(&models.Task{}).Where("project_id = ?", project.ID).Count(&tasks).Error)
	assert.Zero(t, tasks)
}

func TestProjectService_RemoveMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db, "owner@example.com")
	member := testutil.CreateUser(t, env.db, "member@example.com")
	admin := testutil.CreateUser(t, env.db, "admin@example.com", func(u *models.User) { u.Role = models.RoleAdmin })
	project := testutil.CreateProject(t, env.db, "Board", owner)
	testutil.AddMember(t, env.db, project, member, models.ProjectRoleMember)

	assert.ErrorIs(t, env.projects.RemoveMember(ctx, project.ID, owner.ID, owner.ID), ErrCannotRemoveYourself)
	assert.ErrorIs(t, env.projects.RemoveMember(ctx, project.ID, admin.ID, owner.ID), ErrCannotRemoveOwner)
	assert.ErrorIs(t, env.projects.RemoveMember(ctx, project.ID, owner.ID, admin.ID), ErrProjectMemberNotFound)

	require.NoError(t, env.projects.RemoveMember(ctx, project.ID, owner.ID, member.ID))
	isMember, err := env.projects.IsMember(ctx, project.ID, member.ID)
	require.NoError(t, err)
	assert.False(t, isMember)
}

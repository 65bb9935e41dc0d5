package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collabboard/internal/pkg/auth"
	"collabboard/pkg/constants"
	pkgErrors "collabboard/pkg/errors"
)

func TestCanAccessProject(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name   string
		userID int64
		access bool
		manage bool
	}{
		{"creator", f.alice.ID, true, true},
		{"member", f.bob.ID, true, false},
		{"outsider", f.carol.ID, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := f.authz.CanAccessProject(f.ctx, tc.userID, f.p1.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.access, ok)

			ok, err = f.authz.CanManageProject(f.ctx, tc.userID, f.p1.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.manage, ok)
		})
	}
}

func TestManagerMemberCanManage(t *testing.T) {
	f := newFixture(t)

	p := f.p1
	p.AddMember(f.carol.ID, constants.ProjectRoleManager)
	require.NoError(t, f.store.Projects().SaveMembers(f.ctx, p))

	ok, err := f.authz.CanManageProject(f.ctx, f.carol.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMissingProjectIsNotAccessible(t *testing.T) {
	f := newFixture(t)

	ok, err := f.authz.CanAccessProject(f.ctx, f.alice.ID, 9999)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.authz.RequireAccess(f.ctx, f.alice.ID, 9999)
	assert.ErrorIs(t, err, pkgErrors.ErrProjectNotFound)
}

func TestRequireErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.authz.RequireAccess(f.ctx, f.carol.ID, f.p1.ID)
	assert.ErrorIs(t, err, pkgErrors.ErrProjectAccess)

	_, err = f.authz.RequireManage(f.ctx, f.bob.ID, f.p1.ID)
	assert.ErrorIs(t, err, pkgErrors.ErrProjectManage)

	// 普通成员可以操作任务
	p, err := f.authz.Require(f.ctx, f.bob.ID, f.p1.ID, auth.PermTaskDelete)
	require.NoError(t, err)
	assert.Equal(t, f.p1.ID, p.ID)
}

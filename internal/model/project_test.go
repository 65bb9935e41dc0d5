package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"collabboard/pkg/constants"
)

func TestNewProjectAddsCreatorAsManager(t *testing.T) {
	p := NewProject("Launch", "ship it", time.Now().Add(24*time.Hour), 7)

	if assert.Len(t, p.Members, 1) {
		assert.Equal(t, int64(7), p.Members[0].UserID)
		assert.Equal(t, constants.ProjectRoleManager, p.Members[0].Role)
	}
	assert.True(t, p.CanManage(7))
}

func TestProjectAccessRules(t *testing.T) {
	p := NewProject("Launch", "ship it", time.Now(), 1)
	p.AddMember(2, constants.ProjectRoleMember)
	p.AddMember(3, constants.ProjectRoleManager)

	assert.True(t, p.CanAccess(1))
	assert.True(t, p.CanAccess(2))
	assert.True(t, p.CanAccess(3))
	assert.False(t, p.CanAccess(4))

	assert.True(t, p.CanManage(1))
	assert.False(t, p.CanManage(2))
	assert.True(t, p.CanManage(3))
	assert.False(t, p.CanManage(4))
}

func TestCreatorKeepsAccessWithoutMemberEntry(t *testing.T) {
	p := &Project{CreatedBy: 9}

	assert.True(t, p.CanAccess(9))
	assert.True(t, p.CanManage(9))
}

func TestAddAndRemoveMember(t *testing.T) {
	p := NewProject("Launch", "ship it", time.Now(), 1)

	assert.True(t, p.AddMember(2, constants.ProjectRoleMember))
	assert.False(t, p.AddMember(2, constants.ProjectRoleManager))
	assert.True(t, p.CanManage(2))

	assert.True(t, p.RemoveMember(2))
	assert.False(t, p.RemoveMember(2))
	assert.False(t, p.CanAccess(2))
	assert.Equal(t, []int64{1}, p.MemberIDs())
}

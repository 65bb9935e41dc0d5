package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"collabboard/internal/dto"
	"collabboard/internal/model"
	"collabboard/pkg/constants"
	pkgErrors "collabboard/pkg/errors"
)

func TestCreateProjectAddsCreatorAsManager(t *testing.T) {
	f := newFixture(t)

	resp, err := f.projects.Create(f.ctx, f.carol, &dto.CreateProjectRequest{
		Title:       "P2",
		Description: "second",
		Deadline:    time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, resp.Members, 1)
	assert.Equal(t, f.carol.ID, resp.Members[0].UserID)
	assert.Equal(t, constants.ProjectRoleManager, resp.Members[0].Role)
	assert.Equal(t, "Carol", resp.Creator.Name)

	notes := f.notificationsOf(t, f.carol.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, constants.NotificationTypeProject, notes[0].Type)
	require.Len(t, f.pusher.pushed, 1)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "项目通知", f.notifier.sent[0].Title)
}

func TestCreateProjectRejectsPastDeadline(t *testing.T) {
	f := newFixture(t)

	_, err := f.projects.Create(f.ctx, f.carol, &dto.CreateProjectRequest{
		Title: "P2", Description: "d", Deadline: time.Now().Add(-time.Hour),
	})
	require.Error(t, err)
	assert.Equal(t, pkgErrors.CodeBadRequest, pkgErrors.CodeOf(err))
}

func TestListProjectsForMember(t *testing.T) {
	f := newFixture(t)

	list, err := f.projects.List(f.ctx, f.bob.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "P1", list[0].Title)
	assert.Equal(t, "Bob", list[0].Members[1].Name)

	list, err = f.projects.List(f.ctx, f.carol.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateProjectRequiresManager(t *testing.T) {
	f := newFixture(t)
	title := "Renamed"

	_, err := f.projects.Update(f.ctx, f.bob.ID, f.p1.ID, &dto.UpdateProjectRequest{Title: &title})
	assert.ErrorIs(t, err, pkgErrors.ErrProjectManage)

	resp, err := f.projects.Update(f.ctx, f.alice.ID, f.p1.ID, &dto.UpdateProjectRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", resp.Title)
	assert.Equal(t, "first project", resp.Description)
}

func TestMembersManagement(t *testing.T) {
	f := newFixture(t)

	resp, err := f.projects.AddMember(f.ctx, f.alice.ID, f.p1.ID, &dto.AddProjectMemberRequest{Email: "carol@example.com"})
	require.NoError(t, err)
	assert.Len(t, resp.Members, 3)
	assert.Len(t, f.notificationsOf(t, f.carol.ID), 1)

	ok, err := f.authz.CanAccessProject(f.ctx, f.carol.ID, f.p1.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// 普通成员不能管理成员
	_, err = f.projects.RemoveMember(f.ctx, f.bob.ID, f.p1.ID, f.carol.ID)
	assert.ErrorIs(t, err, pkgErrors.ErrProjectManage)

	// 创建者不能被移除
	_, err = f.projects.RemoveMember(f.ctx, f.alice.ID, f.p1.ID, f.alice.ID)
	require.Error(t, err)

	_, err = f.projects.RemoveMember(f.ctx, f.alice.ID, f.p1.ID, f.carol.ID)
	require.NoError(t, err)
	ok, err = f.authz.CanAccessProject(f.ctx, f.carol.ID, f.p1.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteProjectCascades(t *testing.T) {
	f := newFixture(t)
	s := f.store

	_, err := f.tasks.Create(f.ctx, f.alice, &dto.CreateTaskRequest{
		Title: "t", Description: "d", AssignedTo: f.bob.ID, ProjectID: f.p1.ID,
	})
	require.NoError(t, err)
	_, err = f.chat.Send(f.ctx, f.bob, f.p1.ID, "hello")
	require.NoError(t, err)
	require.NoError(t, s.Files().Create(f.ctx, &model.File{
		ProjectID: f.p1.ID, UploadedBy: f.bob.ID, FileURL: "/uploads/a.txt", Filename: "a.txt",
		OriginalName: "a.txt", FileSize: 1, StorageID: "a.txt",
	}))

	f.blobs.On("Delete", mock.Anything, "a.txt").Return(nil).Once()

	// 普通成员不能删除项目
	assert.ErrorIs(t, f.projects.Delete(f.ctx, f.bob.ID, f.p1.ID), pkgErrors.ErrProjectManage)

	require.NoError(t, f.projects.Delete(f.ctx, f.alice.ID, f.p1.ID))

	_, err = s.Projects().FindByID(f.ctx, f.p1.ID)
	assert.ErrorIs(t, err, pkgErrors.ErrProjectNotFound)
	tasks, err := s.Tasks().ListByProject(f.ctx, f.p1.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Zero(t, s.MessageCount(f.p1.ID))
	files, err := s.Files().ListByProject(f.ctx, f.p1.ID)
	require.NoError(t, err)
	assert.Empty(t, files)

	f.blobs.AssertExpectations(t)
}

func TestDeleteProjectRollsBackOnStoreFailure(t *testing.T) {
	f := newFixture(t)
	s := f.store

	_, err := f.tasks.Create(f.ctx, f.alice, &dto.CreateTaskRequest{
		Title: "t", Description: "d", AssignedTo: f.bob.ID, ProjectID: f.p1.ID,
	})
	require.NoError(t, err)
	_, err = f.chat.Send(f.ctx, f.bob, f.p1.ID, "hello")
	require.NoError(t, err)
	require.NoError(t, s.Files().Create(f.ctx, &model.File{
		ProjectID: f.p1.ID, UploadedBy: f.bob.ID, FileURL: "/uploads/a.txt", Filename: "a.txt",
		OriginalName: "a.txt", FileSize: 1, StorageID: "a.txt",
	}))

	// 文件和任务删除成功，聊天记录删除失败
	s.FailWrites = pkgErrors.New(pkgErrors.CodeDatabaseError, "db down")
	s.FailAfter = 2

	err = f.projects.Delete(f.ctx, f.alice.ID, f.p1.ID)
	require.Error(t, err)
	assert.Equal(t, pkgErrors.CodeDatabaseError, pkgErrors.CodeOf(err))
	s.FailWrites = nil

	_, err = s.Projects().FindByID(f.ctx, f.p1.ID)
	require.NoError(t, err)
	tasks, err := s.Tasks().ListByProject(f.ctx, f.p1.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
	assert.Equal(t, 1, s.MessageCount(f.p1.ID))
	files, err := s.Files().ListByProject(f.ctx, f.p1.ID)
	require.NoError(t, err)
	assert.Len(t, files, 1)

	// 事务未提交时不删除外部文件
	f.blobs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collabboard/internal/model"
	"collabboard/pkg/constants"
	pkgErrors "collabboard/pkg/errors"
)

func TestChatRecentIsOldestFirstAndCapped(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	alice := s.SeedUser(&model.User{Name: "Alice", Email: "alice@example.com"})
	repo := s.ChatMessages()

	base := time.Now()
	for i := 0; i < 60; i++ {
		require.NoError(t, repo.Create(ctx, &model.ChatMessage{
			ProjectID: 1,
			SenderID:  alice.ID,
			Message:   fmt.Sprintf("m%d", i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, repo.Create(ctx, &model.ChatMessage{ProjectID: 2, SenderID: alice.ID, Message: "other", Timestamp: base}))

	recent, err := repo.Recent(ctx, 1, 50)
	require.NoError(t, err)
	require.Len(t, recent, 50)
	assert.Equal(t, "m10", recent[0].Message)
	assert.Equal(t, "m59", recent[49].Message)
	assert.Equal(t, "Alice", recent[0].Sender.Name)
}

func TestListByMember(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	p1 := model.NewProject("p1", "d", time.Now(), 1)
	p1.AddMember(2, constants.ProjectRoleMember)
	s.SeedProject(p1)
	s.SeedProject(model.NewProject("p2", "d", time.Now(), 3))

	list, err := s.Projects().ListByMember(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "p1", list[0].Title)

	list, err = s.Projects().ListByMember(ctx, 4)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	p := s.SeedProject(model.NewProject("p1", "d", time.Now(), 1))

	got, err := s.Projects().FindByID(ctx, p.ID)
	require.NoError(t, err)
	got.AddMember(5, constants.ProjectRoleMember)

	again, err := s.Projects().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, again.CanAccess(5))
}

func TestNotFoundErrors(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	_, err := s.Projects().FindByID(ctx, 99)
	assert.ErrorIs(t, err, pkgErrors.ErrProjectNotFound)
	_, err = s.Tasks().FindByID(ctx, 99)
	assert.ErrorIs(t, err, pkgErrors.ErrTaskNotFound)
	_, err = s.Users().FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, pkgErrors.ErrUserNotFound)
}

func TestTransactionRestoresOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	alice := s.SeedUser(&model.User{Name: "Alice", Email: "alice@example.com"})
	p := model.NewProject("P", "d", time.Now().Add(time.Hour), alice.ID)
	s.SeedProject(p)

	boom := pkgErrors.New(pkgErrors.CodeDatabaseError, "boom")
	err := s.Transaction(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Projects().Delete(ctx, p.ID))
		require.NoError(t, s.Users().Delete(ctx, alice.ID))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.Projects().FindByID(ctx, p.ID)
	assert.NoError(t, err)
	_, err = s.Users().FindByID(ctx, alice.ID)
	assert.NoError(t, err)

	require.NoError(t, s.Transaction(ctx, func(ctx context.Context) error {
		return s.Projects().Delete(ctx, p.ID)
	}))
	_, err = s.Projects().FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, pkgErrors.ErrProjectNotFound)
}

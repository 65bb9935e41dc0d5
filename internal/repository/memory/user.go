package memory

import (
	"context"
	"time"

	"github.com/samber/lo"

	"collabboard/internal/model"
	pkgErrors "collabboard/pkg/errors"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.writeErr(); err != nil {
		return err
	}
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建用户失败", pkgErrors.ErrRecordExists)
		}
	}
	r.s.touch(&user.BaseModel)
	r.s.users[user.ID] = copyUser(user)
	return nil
}

func (r *userRepo) FindByID(_ context.Context, id int64) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, pkgErrors.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, pkgErrors.ErrUserNotFound
}

func (r *userRepo) FindByIDs(_ context.Context, ids []int64) ([]*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	users := make([]*model.User, 0, len(ids))
	for _, id := range lo.Uniq(ids) {
		if u, ok := r.s.users[id]; ok {
			users = append(users, copyUser(u))
		}
	}
	return users, nil
}

func (r *userRepo) List(_ context.Context, page, pageSize int, keyword, role string) ([]*model.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	users := lo.FilterMap(lo.Values(r.s.users), func(u *model.User, _ int) (*model.User, bool) {
		if keyword != "" && !containsFold(u.Name, keyword) && !containsFold(u.Email, keyword) {
			return nil, false
		}
		if role != "" && u.Role != role {
			return nil, false
		}
		return copyUser(u), true
	})
	newestFirst(users, func(u *model.User) time.Time { return u.CreatedAt }, func(u *model.User) int64 { return u.ID })
	return paginate(users, page, pageSize), int64(len(users)), nil
}

func (r *userRepo) UpdateRole(_ context.Context, id int64, role string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.writeErr(); err != nil {
		return err
	}
	if u, ok := r.s.users[id]; ok {
		u.Role = role
		u.UpdatedAt = time.Now()
	}
	return nil
}

func (r *userRepo) UpdateLastLogin(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		now := time.Now()
		u.LastLoginAt = &now
	}
	return nil
}

func (r *userRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.writeErr(); err != nil {
		return err
	}
	delete(r.s.users, id)
	return nil
}

func (r *userRepo) Count(_ context.Context, since *time.Time) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := lo.CountBy(lo.Values(r.s.users), func(u *model.User) bool {
		return since == nil || !u.CreatedAt.Before(*since)
	})
	return int64(n), nil
}

func (r *userRepo) CountByRole(_ context.Context) (map[string]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make(map[string]int64)
	for _, u := range r.s.users {
		result[u.Role]++
	}
	return result, nil
}

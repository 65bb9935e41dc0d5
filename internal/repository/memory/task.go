package memory

import (
	"context"
	"time"

	"github.com/samber/lo"

	"collabboard/internal/model"
	"collabboard/internal/repository"
	pkgErrors "collabboard/pkg/errors"
)

type taskRepo struct{ s *Store }

// resolve 需在持锁时调用，带出 Assignee 和 Project
func (r *taskRepo) resolve(t *model.Task) *model.Task {
	c := *t
	c.Assignee = copyUser(r.s.users[t.AssignedTo])
	c.Project = copyProject(r.s.projects[t.ProjectID])
	return &c
}

func (r *taskRepo) Create(_ context.Context, task *model.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.writeErr(); err != nil {
		return err
	}
	r.s.touch(&task.BaseModel)
	c := *task
	c.Assignee, c.Project = nil, nil
	r.s.tasks[task.ID] = &c
	return nil
}

func (r *taskRepo) FindByID(_ context.Context, id int64, _ ...repository.QueryOption) (*model.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return nil, pkgErrors.ErrTaskNotFound
	}
	return r.resolve(t), nil
}

func (r *taskRepo) sorted(filter func(t *model.Task) bool) []*model.Task {
	list := lo.FilterMap(lo.Values(r.s.tasks), func(t *model.Task, _ int) (*model.Task, bool) {
		if !filter(t) {
			return nil, false
		}
		return r.resolve(t), true
	})
	newestFirst(list, func(t *model.Task) time.Time { return t.CreatedAt }, func(t *model.Task) int64 { return t.ID })
	return list
}

func (r *taskRepo) ListByProject(_ context.Context, projectID int64) ([]*model.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.sorted(func(t *model.Task) bool { return t.ProjectID == projectID }), nil
}

func (r *taskRepo) ListByAssignee(_ context.Context, userID int64) ([]*model.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.sorted(func(t *model.Task) bool { return t.AssignedTo == userID }), nil
}

func (r *taskRepo) List(_ context.Context, page, pageSize int, keyword, status string) ([]*model.Task, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := r.sorted(func(t *model.Task) bool {
		if keyword != "" && !containsFold(t.Title, keyword) && !containsFold(t.Description, keyword) {
			return false
		}
		return status == "" || t.Status == status
	})
	return paginate(list, page, pageSize), int64(len(list)), nil
}

func (r *taskRepo) Recent(_ context.Context, limit int) ([]*model.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return paginate(r.sorted(func(*model.Task) bool { return true }), 1, limit), nil
}

func (r *taskRepo) Updates(_ context.Context, id int64, fields map[string]interface{}) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.writeErr(); err != nil {
		return err
	}
	t, ok := r.s.tasks[id]
	if !ok {
		return nil
	}
	for k, v := range fields {
		switch k {
		case "title":
			t.Title = v.(string)
		case "description":
			t.Description = v.(string)
		case "status":
			t.Status = v.(string)
		case "assigned_to":
			t.AssignedTo = v.(int64)
		}
	}
	t.UpdatedAt = time.Now()
	return nil
}

func (r *taskRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.writeErr(); err != nil {
		return err
	}
	delete(r.s.tasks, id)
	return nil
}

func (r *taskRepo) DeleteByProject(_ context.Context, projectID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.writeErr(); err != nil {
		return err
	}
	for id, t := range r.s.tasks {
		if t.ProjectID == projectID {
			delete(r.s.tasks, id)
		}
	}
	return nil
}

func (r *taskRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.tasks)), nil
}

func (r *taskRepo) CountByAssignee(_ context.Context, userID int64) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(lo.CountBy(lo.Values(r.s.tasks), func(t *model.Task) bool { return t.AssignedTo == userID })), nil
}

package memory

import (
	"context"
	"time"

	"github.com/samber/lo"

	"collabboard/internal/model"
	"collabboard/internal/repository"
	pkgErrors "collabboard/pkg/errors"
)

type projectRepo struct{ s *Store }

func (r *projectRepo) Create(_ context.Context, project *model.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.writeErr(); err != nil {
		return err
	}
	r.s.touch(&project.BaseModel)
	r.s.projects[project.ID] = copyProject(project)
	return nil
}

// withCreator 需在持锁时调用
func (r *projectRepo) withCreator(p *model.Project) *model.Project {
	c := copyProject(p)
	c.Creator = copyUser(r.s.users[p.CreatedBy])
	return c
}

func (r *projectRepo) FindByID(_ context.Context, id int64, _ ...repository.QueryOption) (*model.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.projects[id]
	if !ok {
		return nil, pkgErrors.ErrProjectNotFound
	}
	return r.withCreator(p), nil
}

func (r *projectRepo) sorted(filter func(p *model.Project) bool) []*model.Project {
	list := lo.FilterMap(lo.Values(r.s.projects), func(p *model.Project, _ int) (*model.Project, bool) {
		if !filter(p) {
			return nil, false
		}
		return r.withCreator(p), true
	})
	newestFirst(list, func(p *model.Project) time.Time { return p.CreatedAt }, func(p *model.Project) int64 { return p.ID })
	return list
}

func (r *projectRepo) ListByMember(_ context.Context, userID int64) ([]*model.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.sorted(func(p *model.Project) bool { return p.CanAccess(userID) }), nil
}

func (r *projectRepo) List(_ context.Context, page, pageSize int, keyword, status string) ([]*model.Project, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	now := time.Now()
	list := r.sorted(func(p *model.Project) bool {
		if keyword != "" && !containsFold(p.Title, keyword) && !containsFold(p.Description, keyword) {
			return false
		}
		switch status {
		case repository.ProjectStatusActive:
			return !p.Deadline.Before(now)
		case repository.ProjectStatusOverdue:
			return p.Deadline.Before(now)
		}
		return true
	})
	return paginate(list, page, pageSize), int64(len(list)), nil
}

func (r *projectRepo) ListDeadlineBetween(_ context.Context, from, to time.Time) ([]*model.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.sorted(func(p *model.Project) bool {
		return !p.Deadline.Before(from) && !p.Deadline.After(to)
	}), nil
}

func (r *projectRepo) Recent(_ context.Context, limit int) ([]*model.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return paginate(r.sorted(func(*model.Project) bool { return true }), 1, limit), nil
}

func (r *projectRepo) Updates(_ context.Context, id int64, fields map[string]interface{}) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.writeErr(); err != nil {
		return err
	}
	p, ok := r.s.projects[id]
	if !ok {
		return nil
	}
	for k, v := range fields {
		switch k {
		case "title":
			p.Title = v.(string)
		case "description":
			p.Description = v.(string)
		case "deadline":
			p.Deadline = v.(time.Time)
		}
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (r *projectRepo) SaveMembers(_ context.Context, project *model.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.writeErr(); err != nil {
		return err
	}
	if p, ok := r.s.projects[project.ID]; ok {
		p.Members = append(p.Members[:0:0], project.Members...)
		p.UpdatedAt = time.Now()
	}
	return nil
}

func (r *projectRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.writeErr(); err != nil {
		return err
	}
	delete(r.s.projects, id)
	return nil
}

func (r *projectRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.projects)), nil
}

func (r *projectRepo) CountByCreator(_ context.Context, userID int64) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(lo.CountBy(lo.Values(r.s.projects), func(p *model.Project) bool { return p.CreatedBy == userID })), nil
}

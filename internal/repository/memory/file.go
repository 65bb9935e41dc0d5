package memory

import (
	"context"
	"time"

	"github.com/samber/lo"

	"collabboard/internal/model"
	pkgErrors "collabboard/pkg/errors"
)

type fileRepo struct{ s *Store }

func (r *fileRepo) Create(_ context.Context, file *model.File) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.writeErr(); err != nil {
		return err
	}
	r.s.touch(&file.BaseModel)
	c := *file
	c.Uploader = nil
	r.s.files[file.ID] = &c
	return nil
}

func (r *fileRepo) FindByID(_ context.Context, id int64) (*model.File, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	f, ok := r.s.files[id]
	if !ok {
		return nil, pkgErrors.ErrFileNotFound
	}
	c := *f
	return &c, nil
}

func (r *fileRepo) ListByProject(_ context.Context, projectID int64) ([]*model.File, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := lo.FilterMap(lo.Values(r.s.files), func(f *model.File, _ int) (*model.File, bool) {
		if f.ProjectID != projectID {
			return nil, false
		}
		c := *f
		c.Uploader = copyUser(r.s.users[f.UploadedBy])
		return &c, true
	})
	newestFirst(list, func(f *model.File) time.Time { return f.CreatedAt }, func(f *model.File) int64 { return f.ID })
	return list, nil
}

func (r *fileRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.writeErr(); err != nil {
		return err
	}
	delete(r.s.files, id)
	return nil
}

func (r *fileRepo) DeleteByProject(_ context.Context, projectID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.writeErr(); err != nil {
		return err
	}
	for id, f := range r.s.files {
		if f.ProjectID == projectID {
			delete(r.s.files, id)
		}
	}
	return nil
}

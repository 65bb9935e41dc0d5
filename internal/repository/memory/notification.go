package memory

import (
	"context"
	"time"

	"github.com/samber/lo"

	"collabboard/internal/model"
	pkgErrors "collabboard/pkg/errors"
)

type notificationRepo struct{ s *Store }

func (r *notificationRepo) Create(_ context.Context, n *model.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.writeErr(); err != nil {
		return err
	}
	n.ID = r.s.nextID()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	c := *n
	r.s.notifications[n.ID] = &c
	return nil
}

func (r *notificationRepo) FindByID(_ context.Context, id int64) (*model.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n, ok := r.s.notifications[id]
	if !ok {
		return nil, pkgErrors.ErrRecordNotFound
	}
	c := *n
	return &c, nil
}

func (r *notificationRepo) filter(match func(n *model.Notification) bool) []*model.Notification {
	list := lo.FilterMap(lo.Values(r.s.notifications), func(n *model.Notification, _ int) (*model.Notification, bool) {
		if !match(n) {
			return nil, false
		}
		c := *n
		return &c, true
	})
	newestFirst(list, func(n *model.Notification) time.Time { return n.CreatedAt }, func(n *model.Notification) int64 { return n.ID })
	return list
}

func (r *notificationRepo) List(_ context.Context, userID int64, page, pageSize int, unreadOnly bool) ([]*model.Notification, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := r.filter(func(n *model.Notification) bool {
		return n.UserID == userID && (!unreadOnly || !n.IsRead)
	})
	return paginate(list, page, pageSize), int64(len(list)), nil
}

func (r *notificationRepo) CountUnread(_ context.Context, userID int64) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.filter(func(n *model.Notification) bool { return n.UserID == userID && !n.IsRead }))), nil
}

func (r *notificationRepo) MarkRead(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if n, ok := r.s.notifications[id]; ok {
		n.IsRead = true
	}
	return nil
}

func (r *notificationRepo) MarkAllRead(_ context.Context, userID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var changed int64
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			changed++
		}
	}
	return changed, nil
}

func (r *notificationRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.notifications, id)
	return nil
}

func (r *notificationRepo) DeleteByUser(_ context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.writeErr(); err != nil {
		return err
	}
	for id, n := range r.s.notifications {
		if n.UserID == userID {
			delete(r.s.notifications, id)
		}
	}
	return nil
}

func (r *notificationRepo) DeleteReadBefore(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var removed int64
	for id, n := range r.s.notifications {
		if n.IsRead && n.CreatedAt.Before(before) {
			delete(r.s.notifications, id)
			removed++
		}
	}
	return removed, nil
}

func (r *notificationRepo) ExistsSince(_ context.Context, userID int64, typ string, relatedID int64, since time.Time) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return lo.SomeBy(lo.Values(r.s.notifications), func(n *model.Notification) bool {
		return n.UserID == userID && n.Type == typ && n.RelatedID != nil && *n.RelatedID == relatedID && !n.CreatedAt.Before(since)
	}), nil
}

func (r *notificationRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.notifications)), nil
}

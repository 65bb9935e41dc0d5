package memory

import (
	"context"

	"github.com/samber/lo"

	"collabboard/internal/model"
)

type chatRepo struct{ s *Store }

func (r *chatRepo) Create(_ context.Context, msg *model.ChatMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.writeErr(); err != nil {
		return err
	}
	msg.ID = r.s.nextID()
	c := *msg
	c.Sender = nil
	r.s.messages = append(r.s.messages, &c)
	return nil
}

// Recent 消息按写入顺序追加，从尾部向前取即为最近的 limit 条
func (r *chatRepo) Recent(_ context.Context, projectID int64, limit int) ([]*model.ChatMessage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var picked []*model.ChatMessage
	for i := len(r.s.messages) - 1; i >= 0 && len(picked) < limit; i-- {
		m := r.s.messages[i]
		if m.ProjectID != projectID {
			continue
		}
		c := *m
		c.Sender = copyUser(r.s.users[m.SenderID])
		picked = append(picked, &c)
	}
	return lo.Reverse(picked), nil
}

func (r *chatRepo) deleteWhere(match func(m *model.ChatMessage) bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.writeErr(); err != nil {
		return err
	}
	kept := r.s.messages[:0]
	for _, m := range r.s.messages {
		if !match(m) {
			kept = append(kept, m)
		}
	}
	r.s.messages = kept
	return nil
}

func (r *chatRepo) DeleteByProject(_ context.Context, projectID int64) error {
	return r.deleteWhere(func(m *model.ChatMessage) bool { return m.ProjectID == projectID })
}

func (r *chatRepo) DeleteBySender(_ context.Context, userID int64) error {
	return r.deleteWhere(func(m *model.ChatMessage) bool { return m.SenderID == userID })
}

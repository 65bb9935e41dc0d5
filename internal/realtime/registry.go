package realtime

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"collabboard/internal/pkg/logger"
)

// Client 一个已认证的实时连接
type Client interface {
	ID() string
	UserID() int64
	// Send 非阻塞投递，缓冲满时返回 false
	Send(frame []byte) bool
}

// Registry 维护 项目房间 -> 连接 的成员关系
//
// 广播持有写锁，保证同一房间内所有成员看到的事件顺序一致。
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Client
	rooms map[int64]map[string]Client
	// 连接 -> 已加入的房间，断开时据此清理
	joined map[string]map[int64]struct{}
	users  map[int64]map[string]Client

	log *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		conns:  make(map[string]Client),
		rooms:  make(map[int64]map[string]Client),
		joined: make(map[string]map[int64]struct{}),
		users:  make(map[int64]map[string]Client),
		log:    log,
	}
}

// Register 连接建立后登记
func (r *Registry) Register(c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[c.ID()] = c
	if r.users[c.UserID()] == nil {
		r.users[c.UserID()] = make(map[string]Client)
	}
	r.users[c.UserID()][c.ID()] = c
}

// Unregister 断开时移出所有房间，返回离开的房间
func (r *Registry) Unregister(c Client) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	left := r.leaveAllLocked(c.ID())
	delete(r.conns, c.ID())
	if set := r.users[c.UserID()]; set != nil {
		delete(set, c.ID())
		if len(set) == 0 {
			delete(r.users, c.UserID())
		}
	}
	return left
}

// Join 重复加入是幂等的
func (r *Registry) Join(projectID int64, c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.rooms[projectID]
	if room == nil {
		room = make(map[string]Client)
		r.rooms[projectID] = room
	}
	room[c.ID()] = c

	if r.joined[c.ID()] == nil {
		r.joined[c.ID()] = make(map[int64]struct{})
	}
	r.joined[c.ID()][projectID] = struct{}{}
}

// Leave 不在房间内时什么也不做
func (r *Registry) Leave(projectID int64, c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(projectID, c.ID())
}

// LeaveAll 离开该连接加入的全部房间
func (r *Registry) LeaveAll(c Client) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaveAllLocked(c.ID())
}

func (r *Registry) leaveLocked(projectID int64, connID string) {
	if room := r.rooms[projectID]; room != nil {
		delete(room, connID)
		if len(room) == 0 {
			delete(r.rooms, projectID)
		}
	}
	if set := r.joined[connID]; set != nil {
		delete(set, projectID)
		if len(set) == 0 {
			delete(r.joined, connID)
		}
	}
}

func (r *Registry) leaveAllLocked(connID string) []int64 {
	set := r.joined[connID]
	left := make([]int64, 0, len(set))
	for projectID := range set {
		left = append(left, projectID)
	}
	for _, projectID := range left {
		r.leaveLocked(projectID, connID)
	}
	sort.Slice(left, func(i, j int) bool { return left[i] < left[j] })
	return left
}

// Broadcast 编码后发给房间全部成员
func (r *Registry) Broadcast(projectID int64, event string, payload interface{}) error {
	frame, err := Encode(event, payload)
	if err != nil {
		return err
	}
	r.BroadcastRaw(projectID, frame, "")
	return nil
}

// BroadcastExcept 发给房间内除 except 之外的成员
func (r *Registry) BroadcastExcept(projectID int64, event string, payload interface{}, except string) error {
	frame, err := Encode(event, payload)
	if err != nil {
		return err
	}
	r.BroadcastRaw(projectID, frame, except)
	return nil
}

// BroadcastRaw 发送已编码的帧，返回投递成功的连接数
func (r *Registry) BroadcastRaw(projectID int64, frame []byte, except string) int {
	// 写锁：同一时刻只有一个广播在进行，房间内顺序一致
	r.mu.Lock()
	defer r.mu.Unlock()

	delivered := 0
	for id, c := range r.rooms[projectID] {
		if id == except {
			continue
		}
		if c.Send(frame) {
			delivered++
		} else {
			r.log.Warn("实时消息丢弃，发送缓冲已满",
				append(logger.ConnFields(id, c.UserID()), zap.Int64("project_id", projectID))...)
		}
	}
	return delivered
}

// SendToUser 发给某用户的全部在线连接，不要求在房间内
func (r *Registry) SendToUser(userID int64, event string, payload interface{}) error {
	frame, err := Encode(event, payload)
	if err != nil {
		return err
	}
	r.SendRawToUser(userID, frame)
	return nil
}

func (r *Registry) SendRawToUser(userID int64, frame []byte) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	delivered := 0
	for _, c := range r.users[userID] {
		if c.Send(frame) {
			delivered++
		}
	}
	return delivered
}

// Members 房间内的连接ID，已排序
func (r *Registry) Members(projectID int64) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.rooms[projectID]))
	for id := range r.rooms[projectID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Rooms 连接已加入的房间
func (r *Registry) Rooms(c Client) []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]int64, 0, len(r.joined[c.ID()]))
	for projectID := range r.joined[c.ID()] {
		rooms = append(rooms, projectID)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i] < rooms[j] })
	return rooms
}

// InRoom 连接是否在房间内
func (r *Registry) InRoom(projectID int64, c Client) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[projectID][c.ID()]
	return ok
}

// Connections 当前在线连接数
func (r *Registry) Connections() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

package realtime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"collabboard/internal/model"
	"collabboard/pkg/utils"
)

// 客户端 -> 服务端
const (
	EventJoinRoom    = "joinRoom"
	EventLeaveRoom   = "leaveRoom"
	EventSendMessage = "sendMessage"
	EventCreateTask  = "createTask"
	EventUpdateTask  = "updateTask"
	EventDeleteTask  = "deleteTask"
)

// 服务端 -> 客户端
const (
	EventRecentMessages = "recentMessages"
	EventNewMessage     = "newMessage"
	EventTaskCreated    = "taskCreated"
	EventTaskUpdated    = "taskUpdated"
	EventTaskDeleted    = "taskDeleted"
	EventNotification   = "notification"
	EventError          = "error"
)

// Envelope 双向通用的消息外层
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Encode 编码一帧下行消息
func Encode(event string, data interface{}) ([]byte, error) {
	return json.Marshal(outbound{Event: event, Data: data})
}

// Inbound 已校验的上行事件
type Inbound interface {
	EventName() string
}

// JoinRoom data 可以是裸ID，也可以是 {"projectId": ...}
type JoinRoom struct {
	ProjectID ID `json:"projectId" validate:"required"`
}

// LeaveRoom 同 JoinRoom
type LeaveRoom struct {
	ProjectID ID `json:"projectId" validate:"required"`
}

type SendMessage struct {
	ProjectID ID     `json:"projectId" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

type CreateTask struct {
	ProjectID   ID     `json:"projectId" validate:"required"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	AssignedTo  ID     `json:"assignedTo" validate:"required"`
}

// UpdateTask 未传字段保持不变
type UpdateTask struct {
	TaskID         ID      `json:"taskId" validate:"required"`
	NewStatus      *string `json:"newStatus" validate:"omitempty,oneof=todo in-progress done"`
	NewTitle       *string `json:"newTitle" validate:"omitempty,max=200"`
	NewDescription *string `json:"newDescription"`
	NewAssignedTo  *ID     `json:"newAssignedTo"`
}

type DeleteTask struct {
	TaskID ID `json:"taskId" validate:"required"`
}

func (*JoinRoom) EventName() string    { return EventJoinRoom }
func (*LeaveRoom) EventName() string   { return EventLeaveRoom }
func (*SendMessage) EventName() string { return EventSendMessage }
func (*CreateTask) EventName() string  { return EventCreateTask }
func (*UpdateTask) EventName() string  { return EventUpdateTask }
func (*DeleteTask) EventName() string  { return EventDeleteTask }

// decodeRoom 兼容裸ID和对象两种写法
func decodeRoom(data json.RawMessage) (ID, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var v struct {
			ProjectID ID `json:"projectId"`
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return 0, err
		}
		return v.ProjectID, nil
	}
	var id ID
	if len(data) == 0 {
		return 0, nil
	}
	err := json.Unmarshal(data, &id)
	return id, err
}

// Decode 把上行消息解析为具体事件并校验，未知事件和缺字段都返回错误
func Decode(env *Envelope) (Inbound, error) {
	var ev Inbound

	switch env.Event {
	case EventJoinRoom:
		id, err := decodeRoom(env.Data)
		if err != nil {
			return nil, fmt.Errorf("invalid %s payload: %s", env.Event, utils.FormatValidationError(err))
		}
		ev = &JoinRoom{ProjectID: id}
	case EventLeaveRoom:
		id, err := decodeRoom(env.Data)
		if err != nil {
			return nil, fmt.Errorf("invalid %s payload: %s", env.Event, utils.FormatValidationError(err))
		}
		ev = &LeaveRoom{ProjectID: id}
	case EventSendMessage:
		ev = &SendMessage{}
	case EventCreateTask:
		ev = &CreateTask{}
	case EventUpdateTask:
		ev = &UpdateTask{}
	case EventDeleteTask:
		ev = &DeleteTask{}
	case "":
		return nil, fmt.Errorf("missing event name")
	default:
		return nil, fmt.Errorf("unknown event: %s", env.Event)
	}

	if env.Event != EventJoinRoom && env.Event != EventLeaveRoom {
		if len(bytes.TrimSpace(env.Data)) == 0 {
			return nil, fmt.Errorf("invalid %s payload: missing data", env.Event)
		}
		if err := json.Unmarshal(env.Data, ev); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %s", env.Event, utils.FormatValidationError(err))
		}
	}

	if err := utils.ValidateStruct(ev); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", env.Event, err)
	}
	return ev, nil
}

// UserRef 操作人
type UserRef struct {
	ID    int64  `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func userRef(u *model.User) *UserRef {
	if u == nil {
		return nil
	}
	return &UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}

// TaskPayload 推送给房间的任务
type TaskPayload struct {
	ID          int64     `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	AssignedTo  int64     `json:"assignedTo"`
	Assignee    *UserRef  `json:"assignee,omitempty"`
	ProjectID   int64     `json:"projectId"`
	CreatedBy   int64     `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func taskPayload(t *model.Task) *TaskPayload {
	return &TaskPayload{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		AssignedTo:  t.AssignedTo,
		Assignee:    userRef(t.Assignee),
		ProjectID:   t.ProjectID,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type TaskCreatedPayload struct {
	TaskID    int64        `json:"taskId"`
	ProjectID int64        `json:"projectId"`
	NewTask   *TaskPayload `json:"newTask"`
	CreatedBy *UserRef     `json:"createdBy"`
}

type TaskUpdatedPayload struct {
	TaskID      int64        `json:"taskId"`
	ProjectID   int64        `json:"projectId"`
	UpdatedTask *TaskPayload `json:"updatedTask"`
	UpdatedBy   *UserRef     `json:"updatedBy"`
}

type TaskDeletedPayload struct {
	TaskID    int64    `json:"taskId"`
	ProjectID int64    `json:"projectId"`
	DeletedBy *UserRef `json:"deletedBy"`
}

// ErrorPayload 只发给触发错误的连接
type ErrorPayload struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Event   string `json:"event,omitempty"`
}

package constants

// 认证类型
const (
	AuthTypeLDAP  = "ldap"
	AuthTypeLocal = "local"
)

// 系统角色
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// 项目成员角色
const (
	ProjectRoleMember  = "member"
	ProjectRoleManager = "manager"
)

// TaskStatus 任务状态
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in-progress"
	TaskStatusDone       = "done"
)

// TaskStatuses 任务状态(有序)
var TaskStatuses = []string{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}

// NotificationType 通知类型
const (
	NotificationTypeProject = "project"
	NotificationTypeTask    = "task"
	NotificationTypeMessage = "message"
	NotificationTypeFile    = "file"
	NotificationTypeSystem  = "system"
)

// NotificationPriority 通知优先级
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// 聊天历史
const (
	ChatHistoryLimit = 50 // joinRoom 回放的最大条数
)

// JWT 相关
const (
	JWTTypeAccess  = "access"
	JWTTypeRefresh = "refresh"
)

// gin context key
const (
	CtxUser     = "user"
	CtxUserID   = "user_id"
	CtxUserRole = "role"
)

// HTTP Header
const (
	HeaderAuthorization = "Authorization"
	HeaderBearerPrefix  = "Bearer "
)

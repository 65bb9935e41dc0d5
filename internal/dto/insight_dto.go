package dto

import "time"

// CalendarEntry 日历条目
type CalendarEntry struct {
	ID           string    `json:"id"`   // project-1 / task-3
	Type         string    `json:"type"` // project, task
	Title        string    `json:"title"`
	TaskTitle    *string   `json:"task_title"`
	Deadline     time.Time `json:"deadline"`
	ProjectID    int64     `json:"project_id"`
	ProjectTitle string    `json:"project_title"`
	CreatedAt    time.Time `json:"created_at"`
}

// CalendarResponse 日历
type CalendarResponse struct {
	Entries       []*CalendarEntry `json:"entries"`
	TotalProjects int              `json:"total_projects"`
	TotalTasks    int              `json:"total_tasks"`
}

// TaskCounts 按状态统计
type TaskCounts struct {
	Todo       int `json:"todo"`
	InProgress int `json:"in-progress"`
	Done       int `json:"done"`
}

// MemberWorkload 成员工作量
type MemberWorkload struct {
	UserID        int64      `json:"user_id"`
	UserName      string     `json:"user_name"`
	UserEmail     string     `json:"user_email"`
	TotalTasks    int        `json:"total_tasks"`
	TasksByStatus TaskCounts `json:"tasks_by_status"`
}

// ProjectAnalytics 项目分析
type ProjectAnalytics struct {
	ProjectID             int64             `json:"project_id"`
	ProjectTitle          string            `json:"project_title"`
	TotalTasks            int               `json:"total_tasks"`
	TaskCounts            TaskCounts        `json:"task_counts"`
	CompletionPercentage  int               `json:"completion_percentage"`
	WorkloadDistribution  []*MemberWorkload `json:"workload_distribution"`
	AverageTasksPerMember int               `json:"average_tasks_per_member"`
	MostActiveMember      *MemberWorkload   `json:"most_active_member"`
	LeastActiveMember     *MemberWorkload   `json:"least_active_member"`
	CreatedAt             time.Time         `json:"created_at"`
	Deadline              time.Time         `json:"deadline"`
	DaysRemaining         int               `json:"days_remaining"`
	IsOnTrack             bool              `json:"is_on_track"`
	UrgencyLevel          string            `json:"urgency_level"` // overdue, critical, urgent, moderate, low
}

// DashboardStats 管理端统计
type DashboardStats struct {
	TotalUsers         int64            `json:"total_users"`
	TotalProjects      int64            `json:"total_projects"`
	TotalTasks         int64            `json:"total_tasks"`
	TotalNotifications int64            `json:"total_notifications"`
	RecentUsers        int64            `json:"recent_users"`
	UsersByRole        map[string]int64 `json:"users_by_role"`
}

// DashboardResponse 管理端首页
type DashboardResponse struct {
	Stats          DashboardStats     `json:"stats"`
	RecentProjects []*ProjectResponse `json:"recent_projects"`
	RecentTasks    []*TaskResponse    `json:"recent_tasks"`
}

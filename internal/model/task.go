package model

import (
	"collabboard/pkg/constants"
)

const TaskTableName = "tasks"

// Task 任务模型
type Task struct {
	BaseModel
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`
	Status      string `gorm:"size:20;not null;default:todo;index" json:"status"`
	AssignedTo  int64  `gorm:"not null;index" json:"assigned_to"`
	ProjectID   int64  `gorm:"not null;index" json:"project_id"`
	CreatedBy   int64  `gorm:"not null;default:0" json:"created_by"`

	Assignee *User    `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	Project  *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

func (Task) TableName() string {
	return TaskTableName
}

// IsValidTaskStatus 校验任务状态
func IsValidTaskStatus(status string) bool {
	for _, s := range constants.TaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

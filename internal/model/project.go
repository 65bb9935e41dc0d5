package model

import (
	"time"

	"gorm.io/datatypes"

	"collabboard/pkg/constants"
)

const ProjectTableName = "projects"

// ProjectMember 项目成员，按加入顺序存放在 projects.members 中
type ProjectMember struct {
	UserID   int64     `json:"user_id"`
	Role     string    `json:"role"` // member, manager
	JoinedAt time.Time `json:"joined_at"`
}

// Project 项目模型
type Project struct {
	BaseModel
	Title       string                            `gorm:"size:200;not null" json:"title"`
	Description string                            `gorm:"type:text;not null" json:"description"`
	Deadline    time.Time                         `gorm:"not null;index" json:"deadline"`
	CreatedBy   int64                             `gorm:"not null;index" json:"created_by"`
	Members     datatypes.JSONSlice[ProjectMember] `json:"members"`

	Creator *User `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
}

func (Project) TableName() string {
	return ProjectTableName
}

// NewProject 创建项目，创建者以 manager 身份加入成员列表
func NewProject(title, description string, deadline time.Time, creatorID int64) *Project {
	return &Project{
		Title:       title,
		Description: description,
		Deadline:    deadline,
		CreatedBy:   creatorID,
		Members: datatypes.JSONSlice[ProjectMember]{
			{UserID: creatorID, Role: constants.ProjectRoleManager, JoinedAt: time.Now()},
		},
	}
}

// Member 查找成员
func (p *Project) Member(userID int64) (ProjectMember, bool) {
	for _, m := range p.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return ProjectMember{}, false
}

// RoleOf 返回用户在项目中的角色，创建者视为 manager；非成员返回空串
func (p *Project) RoleOf(userID int64) string {
	if p.CreatedBy == userID {
		return constants.ProjectRoleManager
	}
	if m, ok := p.Member(userID); ok {
		return m.Role
	}
	return ""
}

// CanAccess 创建者或任意成员
func (p *Project) CanAccess(userID int64) bool {
	return p.RoleOf(userID) != ""
}

// CanManage 创建者或 manager 成员
func (p *Project) CanManage(userID int64) bool {
	return p.RoleOf(userID) == constants.ProjectRoleManager
}

// AddMember 添加成员，已存在时更新角色；返回是否新增
func (p *Project) AddMember(userID int64, role string) bool {
	for i := range p.Members {
		if p.Members[i].UserID == userID {
			p.Members[i].Role = role
			return false
		}
	}
	p.Members = append(p.Members, ProjectMember{UserID: userID, Role: role, JoinedAt: time.Now()})
	return true
}

// RemoveMember 移除成员，返回是否存在
func (p *Project) RemoveMember(userID int64) bool {
	for i := range p.Members {
		if p.Members[i].UserID == userID {
			p.Members = append(p.Members[:i], p.Members[i+1:]...)
			return true
		}
	}
	return false
}

// MemberIDs 成员用户ID（含创建者，去重，保持顺序）
func (p *Project) MemberIDs() []int64 {
	ids := make([]int64, 0, len(p.Members)+1)
	seen := make(map[int64]struct{}, len(p.Members)+1)
	add := func(id int64) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	add(p.CreatedBy)
	for _, m := range p.Members {
		add(m.UserID)
	}
	return ids
}

package auth

import "strings"

// Role 项目内角色，创建者视为 manager
type Role string

const (
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

// Permission 项目内权限
type Permission string

const (
	PermProjectView   Permission = "project:view"
	PermProjectUpdate Permission = "project:update"
	PermProjectDelete Permission = "project:delete"
	PermProjectMember Permission = "project:member"

	PermTaskCreate Permission = "task:create"
	PermTaskUpdate Permission = "task:update"
	PermTaskDelete Permission = "task:delete"

	PermChatSend Permission = "chat:send"
	PermChatView Permission = "chat:view"

	PermFileUpload Permission = "file:upload"
	PermFileDelete Permission = "file:delete"
)

// RolePermissions 每个角色拥有的权限集合；任务、聊天、文件对所有成员开放
var RolePermissions = map[Role][]Permission{
	RoleManager: {
		"*",
	},
	RoleMember: {
		"project:view",
		"task:*",
		"chat:*",
		"file:*",
	},
}

// Allow 判断一组角色是否包含所需权限，支持通配符
func Allow(roles []string, need Permission) bool {
	for _, p := range collectPermissions(roles) {
		if match(p, need) {
			return true
		}
	}
	return false
}

func collectPermissions(roles []string) []Permission {
	perms := make([]Permission, 0)
	for _, r := range roles {
		if ps, ok := RolePermissions[Role(r)]; ok {
			perms = append(perms, ps...)
		}
	}
	return perms
}

// match 逐段比较，* 匹配剩余所有段
func match(have, need Permission) bool {
	if have == need || have == "*" {
		return true
	}

	allowParts := strings.Split(string(have), ":")
	needParts := strings.Split(string(need), ":")

	for i, part := range allowParts {
		if part == "*" {
			return true
		}
		if i >= len(needParts) || part != needParts[i] {
			return false
		}
	}
	return len(allowParts) == len(needParts)
}

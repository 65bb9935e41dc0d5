package service

import (
	"context"

	"github.com/samber/lo"

	"collabboard/internal/dto"
	"collabboard/internal/model"
	"collabboard/internal/repository"
)

func toUserBrief(u *model.User) *dto.UserBrief {
	if u == nil {
		return nil
	}
	return &dto.UserBrief{ID: u.ID, Name: u.Name, Email: u.Email}
}

func toUserInfo(u *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     u.Role,
		AuthType: u.AuthProvider,
	}
}

func toUserResponse(u *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		AuthProvider: u.AuthProvider,
		LastLoginAt:  u.LastLoginAt,
		CreatedAt:    u.CreatedAt,
	}
}

// toProjectResponse users 为成员用户表，缺失的成员只返回ID
func toProjectResponse(p *model.Project, users map[int64]*model.User) *dto.ProjectResponse {
	creator := p.Creator
	if creator == nil {
		creator = users[p.CreatedBy]
	}

	members := make([]*dto.ProjectMemberResponse, 0, len(p.Members))
	for _, m := range p.Members {
		item := &dto.ProjectMemberResponse{UserID: m.UserID, Role: m.Role, JoinedAt: m.JoinedAt}
		if u, ok := users[m.UserID]; ok {
			item.Name = u.Name
			item.Email = u.Email
		}
		members = append(members, item)
	}

	return &dto.ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Deadline:    p.Deadline,
		CreatedBy:   p.CreatedBy,
		Creator:     toUserBrief(creator),
		Members:     members,
		CreatedAt:   dto.FormatTime(p.CreatedAt),
		UpdatedAt:   dto.FormatTime(p.UpdatedAt),
	}
}

// projectResponses 一次查出所有成员用户再组装
func projectResponses(ctx context.Context, userRepo repository.UserRepository, projects ...*model.Project) ([]*dto.ProjectResponse, error) {
	ids := lo.Uniq(lo.FlatMap(projects, func(p *model.Project, _ int) []int64 { return p.MemberIDs() }))

	users := map[int64]*model.User{}
	if len(ids) > 0 {
		list, err := userRepo.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		users = lo.KeyBy(list, func(u *model.User) int64 { return u.ID })
	}

	return lo.Map(projects, func(p *model.Project, _ int) *dto.ProjectResponse {
		return toProjectResponse(p, users)
	}), nil
}

// ToTaskResponse 实时通道与 REST 共用
func ToTaskResponse(t *model.Task) *dto.TaskResponse {
	resp := &dto.TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		AssignedTo:  t.AssignedTo,
		Assignee:    toUserBrief(t.Assignee),
		ProjectID:   t.ProjectID,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Project != nil {
		resp.ProjectTitle = t.Project.Title
	}
	return resp
}

// ToChatMessageResponse 实时通道与 REST 共用
func ToChatMessageResponse(m *model.ChatMessage) *dto.ChatMessageResponse {
	resp := &dto.ChatMessageResponse{
		ID:        m.ID,
		ProjectID: m.ProjectID,
		SenderID:  m.SenderID,
		Message:   m.Message,
		Timestamp: m.Timestamp,
	}
	if m.Sender != nil {
		resp.Sender = &dto.SenderInfo{ID: m.Sender.ID, Name: m.Sender.Name, Email: m.Sender.Email}
	}
	return resp
}

func toFileResponse(f *model.File) *dto.FileResponse {
	return &dto.FileResponse{
		ID:           f.ID,
		ProjectID:    f.ProjectID,
		UploadedBy:   f.UploadedBy,
		Uploader:     toUserBrief(f.Uploader),
		FileURL:      f.FileURL,
		Filename:     f.Filename,
		OriginalName: f.OriginalName,
		FileSize:     f.FileSize,
		MimeType:     f.MimeType,
		CreatedAt:    f.CreatedAt,
	}
}

// ToNotificationResponse 实时通道与 REST 共用
func ToNotificationResponse(n *model.Notification) *dto.NotificationResponse {
	return &dto.NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Message:   n.Message,
		Type:      n.Type,
		RelatedID: n.RelatedID,
		Priority:  n.Priority,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

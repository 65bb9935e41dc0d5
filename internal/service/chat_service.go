package service

import (
	"context"
	"strings"
	"time"

	"collabboard/internal/dto"
	"collabboard/internal/model"
	"collabboard/internal/pkg/auth"
	"collabboard/internal/repository"
	"collabboard/pkg/constants"
	pkgErrors "collabboard/pkg/errors"
)

// MaxMessageLength 单条聊天消息最大字符数
const MaxMessageLength = 5000

type ChatService interface {
	// Send 校验成员身份后持久化，返回带发送者信息的消息
	Send(ctx context.Context, sender *model.User, projectID int64, text string) (*dto.ChatMessageResponse, error)
	// Recent 最近 limit 条消息，按时间正序
	Recent(ctx context.Context, userID, projectID int64, limit int) ([]*dto.ChatMessageResponse, error)
}

type chatService struct {
	repo  repository.ChatMessageRepository
	authz AuthorizationService
	limit int
}

// NewChatService historyLimit 为回放条数上限，超过 50 按 50 处理
func NewChatService(repo repository.ChatMessageRepository, authz AuthorizationService, historyLimit int) ChatService {
	if historyLimit <= 0 || historyLimit > constants.ChatHistoryLimit {
		historyLimit = constants.ChatHistoryLimit
	}
	return &chatService{repo: repo, authz: authz, limit: historyLimit}
}

func (s *chatService) Send(ctx context.Context, sender *model.User, projectID int64, text string) (*dto.ChatMessageResponse, error) {
	if _, err := s.authz.Require(ctx, sender.ID, projectID, auth.PermChatSend); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, pkgErrors.ErrEmptyMessage
	}
	if len([]rune(text)) > MaxMessageLength {
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "消息内容过长")
	}

	msg := &model.ChatMessage{
		ProjectID: projectID,
		SenderID:  sender.ID,
		Message:   text,
		Timestamp: time.Now(),
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, err
	}
	msg.Sender = sender

	return ToChatMessageResponse(msg), nil
}

func (s *chatService) Recent(ctx context.Context, userID, projectID int64, limit int) ([]*dto.ChatMessageResponse, error) {
	if _, err := s.authz.Require(ctx, userID, projectID, auth.PermChatView); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > s.limit {
		limit = s.limit
	}

	messages, err := s.repo.Recent(ctx, projectID, limit)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.ChatMessageResponse, len(messages))
	for i, m := range messages {
		resp[i] = ToChatMessageResponse(m)
	}
	return resp, nil
}

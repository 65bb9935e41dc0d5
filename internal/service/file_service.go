package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"collabboard/internal/adapter/storage"
	"collabboard/internal/dto"
	"collabboard/internal/model"
	"collabboard/internal/pkg/auth"
	"collabboard/internal/pkg/config"
	"collabboard/internal/repository"
	"collabboard/pkg/constants"
	pkgErrors "collabboard/pkg/errors"
)

// FileUpload 上传的文件
type FileUpload struct {
	Name        string // 原始文件名
	Size        int64
	ContentType string
	Reader      io.Reader
}

type FileService interface {
	Upload(ctx context.Context, actor *model.User, projectID int64, in *FileUpload) (*dto.FileResponse, error)
	List(ctx context.Context, userID, projectID int64) ([]*dto.FileResponse, error)
	// Delete 先删外部存储，再删记录
	Delete(ctx context.Context, userID, fileID int64) error
}

type fileService struct {
	cfg           *config.StorageConfig
	repo          repository.FileRepository
	authz         AuthorizationService
	notifications NotificationService
	blobs         storage.BlobStore
	log           *zap.Logger
}

func NewFileService(
	cfg *config.StorageConfig,
	repo repository.FileRepository,
	authz AuthorizationService,
	notifications NotificationService,
	blobs storage.BlobStore,
	log *zap.Logger,
) FileService {
	if log == nil {
		log = zap.NewNop()
	}
	return &fileService{
		cfg:           cfg,
		repo:          repo,
		authz:         authz,
		notifications: notifications,
		blobs:         blobs,
		log:           log,
	}
}

// checkType 扩展名必须在白名单内，Content-Type 为空时按扩展名推断
func (s *fileService) checkType(name, contentType string) (ext, mimeType string, err error) {
	ext = strings.ToLower(filepath.Ext(name))
	if !lo.Contains(s.cfg.AllowedTypes, strings.TrimPrefix(ext, ".")) {
		return "", "", pkgErrors.New(pkgErrors.CodeBadRequest,
			fmt.Sprintf("不支持的文件类型，仅允许: %s", strings.Join(s.cfg.AllowedTypes, ", ")))
	}

	mimeType = contentType
	if mimeType == "" || mimeType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			mimeType = byExt
		}
	}
	if strings.HasPrefix(mimeType, "text/html") || strings.Contains(mimeType, "javascript") {
		return "", "", pkgErrors.New(pkgErrors.CodeBadRequest, "不支持的文件类型")
	}
	return ext, mimeType, nil
}

func (s *fileService) Upload(ctx context.Context, actor *model.User, projectID int64, in *FileUpload) (*dto.FileResponse, error) {
	project, err := s.authz.Require(ctx, actor.ID, projectID, auth.PermFileUpload)
	if err != nil {
		return nil, err
	}

	if in.Size <= 0 {
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "文件不能为空")
	}
	if s.cfg.MaxFileSize > 0 && in.Size > s.cfg.MaxFileSize {
		return nil, pkgErrors.New(pkgErrors.CodeTooLarge,
			fmt.Sprintf("文件大小超过限制（最大 %d MB）", s.cfg.MaxFileSize>>20))
	}

	ext, mimeType, err := s.checkType(in.Name, in.ContentType)
	if err != nil {
		return nil, err
	}

	storedName := fmt.Sprintf("%d-%s%s", time.Now().Unix(), uuid.NewString(), ext)
	obj, err := s.blobs.Put(ctx, storedName, in.Reader, in.Size, mimeType)
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeStorageError, "文件上传失败", err)
	}

	file := &model.File{
		ProjectID:    project.ID,
		UploadedBy:   actor.ID,
		FileURL:      obj.URL,
		Filename:     storedName,
		OriginalName: filepath.Base(in.Name),
		FileSize:     in.Size,
		MimeType:     mimeType,
		StorageID:    obj.StorageID,
	}
	if err := s.repo.Create(ctx, file); err != nil {
		// 记录写入失败，回滚已上传的文件
		if delErr := s.blobs.Delete(ctx, obj.StorageID); delErr != nil {
			s.log.Warn("回滚上传文件失败", zap.String("storage_id", obj.StorageID), zap.Error(delErr))
		}
		return nil, err
	}
	file.Uploader = actor

	for _, uid := range lo.Without(project.MemberIDs(), actor.ID) {
		s.notifications.Notify(ctx, &model.Notification{
			UserID:    uid,
			Message:   fmt.Sprintf("%s 在项目「%s」上传了文件 %s", actor.Name, project.Title, file.OriginalName),
			Type:      constants.NotificationTypeFile,
			RelatedID: &file.ID,
			Priority:  constants.PriorityLow,
		})
	}

	return toFileResponse(file), nil
}

func (s *fileService) List(ctx context.Context, userID, projectID int64) ([]*dto.FileResponse, error) {
	if _, err := s.authz.RequireAccess(ctx, userID, projectID); err != nil {
		return nil, err
	}

	files, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return lo.Map(files, func(f *model.File, _ int) *dto.FileResponse { return toFileResponse(f) }), nil
}

func (s *fileService) Delete(ctx context.Context, userID, fileID int64) error {
	file, err := s.repo.FindByID(ctx, fileID)
	if err != nil {
		return err
	}
	if _, err := s.authz.Require(ctx, userID, file.ProjectID, auth.PermFileDelete); err != nil {
		return err
	}

	if file.StorageID != "" {
		if err := s.blobs.Delete(ctx, file.StorageID); err != nil {
			return pkgErrors.Wrap(pkgErrors.CodeStorageError, "删除存储文件失败", err)
		}
	}
	return s.repo.Delete(ctx, file.ID)
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"collabboard/internal/model"
	pkgErrors "collabboard/pkg/errors"
)

type FileRepository interface {
	Create(ctx context.Context, file *model.File) error
	FindByID(ctx context.Context, id int64) (*model.File, error)
	ListByProject(ctx context.Context, projectID int64) ([]*model.File, error)
	Delete(ctx context.Context, id int64) error
	DeleteByProject(ctx context.Context, projectID int64) error
}

type fileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(ctx context.Context, file *model.File) error {
	if err := conn(ctx, r.db).Create(file).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "保存文件记录失败", err)
	}
	return nil
}

func (r *fileRepository) FindByID(ctx context.Context, id int64) (*model.File, error) {
	var file model.File
	if err := conn(ctx, r.db).First(&file, id).Error; err != nil {
		return nil, notFoundOr(err, pkgErrors.ErrFileNotFound, "查询文件失败")
	}
	return &file, nil
}

func (r *fileRepository) ListByProject(ctx context.Context, projectID int64) ([]*model.File, error) {
	var files []*model.File
	err := conn(ctx, r.db).Preload("Uploader").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&files).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询文件列表失败", err)
	}
	return files, nil
}

func (r *fileRepository) Delete(ctx context.Context, id int64) error {
	if err := conn(ctx, r.db).Delete(&model.File{}, id).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除文件记录失败", err)
	}
	return nil
}

func (r *fileRepository) DeleteByProject(ctx context.Context, projectID int64) error {
	if err := conn(ctx, r.db).Where("project_id = ?", projectID).Delete(&model.File{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除项目文件失败", err)
	}
	return nil
}

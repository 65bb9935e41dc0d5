package repository

import (
	"context"

	"gorm.io/gorm"

	"collabboard/internal/model"
	pkgErrors "collabboard/pkg/errors"
)

type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, id int64, opts ...QueryOption) (*model.Task, error)
	ListByProject(ctx context.Context, projectID int64) ([]*model.Task, error)
	ListByAssignee(ctx context.Context, userID int64) ([]*model.Task, error)
	List(ctx context.Context, page, pageSize int, keyword, status string) ([]*model.Task, int64, error)
	Recent(ctx context.Context, limit int) ([]*model.Task, error)
	Updates(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	DeleteByProject(ctx context.Context, projectID int64) error
	Count(ctx context.Context) (int64, error)
	CountByAssignee(ctx context.Context, userID int64) (int64, error)
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := conn(ctx, r.db).Create(task).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建任务失败", err)
	}
	return nil
}

func (r *taskRepository) FindByID(ctx context.Context, id int64, opts ...QueryOption) (*model.Task, error) {
	var task model.Task
	if err := applyOptions(conn(ctx, r.db), opts).First(&task, id).Error; err != nil {
		return nil, notFoundOr(err, pkgErrors.ErrTaskNotFound, "查询任务失败")
	}
	return &task, nil
}

func (r *taskRepository) ListByProject(ctx context.Context, projectID int64) ([]*model.Task, error) {
	var tasks []*model.Task
	err := conn(ctx, r.db).Preload("Assignee").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询任务列表失败", err)
	}
	return tasks, nil
}

func (r *taskRepository) ListByAssignee(ctx context.Context, userID int64) ([]*model.Task, error) {
	var tasks []*model.Task
	err := conn(ctx, r.db).Preload("Project").
		Where("assigned_to = ?", userID).
		Find(&tasks).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询任务列表失败", err)
	}
	return tasks, nil
}

func (r *taskRepository) List(ctx context.Context, page, pageSize int, keyword, status string) ([]*model.Task, int64, error) {
	var tasks []*model.Task
	var total int64

	query := conn(ctx, r.db).Model(&model.Task{})

	// 关键字搜索
	if keyword != "" {
		query = query.Where("title LIKE ? OR description LIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	// 统计总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "统计任务数量失败", err)
	}

	// 分页查询
	err := query.Preload("Assignee").Preload("Project").
		Offset(pageOffset(page, pageSize)).Limit(pageSize).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询任务列表失败", err)
	}

	return tasks, total, nil
}

func (r *taskRepository) Recent(ctx context.Context, limit int) ([]*model.Task, error) {
	var tasks []*model.Task
	err := conn(ctx, r.db).Preload("Assignee").Preload("Project").
		Order("created_at DESC").
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询任务列表失败", err)
	}
	return tasks, nil
}

// Updates 按列更新，避免整行覆盖并发写入的其它字段
func (r *taskRepository) Updates(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	if err := conn(ctx, r.db).Model(&model.Task{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新任务失败", err)
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	if err := conn(ctx, r.db).Delete(&model.Task{}, id).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除任务失败", err)
	}
	return nil
}

func (r *taskRepository) DeleteByProject(ctx context.Context, projectID int64) error {
	if err := conn(ctx, r.db).Where("project_id = ?", projectID).Delete(&model.Task{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除项目任务失败", err)
	}
	return nil
}

func (r *taskRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := conn(ctx, r.db).Model(&model.Task{}).Count(&total).Error; err != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "统计任务数量失败", err)
	}
	return total, nil
}

func (r *taskRepository) CountByAssignee(ctx context.Context, userID int64) (int64, error) {
	var total int64
	if err := conn(ctx, r.db).Model(&model.Task{}).Where("assigned_to = ?", userID).Count(&total).Error; err != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "统计任务数量失败", err)
	}
	return total, nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"collabboard/internal/model"
	pkgErrors "collabboard/pkg/errors"
)

// 管理端项目状态筛选
const (
	ProjectStatusActive  = "active"
	ProjectStatusOverdue = "overdue"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	FindByID(ctx context.Context, id int64, opts ...QueryOption) (*model.Project, error)
	ListByMember(ctx context.Context, userID int64) ([]*model.Project, error)
	List(ctx context.Context, page, pageSize int, keyword, status string) ([]*model.Project, int64, error)
	ListDeadlineBetween(ctx context.Context, from, to time.Time) ([]*model.Project, error)
	Recent(ctx context.Context, limit int) ([]*model.Project, error)
	Updates(ctx context.Context, id int64, fields map[string]interface{}) error
	SaveMembers(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
	CountByCreator(ctx context.Context, userID int64) (int64, error)
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	if err := conn(ctx, r.db).Create(project).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建项目失败", err)
	}
	return nil
}

func (r *projectRepository) FindByID(ctx context.Context, id int64, opts ...QueryOption) (*model.Project, error) {
	var project model.Project
	if err := applyOptions(conn(ctx, r.db), opts).First(&project, id).Error; err != nil {
		return nil, notFoundOr(err, pkgErrors.ErrProjectNotFound, "查询项目失败")
	}
	return &project, nil
}

// memberCondition 创建者或成员列表包含该用户，JSON 包含查询按方言区分
func (r *projectRepository) memberCondition(userID int64) (string, []interface{}) {
	if r.db.Dialector.Name() == "postgres" {
		return "created_by = ? OR members @> ?::jsonb",
			[]interface{}{userID, fmt.Sprintf(`[{"user_id":%d}]`, userID)}
	}
	return "created_by = ? OR JSON_CONTAINS(members, JSON_OBJECT('user_id', ?))",
		[]interface{}{userID, userID}
}

func (r *projectRepository) ListByMember(ctx context.Context, userID int64) ([]*model.Project, error) {
	var projects []*model.Project
	cond, args := r.memberCondition(userID)
	if err := conn(ctx, r.db).Where(cond, args...).Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询项目列表失败", err)
	}
	return projects, nil
}

func (r *projectRepository) List(ctx context.Context, page, pageSize int, keyword, status string) ([]*model.Project, int64, error) {
	var projects []*model.Project
	var total int64

	query := conn(ctx, r.db).Model(&model.Project{})

	// 关键字搜索
	if keyword != "" {
		query = query.Where("title LIKE ? OR description LIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}
	switch status {
	case ProjectStatusActive:
		query = query.Where("deadline >= ?", time.Now())
	case ProjectStatusOverdue:
		query = query.Where("deadline < ?", time.Now())
	}

	// 统计总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "统计项目数量失败", err)
	}

	// 分页查询
	err := query.Preload("Creator").
		Offset(pageOffset(page, pageSize)).Limit(pageSize).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询项目列表失败", err)
	}

	return projects, total, nil
}

func (r *projectRepository) ListDeadlineBetween(ctx context.Context, from, to time.Time) ([]*model.Project, error) {
	var projects []*model.Project
	err := conn(ctx, r.db).
		Where("deadline >= ? AND deadline <= ?", from, to).
		Order("deadline ASC").
		Find(&projects).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询临期项目失败", err)
	}
	return projects, nil
}

func (r *projectRepository) Recent(ctx context.Context, limit int) ([]*model.Project, error) {
	var projects []*model.Project
	if err := conn(ctx, r.db).Preload("Creator").Order("created_at DESC").Limit(limit).Find(&projects).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询项目列表失败", err)
	}
	return projects, nil
}

func (r *projectRepository) Updates(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	if err := conn(ctx, r.db).Model(&model.Project{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新项目失败", err)
	}
	return nil
}

func (r *projectRepository) SaveMembers(ctx context.Context, project *model.Project) error {
	err := conn(ctx, r.db).Model(&model.Project{}).
		Where("id = ?", project.ID).
		Update("members", project.Members).Error
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新项目成员失败", err)
	}
	return nil
}

func (r *projectRepository) Delete(ctx context.Context, id int64) error {
	if err := conn(ctx, r.db).Delete(&model.Project{}, id).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除项目失败", err)
	}
	return nil
}

func (r *projectRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := conn(ctx, r.db).Model(&model.Project{}).Count(&total).Error; err != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "统计项目数量失败", err)
	}
	return total, nil
}

func (r *projectRepository) CountByCreator(ctx context.Context, userID int64) (int64, error) {
	var total int64
	if err := conn(ctx, r.db).Model(&model.Project{}).Where("created_by = ?", userID).Count(&total).Error; err != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "统计项目数量失败", err)
	}
	return total, nil
}

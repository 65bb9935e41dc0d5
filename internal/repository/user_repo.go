package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"collabboard/internal/model"
	pkgErrors "collabboard/pkg/errors"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []int64) ([]*model.User, error)
	List(ctx context.Context, page, pageSize int, keyword, role string) ([]*model.User, int64, error)
	UpdateRole(ctx context.Context, id int64, role string) error
	UpdateLastLogin(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context, since *time.Time) (int64, error)
	CountByRole(ctx context.Context) (map[string]int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if err := conn(ctx, r.db).Create(user).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建用户失败", err)
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := conn(ctx, r.db).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, pkgErrors.ErrUserNotFound, "查询用户失败")
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := conn(ctx, r.db).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFoundOr(err, pkgErrors.ErrUserNotFound, "查询用户失败")
	}
	return &user, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []int64) ([]*model.User, error) {
	var users []*model.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询用户失败", err)
	}
	return users, nil
}

func (r *userRepository) List(ctx context.Context, page, pageSize int, keyword, role string) ([]*model.User, int64, error) {
	var users []*model.User
	var total int64

	query := conn(ctx, r.db).Model(&model.User{})

	// 关键字搜索
	if keyword != "" {
		query = query.Where("name LIKE ? OR email LIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}
	if role != "" {
		query = query.Where("role = ?", role)
	}

	// 统计总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "统计用户数量失败", err)
	}

	// 分页查询
	if err := query.Offset(pageOffset(page, pageSize)).Limit(pageSize).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询用户列表失败", err)
	}

	return users, total, nil
}

func (r *userRepository) UpdateRole(ctx context.Context, id int64, role string) error {
	if err := conn(ctx, r.db).Model(&model.User{}).Where("id = ?", id).Update("role", role).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新用户角色失败", err)
	}
	return nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	if err := conn(ctx, r.db).Model(&model.User{}).Where("id = ?", id).Update("last_login_at", time.Now()).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新登录时间失败", err)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	if err := conn(ctx, r.db).Delete(&model.User{}, id).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除用户失败", err)
	}
	return nil
}

func (r *userRepository) Count(ctx context.Context, since *time.Time) (int64, error) {
	var total int64
	query := conn(ctx, r.db).Model(&model.User{})
	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}
	if err := query.Count(&total).Error; err != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "统计用户数量失败", err)
	}
	return total, nil
}

func (r *userRepository) CountByRole(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Role  string
		Total int64
	}
	err := conn(ctx, r.db).Model(&model.User{}).
		Select("role, COUNT(*) AS total").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "统计用户角色失败", err)
	}

	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.Role] = row.Total
	}
	return result, nil
}

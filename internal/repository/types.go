package repository

import (
	"errors"

	"gorm.io/gorm"

	pkgErrors "collabboard/pkg/errors"
)

type QueryOption func(*gorm.DB) *gorm.DB

func WithPreload(association string, conds ...interface{}) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Preload(association, conds...)
	}
}

func applyOptions(db *gorm.DB, opts []QueryOption) *gorm.DB {
	for _, opt := range opts {
		db = opt(db)
	}
	return db
}

// notFoundOr 将 gorm.ErrRecordNotFound 转换为 notFound，其余包装为数据库错误
func notFoundOr(err error, notFound *pkgErrors.AppError, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, message, err)
}

func pageOffset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}

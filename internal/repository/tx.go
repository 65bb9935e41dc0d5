package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	pkgErrors "collabboard/pkg/errors"
)

type txKey struct{}

// Transactor 在同一事务中执行 fn，fn 内的仓储调用通过 ctx 共用事务
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// 已在事务中则直接复用
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	if err != nil {
		var appErr *pkgErrors.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "事务执行失败", err)
	}
	return nil
}

// conn 优先使用 ctx 中的事务
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

package storage

import (
	"context"
	"fmt"
	"io"

	"collabboard/internal/pkg/config"
)

// Object 已存储的文件
type Object struct {
	URL       string // 对外访问地址
	StorageID string // 删除时使用的存储标识
	Size      int64
}

// BlobStore 文件存储适配器接口
type BlobStore interface {
	// Put 保存文件，name 为服务端生成的唯一文件名
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (*Object, error)

	// Delete 删除文件，文件不存在时不报错
	Delete(ctx context.Context, storageID string) error
}

// New 按配置创建存储
func New(cfg *config.StorageConfig) (BlobStore, error) {
	switch cfg.Provider {
	case "", "local":
		return NewLocalStore(cfg.Local.Dir, cfg.Local.BaseURL)
	case "cloudinary":
		return NewCloudinaryStore(cfg.Cloudinary)
	default:
		return nil, fmt.Errorf("不支持的存储类型: %s", cfg.Provider)
	}
}

package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"collabboard/internal/pkg/config"
)

// CloudinaryStore Cloudinary 存储
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStore 创建 Cloudinary 存储
func NewCloudinaryStore(cfg config.CloudinaryConfig) (*CloudinaryStore, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary 配置不完整")
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("初始化cloudinary失败: %w", err)
	}
	return &CloudinaryStore{cld: cld, folder: cfg.Folder}, nil
}

// storageID 格式: <resource_type>:<public_id>，删除时需要资源类型
func storageID(resourceType, publicID string) string {
	return resourceType + ":" + publicID
}

func parseStorageID(id string) (resourceType, publicID string) {
	if i := strings.Index(id, ":"); i > 0 {
		return id[:i], id[i+1:]
	}
	return "image", id
}

func (s *CloudinaryStore) Put(ctx context.Context, name string, r io.Reader, _ int64, _ string) (*Object, error) {
	publicID := strings.TrimSuffix(name, path.Ext(name))

	result, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     publicID,
		ResourceType: "auto",
	})
	if err != nil {
		return nil, fmt.Errorf("上传cloudinary失败: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("上传cloudinary失败: %s", result.Error.Message)
	}

	return &Object{
		URL:       result.SecureURL,
		StorageID: storageID(result.ResourceType, result.PublicID),
		Size:      int64(result.Bytes),
	}, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, id string) error {
	resourceType, publicID := parseStorageID(id)

	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("删除cloudinary文件失败: %w", err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("删除cloudinary文件失败: %s", result.Error.Message)
	}
	// not found 视为已删除
	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("删除cloudinary文件失败: %s", result.Result)
	}
	return nil
}

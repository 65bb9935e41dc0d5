package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore 本地磁盘存储，文件通过静态路由对外提供
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore 创建本地存储，目录不存在时自动创建
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建存储目录失败: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// cleanName 只保留文件名部分，防止路径穿越
func cleanName(name string) (string, error) {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." || base == "" {
		return "", fmt.Errorf("非法文件名: %q", name)
	}
	return base, nil
}

func (s *LocalStore) Put(_ context.Context, name string, r io.Reader, _ int64, _ string) (*Object, error) {
	base, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	target := filepath.Join(s.dir, base)
	f, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("创建文件失败: %w", err)
	}

	written, err := io.Copy(f, r)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(target)
		return nil, fmt.Errorf("写入文件失败: %w", err)
	}

	return &Object{
		URL:       path.Join(s.baseURL, base),
		StorageID: base,
		Size:      written,
	}, nil
}

func (s *LocalStore) Delete(_ context.Context, storageID string) error {
	base, err := cleanName(storageID)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, base)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("删除文件失败: %w", err)
	}
	return nil
}

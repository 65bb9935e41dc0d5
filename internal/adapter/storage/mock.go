package storage

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

// MockStore 模拟存储，供服务层测试使用
type MockStore struct {
	mock.Mock
}

func NewMockStore() *MockStore {
	return &MockStore{}
}

func (m *MockStore) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (*Object, error) {
	_, _ = io.Copy(io.Discard, r)
	args := m.Called(ctx, name, size, contentType)
	obj, _ := args.Get(0).(*Object)
	return obj, args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, storageID string) error {
	args := m.Called(ctx, storageID)
	return args.Error(0)
}

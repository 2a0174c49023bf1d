package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockObjectStorage is a mock implementation of the objectstore.ObjectStorageClient interface
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Connect(endpoint, accessKeyID, secretAccessKey string, useSSL bool) error {
	args := m.Called(endpoint, accessKeyID, secretAccessKey, useSSL)
	return args.Error(0)
}

func (m *MockObjectStorage) EnsureBucket(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}

func (m *MockObjectStorage) UploadFile(ctx context.Context, bucketName, objectName, filePath string, metadata map[string]string) error {
	args := m.Called(ctx, bucketName, objectName, filePath, metadata)
	return args.Error(0)
}

package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"invoiceguard/internal/service"
)

// MockFileService is a mock implementation of service.FileService.
type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Store(ctx context.Context, input service.FileUploadInput) (*service.StoredFile, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StoredFile), args.Error(1)
}

func (m *MockFileService) Fetch(ctx context.Context, fileID uuid.UUID) (*service.StoredFile, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StoredFile), args.Error(1)
}

func (m *MockFileService) GetDownloadURL(ctx context.Context, fileID uuid.UUID) (string, error) {
	args := m.Called(ctx, fileID)
	return args.String(0), args.Error(1)
}

package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"invoiceguard/internal/domain"
	"invoiceguard/internal/service"
	"invoiceguard/internal/validator"
)

// MockInvoiceService is a mock implementation of service.InvoiceService.
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) Upload(ctx context.Context, input service.UploadInput) (*domain.Invoice, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Validate(ctx context.Context, input service.ValidateInput) (*validator.Result, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*validator.Result), args.Error(1)
}

func (m *MockInvoiceService) ValidateBatch(ctx context.Context, input service.BatchValidateInput) ([]*validator.Result, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*validator.Result), args.Error(1)
}

func (m *MockInvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) List(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Invoice), args.Int(1), args.Error(2)
}

func (m *MockInvoiceService) Statistics(ctx context.Context, limit int) (*validator.Statistics, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*validator.Statistics), args.Error(1)
}

func (m *MockInvoiceService) Export(ctx context.Context, w io.Writer, format service.ExportFormat, filter domain.InvoiceFilter) error {
	args := m.Called(ctx, w, format, filter)
	return args.Error(0)
}

func (m *MockInvoiceService) Rules() []validator.Rule {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]validator.Rule)
}

func (m *MockInvoiceService) ProcessQueued(ctx context.Context, inv *domain.Invoice, maxAttempts int) {
	m.Called(ctx, inv, maxAttempts)
}

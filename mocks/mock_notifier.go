package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invoiceguard/internal/domain"
)

// MockNotifier is a mock implementation of port.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyRejected(ctx context.Context, inv *domain.Invoice, summary string) error {
	args := m.Called(ctx, inv, summary)
	return args.Error(0)
}

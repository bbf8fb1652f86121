package port

import (
	"context"

	"invoiceguard/internal/domain"
)

// Notifier tells reviewers about invoices that need attention.
type Notifier interface {
	NotifyRejected(ctx context.Context, inv *domain.Invoice, summary string) error
}

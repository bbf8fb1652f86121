package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"invoiceguard/internal/domain"
)

// FileMetaRepository defines the contract for file metadata persistence.
type FileMetaRepository interface {
	Create(ctx context.Context, meta *domain.FileMeta) error
	GetByID(ctx context.Context, fileID uuid.UUID) (*domain.FileMeta, error)
	UpdateStatus(ctx context.Context, fileID uuid.UUID, status domain.FileStatus) error
}

// InvoiceRepository defines the contract for invoice persistence.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, int, error)
	// UpdateResult stores the extraction and validation outcome of an invoice.
	UpdateResult(ctx context.Context, inv *domain.Invoice) error
	// ClaimQueued atomically moves up to limit due queued invoices to processing.
	ClaimQueued(ctx context.Context, limit int) ([]domain.Invoice, error)
	// Requeue puts an invoice back in the queue until retryAfter.
	Requeue(ctx context.Context, id uuid.UUID, attempts int, retryAfter time.Time) error
	// ListValidationResults returns the stored results of the most recent validated invoices.
	ListValidationResults(ctx context.Context, limit int) ([][]byte, error)
	Ping(ctx context.Context) error
}

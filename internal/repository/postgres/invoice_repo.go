package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"invoiceguard/internal/domain"
	"invoiceguard/internal/port"
)

type invoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

// jsonArg sends a JSON document as text so the driver does not encode it as bytea.
func jsonArg(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}

func (r *invoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	query := `INSERT INTO invoices
		(id, file_id, correlation_id, status, parser_model, extracted_data, validation_result,
		 field_statuses, is_valid, validation_score, error_count, warning_count,
		 processing_error, parse_attempts, retry_after, validated_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err := r.db.ExecContext(ctx, query,
		inv.ID, inv.FileID, inv.CorrelationID, inv.Status, inv.ParserModel,
		jsonArg(inv.ExtractedData), jsonArg(inv.ValidationResult), jsonArg(inv.FieldStatuses),
		inv.IsValid, inv.ValidationScore, inv.ErrorCount, inv.WarningCount,
		inv.ProcessingError, inv.ParseAttempts, inv.RetryAfter, inv.ValidatedAt,
		inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Create: %w", err)
	}
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.GetContext(ctx, &inv, "SELECT * FROM invoices WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepo) List(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, int, error) {
	where := "WHERE ($1 = '' OR status = $1)"
	status := string(filter.Status)

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM invoices "+where, status); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List count: %w", err)
	}

	invoices := []domain.Invoice{}
	err := r.db.SelectContext(ctx, &invoices,
		"SELECT * FROM invoices "+where+" ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		status, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List: %w", err)
	}
	return invoices, total, nil
}

func (r *invoiceRepo) UpdateResult(ctx context.Context, inv *domain.Invoice) error {
	inv.UpdatedAt = time.Now().UTC()

	query := `UPDATE invoices SET
		status = $1, parser_model = $2, extracted_data = $3, validation_result = $4,
		field_statuses = $5, is_valid = $6, validation_score = $7, error_count = $8,
		warning_count = $9, processing_error = $10, parse_attempts = $11,
		retry_after = $12, validated_at = $13, updated_at = $14
		WHERE id = $15`

	result, err := r.db.ExecContext(ctx, query,
		inv.Status, inv.ParserModel, jsonArg(inv.ExtractedData), jsonArg(inv.ValidationResult),
		jsonArg(inv.FieldStatuses), inv.IsValid, inv.ValidationScore, inv.ErrorCount,
		inv.WarningCount, inv.ProcessingError, inv.ParseAttempts,
		inv.RetryAfter, inv.ValidatedAt, inv.UpdatedAt, inv.ID)
	if err != nil {
		return fmt.Errorf("invoiceRepo.UpdateResult: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClaimQueued uses FOR UPDATE SKIP LOCKED so concurrent workers never claim
// the same invoice.
func (r *invoiceRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.Invoice, error) {
	query := `UPDATE invoices SET status = $1, updated_at = $2
		WHERE id IN (
			SELECT id FROM invoices
			WHERE status = $3 AND (retry_after IS NULL OR retry_after <= $2)
			ORDER BY created_at
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`

	invoices := []domain.Invoice{}
	err := r.db.SelectContext(ctx, &invoices, query,
		domain.InvoiceStatusProcessing, time.Now().UTC(), domain.InvoiceStatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.ClaimQueued: %w", err)
	}
	return invoices, nil
}

func (r *invoiceRepo) Requeue(ctx context.Context, id uuid.UUID, attempts int, retryAfter time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET status = $1, parse_attempts = $2, retry_after = $3, updated_at = $4
		 WHERE id = $5`,
		domain.InvoiceStatusQueued, attempts, retryAfter.UTC(), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Requeue: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *invoiceRepo) ListValidationResults(ctx context.Context, limit int) ([][]byte, error) {
	var rows []string
	err := r.db.SelectContext(ctx, &rows,
		`SELECT validation_result::text FROM invoices
		 WHERE validated_at IS NOT NULL
		 ORDER BY validated_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.ListValidationResults: %w", err)
	}
	out := make([][]byte, len(rows))
	for i, row := range rows {
		out[i] = []byte(row)
	}
	return out, nil
}

func (r *invoiceRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

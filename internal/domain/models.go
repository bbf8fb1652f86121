package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// FileMeta stores metadata about an uploaded file.
type FileMeta struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	UploadedBy   string     `db:"uploaded_by" json:"uploaded_by"`
	FileName     string     `db:"file_name" json:"file_name"`
	OriginalName string     `db:"original_name" json:"original_name"`
	FileType     FileType   `db:"file_type" json:"file_type"`
	FileSize     int64      `db:"file_size" json:"file_size"`
	S3Bucket     string     `db:"s3_bucket" json:"s3_bucket"`
	S3Key        string     `db:"s3_key" json:"s3_key"`
	ContentType  string     `db:"content_type" json:"content_type"`
	Status       FileStatus `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Invoice is an uploaded invoice with its extracted fields and validation verdict.
type Invoice struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	FileID           uuid.UUID       `db:"file_id" json:"file_id"`
	CorrelationID    string          `db:"correlation_id" json:"correlation_id"`
	Status           InvoiceStatus   `db:"status" json:"status"`
	ParserModel      string          `db:"parser_model" json:"parser_model"`
	ExtractedData    json.RawMessage `db:"extracted_data" json:"extracted_data"`
	ValidationResult json.RawMessage `db:"validation_result" json:"validation_result"`
	FieldStatuses    json.RawMessage `db:"field_statuses" json:"field_statuses"`
	IsValid          bool            `db:"is_valid" json:"is_valid"`
	ValidationScore  int             `db:"validation_score" json:"validation_score"`
	ErrorCount       int             `db:"error_count" json:"error_count"`
	WarningCount     int             `db:"warning_count" json:"warning_count"`
	ProcessingError  string          `db:"processing_error" json:"processing_error"`
	ParseAttempts    int             `db:"parse_attempts" json:"parse_attempts"`
	RetryAfter       *time.Time      `db:"retry_after" json:"retry_after,omitempty"`
	ValidatedAt      *time.Time      `db:"validated_at" json:"validated_at"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// InvoiceFilter narrows a List query. Zero values match everything.
type InvoiceFilter struct {
	Status InvoiceStatus
	Offset int
	Limit  int
}

package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrInvalidInvoiceData  = errors.New("invoice data is not a JSON object")
	ErrInvalidConfig       = errors.New("invalid validation config")
	ErrBatchTooLarge       = errors.New("batch exceeds maximum allowed size")
	ErrExtractionFailed    = errors.New("invoice extraction failed")
	ErrRateLimited         = errors.New("too many requests")
)

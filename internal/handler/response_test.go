package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"invoiceguard/internal/domain"
	"invoiceguard/internal/handler"
	"invoiceguard/internal/validator"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{domain.ErrUploadFailed, http.StatusInternalServerError, "UPLOAD_FAILED"},
		{fmt.Errorf("wrapped: %w", domain.ErrInvalidInvoiceData), http.StatusBadRequest, "INVALID_INVOICE_DATA"},
		{domain.ErrInvalidConfig, http.StatusBadRequest, "INVALID_CONFIG"},
		{domain.ErrBatchTooLarge, http.StatusRequestEntityTooLarge, "BATCH_TOO_LARGE"},
		{domain.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
		{&validator.ProcessingError{Err: errors.New("x")}, http.StatusInternalServerError, "VALIDATION_PROCESSING_ERROR"},
		{errors.New("something else"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code, _ := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceguard/internal/validator"
)

func TestComputeFieldStatuses(t *testing.T) {
	data := &validator.InvoiceData{
		InvoiceNumber: validator.String("INV 1"),
		TotalAmount:   validator.Float(-5),
		Currency:      validator.String("EUR"),
	}
	res := &validator.Result{
		Errors: []validator.ValidationError{
			{Field: validator.FieldTotalAmount, Code: validator.CodeNegativeAmount, Message: "negative"},
			{Field: validator.FieldDueDate, Code: validator.CodeRequiredFieldMissing, Message: "missing"},
			{Code: validator.CodeValidationError, Message: "no field"},
		},
		Warnings: []validator.ValidationWarning{
			{Field: validator.FieldInvoiceNumber, Code: validator.CodeUnusualFormat, Message: "odd"},
			{Field: validator.FieldTotalAmount, Code: validator.CodeAmountVeryLarge, Message: "large"},
		},
	}

	statuses := validator.ComputeFieldStatuses(res, data)

	require.Len(t, statuses, 4)
	assert.Equal(t, validator.FieldStatusInvalid, statuses[validator.FieldTotalAmount].Status)
	assert.Equal(t, []string{"negative", "large"}, statuses[validator.FieldTotalAmount].Messages)
	assert.Equal(t, validator.FieldStatusInvalid, statuses[validator.FieldDueDate].Status)
	assert.Equal(t, validator.FieldStatusUnsure, statuses[validator.FieldInvoiceNumber].Status)
	assert.Equal(t, validator.FieldStatusValid, statuses[validator.FieldCurrency].Status)
	assert.Empty(t, statuses[validator.FieldCurrency].Messages)
}

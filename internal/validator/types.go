package validator

// Severity classifies a failed check.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Impact grades how much a warning should worry a reviewer.
type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

// Field names as they appear in required_fields and in error entries.
const (
	FieldInvoiceNumber = "invoice_number"
	FieldInvoiceDate   = "invoice_date"
	FieldDueDate       = "due_date"
	FieldTotalAmount   = "total_amount"
	FieldTaxAmount     = "tax_amount"
	FieldSupplierName  = "supplier_name"
	FieldBillTo        = "bill_to"
	FieldCurrency      = "currency"
	FieldLineItems     = "line_items"
)

// Error and warning codes.
const (
	CodeRequiredFieldMissing   = "REQUIRED_FIELD_MISSING"
	CodeInvalidFieldType       = "INVALID_FIELD_TYPE"
	CodeInvalidFormat          = "INVALID_FORMAT"
	CodeInvalidLength          = "INVALID_LENGTH"
	CodeUnusualFormat          = "UNUSUAL_FORMAT"
	CodeInvalidCurrencyFormat  = "INVALID_CURRENCY_FORMAT"
	CodeInvalidDateFormat      = "INVALID_DATE_FORMAT"
	CodeFutureInvoiceDate      = "FUTURE_INVOICE_DATE"
	CodeOldInvoiceDate         = "OLD_INVOICE_DATE"
	CodeNegativeAmount         = "NEGATIVE_AMOUNT"
	CodeAmountTooSmall         = "AMOUNT_TOO_SMALL"
	CodeAmountVeryLarge        = "AMOUNT_VERY_LARGE"
	CodeDueDateBeforeInvoice   = "DUE_DATE_BEFORE_INVOICE_DATE"
	CodeUnusualPaymentTerms    = "UNUSUAL_PAYMENT_TERMS"
	CodeUnusualTaxRate         = "UNUSUAL_TAX_RATE"
	CodeLineItemsTotalMismatch = "LINE_ITEMS_TOTAL_MISMATCH"
	CodeLineItemPriceMismatch  = "LINE_ITEM_PRICE_MISMATCH"
	CodeValidationError        = "VALIDATION_ERROR"
)

// LineItem is a single row on the invoice.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

// InvoiceData is the extracted field set handed to the validator.
// Nil pointers mean the field was not extracted.
type InvoiceData struct {
	InvoiceNumber *string    `json:"invoice_number,omitempty"`
	InvoiceDate   *string    `json:"invoice_date,omitempty"`
	DueDate       *string    `json:"due_date,omitempty"`
	TotalAmount   *float64   `json:"total_amount,omitempty"`
	TaxAmount     *float64   `json:"tax_amount,omitempty"`
	SupplierName  *string    `json:"supplier_name,omitempty"`
	BillTo        *string    `json:"bill_to,omitempty"`
	Currency      *string    `json:"currency,omitempty"`
	LineItems     []LineItem `json:"line_items,omitempty"`

	// TypeMismatches holds field paths whose raw value had the wrong type.
	TypeMismatches []string `json:"-"`
}

// String returns a pointer to s, for building InvoiceData literals.
func String(s string) *string { return &s }

// Float returns a pointer to f, for building InvoiceData literals.
func Float(f float64) *float64 { return &f }

// ValidationError is a disqualifying defect.
type ValidationError struct {
	Field    string   `json:"field"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// ValidationWarning is an advisory, non-blocking concern.
type ValidationWarning struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Impact  Impact `json:"impact"`
}

// Metadata records which checks ran and which corrections were offered.
type Metadata struct {
	RulesApplied        []string `json:"rules_applied"`
	BusinessLogicChecks []string `json:"business_logic_checks"`
	DataCorrections     []string `json:"data_corrections"`
}

// Result is the verdict for one invoice.
type Result struct {
	IsValid         bool                `json:"is_valid"`
	Errors          []ValidationError   `json:"errors"`
	Warnings        []ValidationWarning `json:"warnings"`
	ValidationScore int                 `json:"validation_score"`
	CorrelationID   string              `json:"correlation_id"`
	CorrectedData   *InvoiceData        `json:"corrected_data,omitempty"`
	Metadata        Metadata            `json:"metadata"`
}

// ErrorCodes returns the codes of all errors in order.
func (r *Result) ErrorCodes() []string {
	codes := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		codes = append(codes, e.Code)
	}
	return codes
}

// WarningCodes returns the codes of all warnings in order.
func (r *Result) WarningCodes() []string {
	codes := make([]string, 0, len(r.Warnings))
	for _, w := range r.Warnings {
		codes = append(codes, w.Code)
	}
	return codes
}

func newError(field, code, msg string) ValidationError {
	return ValidationError{Field: field, Code: code, Message: msg, Severity: SeverityError}
}

func newWarning(field, code, msg string, impact Impact) ValidationWarning {
	return ValidationWarning{Field: field, Code: code, Message: msg, Impact: impact}
}

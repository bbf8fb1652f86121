package handler

import (
	"encoding/json"

	"invoiceguard/internal/domain"
	"invoiceguard/internal/validator"
)

// Swagger type definitions for API documentation.
// The request types are also bound directly by the handlers.

// --- Request Types ---

// ValidateRequest represents the validate-only request body.
type ValidateRequest struct {
	// Data is the extracted invoice. Unknown keys are ignored.
	Data json.RawMessage `json:"data" binding:"required" swaggertype:"object"`
	// Config overrides individual validation defaults, e.g. {"max_amount": 5000}.
	Config        json.RawMessage `json:"config" swaggertype:"object"`
	BusinessRules []string        `json:"business_rules" example:"supplier_required,tax_declared"`
}

// BatchValidateRequest represents the batch validate request body.
type BatchValidateRequest struct {
	Invoices      []json.RawMessage `json:"invoices" binding:"required" swaggertype:"array,object"`
	Config        json.RawMessage   `json:"config" swaggertype:"object"`
	BusinessRules []string          `json:"business_rules" example:"line_items_required"`
}

// --- Response Types ---

// Response is the success envelope as documented in swagger.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody is the error envelope as documented in swagger.
type ErrorResponseBody struct {
	Success bool        `json:"success" example:"false"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"database not reachable"`
}

// BatchValidateResponse carries per-invoice results and their aggregate.
type BatchValidateResponse struct {
	Results    []*validator.Result   `json:"results"`
	Statistics *validator.Statistics `json:"statistics"`
}

// InvoiceDownload represents an invoice with a presigned URL for its file.
type InvoiceDownload struct {
	Invoice     domain.Invoice `json:"invoice"`
	DownloadURL string         `json:"download_url" example:"https://s3.amazonaws.com/invoiceguard-uploads/...?X-Amz-Signature=..."`
}

// RuleInfo describes one validation rule.
type RuleInfo struct {
	Name        string `json:"name" example:"tax_declared"`
	Description string `json:"description" example:"Tax amount is present"`
	Severity    string `json:"severity" example:"warning"`
}

// RulesResponse lists built-in checks and named business rules.
type RulesResponse struct {
	Builtin  []RuleInfo `json:"builtin"`
	Business []RuleInfo `json:"business"`
}

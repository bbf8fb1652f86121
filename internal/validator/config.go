package validator

import (
	"fmt"
	"strings"
)

// Config tunes a validation run. Start from DefaultConfig and override.
type Config struct {
	RequiredFields          []string `json:"required_fields" mapstructure:"required_fields"`
	MinAmount               float64  `json:"min_amount" mapstructure:"min_amount"`
	MaxAmount               float64  `json:"max_amount" mapstructure:"max_amount"`
	AllowFutureInvoiceDates bool     `json:"allow_future_invoice_dates" mapstructure:"allow_future_invoice_dates"`
	// MaxInvoiceAgeDays <= 0 leaves invoice age unbounded.
	MaxInvoiceAgeDays int `json:"max_invoice_age_days" mapstructure:"max_invoice_age_days"`
	// StrictMode is carried for callers that want to treat warnings as blocking.
	// It never changes Result.IsValid.
	StrictMode           bool    `json:"strict_mode" mapstructure:"strict_mode"`
	EnableAutoCorrection bool    `json:"enable_auto_correction" mapstructure:"enable_auto_correction"`
	PaymentTermsMaxDays  int     `json:"payment_terms_max_days" mapstructure:"payment_terms_max_days"`
	MaxTaxRatio          float64 `json:"max_tax_ratio" mapstructure:"max_tax_ratio"`

	// BusinessRules run after the built-in checks, in order.
	BusinessRules []Rule `json:"-" mapstructure:"-"`
}

// DefaultRequiredFields is the required field set used when none is configured.
var DefaultRequiredFields = []string{FieldInvoiceNumber, FieldTotalAmount, FieldDueDate}

// knownFields lists every field name accepted in RequiredFields.
var knownFields = map[string]bool{
	FieldInvoiceNumber: true,
	FieldInvoiceDate:   true,
	FieldDueDate:       true,
	FieldTotalAmount:   true,
	FieldTaxAmount:     true,
	FieldSupplierName:  true,
	FieldBillTo:        true,
	FieldCurrency:      true,
	FieldLineItems:     true,
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		RequiredFields:          append([]string(nil), DefaultRequiredFields...),
		MinAmount:               0.01,
		MaxAmount:               1_000_000,
		AllowFutureInvoiceDates: true,
		PaymentTermsMaxDays:     90,
		MaxTaxRatio:             0.5,
	}
}

// Clone returns a copy whose slices can be modified independently.
func (c Config) Clone() Config {
	out := c
	out.RequiredFields = append([]string(nil), c.RequiredFields...)
	out.BusinessRules = append([]Rule(nil), c.BusinessRules...)
	return out
}

// Check reports configuration mistakes a caller should fix.
func (c *Config) Check() error {
	for _, f := range c.RequiredFields {
		if !knownFields[f] {
			return fmt.Errorf("unknown required field %q (known: %s)", f, strings.Join(KnownFields(), ", "))
		}
	}
	if c.MinAmount < 0 {
		return fmt.Errorf("min_amount must not be negative")
	}
	if c.MaxAmount > 0 && c.MaxAmount < c.MinAmount {
		return fmt.Errorf("max_amount (%.2f) is below min_amount (%.2f)", c.MaxAmount, c.MinAmount)
	}
	if c.MaxTaxRatio < 0 {
		return fmt.Errorf("max_tax_ratio must not be negative")
	}
	return nil
}

// KnownFields returns the accepted required-field names in canonical order.
func KnownFields() []string {
	return []string{
		FieldInvoiceNumber, FieldInvoiceDate, FieldDueDate,
		FieldTotalAmount, FieldTaxAmount, FieldSupplierName,
		FieldBillTo, FieldCurrency, FieldLineItems,
	}
}

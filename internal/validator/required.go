package validator

import (
	"fmt"
	"strings"
)

func checkRequiredFields(in *RuleInput) *Outcome {
	out := &Outcome{}
	for _, field := range in.Config.RequiredFields {
		if !fieldPresent(in.Data, field) {
			out.addError(field, CodeRequiredFieldMissing, fmt.Sprintf("%s is required", field))
		}
	}
	return out
}

// fieldPresent reports whether a field holds a non-null, non-empty value.
// Unknown field names are never present.
func fieldPresent(d *InvoiceData, field string) bool {
	switch field {
	case FieldInvoiceNumber:
		return nonEmpty(d.InvoiceNumber)
	case FieldInvoiceDate:
		return nonEmpty(d.InvoiceDate)
	case FieldDueDate:
		return nonEmpty(d.DueDate)
	case FieldTotalAmount:
		return d.TotalAmount != nil
	case FieldTaxAmount:
		return d.TaxAmount != nil
	case FieldSupplierName:
		return nonEmpty(d.SupplierName)
	case FieldBillTo:
		return nonEmpty(d.BillTo)
	case FieldCurrency:
		return nonEmpty(d.Currency)
	case FieldLineItems:
		return len(d.LineItems) > 0
	default:
		return false
	}
}

func nonEmpty(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxInvoiceNumberLength = 50

var (
	invoiceNumberPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	currencyPattern      = regexp.MustCompile(`^[A-Z]{3}$`)
)

func checkFieldFormats(in *RuleInput) *Outcome {
	out := &Outcome{}
	d := in.Data

	for _, field := range d.TypeMismatches {
		out.addError(field, CodeInvalidFieldType, fmt.Sprintf("%s has an unexpected type", field))
	}

	if d.InvoiceNumber != nil {
		num := strings.TrimSpace(*d.InvoiceNumber)
		switch {
		case num == "":
			out.addError(FieldInvoiceNumber, CodeInvalidFormat, "invoice number is empty")
		default:
			if n := utf8.RuneCountInString(num); n > maxInvoiceNumberLength {
				out.addError(FieldInvoiceNumber, CodeInvalidLength,
					fmt.Sprintf("invoice number is %d characters, maximum is %d", n, maxInvoiceNumberLength))
			}
			if !invoiceNumberPattern.MatchString(num) {
				out.addWarning(FieldInvoiceNumber, CodeUnusualFormat,
					fmt.Sprintf("invoice number %q contains characters other than letters, digits and dashes", num), ImpactLow)
			}
		}
	}

	if d.Currency != nil && !currencyPattern.MatchString(*d.Currency) {
		out.addWarning(FieldCurrency, CodeInvalidCurrencyFormat,
			fmt.Sprintf("currency %q is not a 3-letter uppercase code", *d.Currency), ImpactLow)
	}

	return out
}

package validator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// amountTolerance absorbs float noise when comparing money values.
var amountTolerance = decimal.NewFromFloat(0.01)

func checkChronology(in *RuleInput) *Outcome {
	out := &Outcome{}
	invDate, okInv := dateValue(in.Data.InvoiceDate)
	dueDate, okDue := dateValue(in.Data.DueDate)
	if okInv && okDue && dueDate.Before(invDate) {
		out.addWarning(FieldDueDate, CodeDueDateBeforeInvoice,
			fmt.Sprintf("due date %s is before invoice date %s", dueDate.Format(dateLayout), invDate.Format(dateLayout)), ImpactMedium)
	}
	return out
}

func checkPaymentTerms(in *RuleInput) *Outcome {
	out := &Outcome{}
	invDate, okInv := dateValue(in.Data.InvoiceDate)
	dueDate, okDue := dateValue(in.Data.DueDate)
	if !okInv || !okDue {
		return out
	}
	limit := in.Config.PaymentTermsMaxDays
	if limit <= 0 {
		return out
	}
	if days := daysBetween(invDate, dueDate); days > limit {
		out.addWarning(FieldDueDate, CodeUnusualPaymentTerms,
			fmt.Sprintf("payment terms of %d days exceed %d days", days, limit), ImpactLow)
	}
	return out
}

func checkTaxRatio(in *RuleInput) *Outcome {
	out := &Outcome{}
	d := in.Data
	if d.TaxAmount == nil || d.TotalAmount == nil || !finite(*d.TaxAmount) || !finite(*d.TotalAmount) || *d.TotalAmount <= 0 {
		return out
	}
	ratio := *d.TaxAmount / *d.TotalAmount
	if ratio > in.Config.MaxTaxRatio {
		out.addWarning(FieldTaxAmount, CodeUnusualTaxRate,
			fmt.Sprintf("tax is %.1f%% of the total, above %.1f%%", ratio*100, in.Config.MaxTaxRatio*100), ImpactMedium)
	}
	return out
}

func checkLineItemsTotal(in *RuleInput) *Outcome {
	out := &Outcome{}
	d := in.Data
	if len(d.LineItems) == 0 {
		return out
	}

	sum := decimal.Zero
	reconcilable := true
	for i, item := range d.LineItems {
		path := fmt.Sprintf("line_items[%d]", i)
		if !finite(item.Quantity) || !finite(item.UnitPrice) || !finite(item.TotalPrice) {
			out.addError(path, CodeInvalidFormat, "line item amounts must be finite numbers")
			reconcilable = false
			continue
		}
		price := decimal.NewFromFloat(item.TotalPrice)
		sum = sum.Add(price)

		if item.Quantity > 0 && item.UnitPrice > 0 {
			expected := decimal.NewFromFloat(item.Quantity).Mul(decimal.NewFromFloat(item.UnitPrice))
			if expected.Sub(price).Abs().GreaterThan(amountTolerance) {
				out.addWarning(path+".total_price", CodeLineItemPriceMismatch,
					fmt.Sprintf("quantity x unit price is %s, total price is %s", expected.StringFixed(2), price.StringFixed(2)), ImpactLow)
			}
		}
	}

	if d.TotalAmount == nil || !finite(*d.TotalAmount) || !reconcilable {
		return out
	}
	total := decimal.NewFromFloat(*d.TotalAmount)
	if total.Sub(sum).Abs().LessThanOrEqual(amountTolerance) {
		return out
	}

	out.addError(FieldTotalAmount, CodeLineItemsTotalMismatch,
		fmt.Sprintf("line items sum to %s but total amount is %s", sum.StringFixed(2), total.StringFixed(2)))
	if in.Config.EnableAutoCorrection {
		corrected, _ := sum.Float64()
		out.Corrections = &InvoiceData{TotalAmount: Float(corrected)}
		out.DataCorrections = append(out.DataCorrections, CheckLineItemsTotal)
	}
	return out
}

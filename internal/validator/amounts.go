package validator

import (
	"fmt"
	"math"
	"strconv"
)

func checkAmounts(in *RuleInput) *Outcome {
	out := &Outcome{}
	d := in.Data
	cfg := in.Config

	if d.TotalAmount != nil && !finite(*d.TotalAmount) {
		out.addError(FieldTotalAmount, CodeInvalidFormat, "total amount is not a finite number")
	} else if d.TotalAmount != nil {
		total := *d.TotalAmount
		switch {
		case total < 0:
			out.addError(FieldTotalAmount, CodeNegativeAmount, fmt.Sprintf("total amount %s is negative", fmtf(total)))
		case total < cfg.MinAmount:
			out.addError(FieldTotalAmount, CodeAmountTooSmall,
				fmt.Sprintf("total amount %s is below the minimum %s", fmtf(total), fmtf(cfg.MinAmount)))
		}
		if cfg.MaxAmount > 0 && total > cfg.MaxAmount {
			out.addWarning(FieldTotalAmount, CodeAmountVeryLarge,
				fmt.Sprintf("total amount %s exceeds %s; review recommended", fmtf(total), fmtf(cfg.MaxAmount)), ImpactMedium)
		}
	}

	if d.TaxAmount != nil && !finite(*d.TaxAmount) {
		out.addError(FieldTaxAmount, CodeInvalidFormat, "tax amount is not a finite number")
	} else if d.TaxAmount != nil && *d.TaxAmount < 0 {
		out.addError(FieldTaxAmount, CodeNegativeAmount, fmt.Sprintf("tax amount %s is negative", fmtf(*d.TaxAmount)))
	}

	return out
}

func fmtf(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

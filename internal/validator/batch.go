package validator

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ValidateInvoices validates each invoice independently under the same
// config. Results keep input order. A processing failure on one element is
// reported in-band as an invalid result and does not affect the others.
// When correlationID is set, element i gets "<correlationID>:<i>".
func (e *Engine) ValidateInvoices(ctx context.Context, invoices []*InvoiceData, cfg *Config, correlationID string) []*Result {
	results := make([]*Result, len(invoices))
	if len(invoices) == 0 {
		return results
	}
	if cfg == nil {
		c := e.defaults.Clone()
		cfg = &c
	}

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, inv := range invoices {
		cid := ""
		if correlationID != "" {
			cid = fmt.Sprintf("%s:%d", correlationID, i)
		}
		g.Go(func() error {
			res, err := e.ValidateInvoice(ctx, inv, cfg, cid)
			if err != nil {
				res = failureResult(cid, err)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func failureResult(correlationID string, err error) *Result {
	var pe *ProcessingError
	if errors.As(err, &pe) && pe.CorrelationID != "" {
		correlationID = pe.CorrelationID
	}
	return &Result{
		IsValid: false,
		Errors: []ValidationError{
			newError("", CodeValidationError, err.Error()),
		},
		Warnings:        []ValidationWarning{},
		ValidationScore: 0,
		CorrelationID:   correlationID,
		Metadata: Metadata{
			RulesApplied:        []string{},
			BusinessLogicChecks: []string{},
			DataCorrections:     []string{},
		},
	}
}

package validator_test

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"invoiceguard/internal/validator"
)

var fixedToday = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func newTestEngine(opts ...validator.Option) *validator.Engine {
	l := logrus.New()
	l.SetOutput(io.Discard)
	base := []validator.Option{
		validator.WithClock(func() time.Time { return fixedToday }),
		validator.WithLogger(l),
	}
	return validator.NewEngine(nil, append(base, opts...)...)
}

func cleanInvoice() *validator.InvoiceData {
	return &validator.InvoiceData{
		InvoiceNumber: validator.String("INV-001"),
		InvoiceDate:   validator.String("2024-01-01"),
		DueDate:       validator.String("2024-01-31"),
		TotalAmount:   validator.Float(1000),
		TaxAmount:     validator.Float(100),
		SupplierName:  validator.String("ACME Corp"),
		BillTo:        validator.String("Customer Inc"),
		Currency:      validator.String("USD"),
	}
}

func configWith(mod func(c *validator.Config)) *validator.Config {
	c := validator.DefaultConfig()
	mod(&c)
	return &c
}

func countCode(codes []string, code string) int {
	n := 0
	for _, c := range codes {
		if c == code {
			n++
		}
	}
	return n
}

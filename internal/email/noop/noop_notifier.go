package noop

import (
	"context"

	"github.com/sirupsen/logrus"

	"invoiceguard/internal/domain"
	"invoiceguard/internal/port"
)

type noopNotifier struct {
	log logrus.FieldLogger
}

// NewNoopNotifier creates a Notifier that only logs rejected invoices.
func NewNoopNotifier(log logrus.FieldLogger) port.Notifier {
	return &noopNotifier{log: log}
}

func (n *noopNotifier) NotifyRejected(_ context.Context, inv *domain.Invoice, summary string) error {
	n.log.WithFields(logrus.Fields{
		"invoice_id":     inv.ID.String(),
		"correlation_id": inv.CorrelationID,
		"score":          inv.ValidationScore,
	}).Infof("[NOOP EMAIL] invoice rejected: %s", summary)
	return nil
}

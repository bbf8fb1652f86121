package noop_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceguard/internal/domain"
	"invoiceguard/internal/email/noop"
)

func TestNoopNotifier_LogsRejection(t *testing.T) {
	logger, hook := test.NewNullLogger()
	n := noop.NewNoopNotifier(logger)

	inv := &domain.Invoice{ID: uuid.New(), CorrelationID: "corr-1", ValidationScore: 45}
	err := n.NotifyRejected(context.Background(), inv, "1 error")

	require.NoError(t, err)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "corr-1", entry.Data["correlation_id"])
	assert.Contains(t, entry.Message, "1 error")
}

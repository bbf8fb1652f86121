package ses

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceguard/internal/domain"
)

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	return &sesv2.SendEmailOutput{}, f.err
}

func TestSESNotifier_NotifyRejected(t *testing.T) {
	fake := &fakeSES{}
	n := newSESNotifier(fake, "noreply@example.com", "InvoiceGuard", "review@example.com")

	inv := &domain.Invoice{
		ID:              uuid.New(),
		CorrelationID:   "corr-<1>",
		ValidationScore: 35,
		ErrorCount:      2,
	}
	err := n.NotifyRejected(context.Background(), inv, "REQUIRED_FIELD_MISSING on due_date")

	require.NoError(t, err)
	require.NotNil(t, fake.input)
	assert.Equal(t, "InvoiceGuard <noreply@example.com>", *fake.input.FromEmailAddress)
	assert.Equal(t, []string{"review@example.com"}, fake.input.Destination.ToAddresses)
	assert.Contains(t, *fake.input.Content.Simple.Subject.Data, "score 35")
	assert.Contains(t, *fake.input.Content.Simple.Body.Text.Data, "REQUIRED_FIELD_MISSING on due_date")
	assert.Contains(t, *fake.input.Content.Simple.Body.Html.Data, "corr-&lt;1&gt;")
}

func TestSESNotifier_SendError(t *testing.T) {
	fake := &fakeSES{err: errors.New("throttled")}
	n := newSESNotifier(fake, "a@example.com", "A", "b@example.com")

	err := n.NotifyRejected(context.Background(), &domain.Invoice{ID: uuid.New()}, "x")

	assert.ErrorContains(t, err, "SES SendEmail")
}

func TestNewSESNotifier_RequiresReviewer(t *testing.T) {
	_, err := NewSESNotifier("us-east-1", "a@example.com", "A", "")
	assert.Error(t, err)
}

package ses

import (
	"context"
	"fmt"
	"html"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"invoiceguard/internal/domain"
	"invoiceguard/internal/port"
)

// sendAPI is the subset of the SES v2 client used here.
type sendAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type sesNotifier struct {
	client      sendAPI
	fromAddress string
	fromName    string
	toAddress   string
}

// NewSESNotifier creates a new SES-backed Notifier that mails toAddress.
func NewSESNotifier(region, fromAddress, fromName, toAddress string) (port.Notifier, error) {
	if toAddress == "" {
		return nil, fmt.Errorf("SES notifier: reviewer address is required")
	}
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return newSESNotifier(sesv2.NewFromConfig(cfg), fromAddress, fromName, toAddress), nil
}

func newSESNotifier(client sendAPI, fromAddress, fromName, toAddress string) *sesNotifier {
	return &sesNotifier{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		toAddress:   toAddress,
	}
}

func (s *sesNotifier) NotifyRejected(ctx context.Context, inv *domain.Invoice, summary string) error {
	subject := fmt.Sprintf("Invoice %s rejected (score %d)", inv.ID, inv.ValidationScore)
	htmlBody := buildRejectedHTML(inv, summary)
	textBody := fmt.Sprintf("Invoice %s failed validation.\n\nScore: %d\nErrors: %d\nWarnings: %d\nCorrelation ID: %s\n\n%s\n\nInvoiceGuard",
		inv.ID, inv.ValidationScore, inv.ErrorCount, inv.WarningCount, inv.CorrelationID, summary)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{s.toAddress},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildRejectedHTML(inv *domain.Invoice, summary string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Invoice rejected</h2>
  <p>Invoice <code>%s</code> failed validation and needs review.</p>
  <table style="border-collapse: collapse;">
    <tr><td style="padding: 4px 12px 4px 0; color: #666;">Score</td><td>%d</td></tr>
    <tr><td style="padding: 4px 12px 4px 0; color: #666;">Errors</td><td>%d</td></tr>
    <tr><td style="padding: 4px 12px 4px 0; color: #666;">Warnings</td><td>%d</td></tr>
    <tr><td style="padding: 4px 12px 4px 0; color: #666;">Correlation ID</td><td>%s</td></tr>
  </table>
  <p style="white-space: pre-wrap;">%s</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">InvoiceGuard - Invoice Validation Service</p>
</body>
</html>`, inv.ID, inv.ValidationScore, inv.ErrorCount, inv.WarningCount,
		html.EscapeString(inv.CorrelationID), html.EscapeString(summary))
}

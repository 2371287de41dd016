package gateway

import (
	"context"
	"fmt"

	"github.com/flawlesshq/payssion-gateway/infra/logger"
	mail "gopkg.in/mail.v2"
)

// MailNotifier delivers transaction status messages to the payer over SMTP.
type MailNotifier struct {
	dialer *mail.Dialer
	from   string
}

// NewMailNotifier creates an SMTP-backed notifier.
func NewMailNotifier(host string, port int, username, password, from string) *MailNotifier {
	return &MailNotifier{
		dialer: mail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// SendNotification emails the payer about the transaction's new state.
func (n *MailNotifier) SendNotification(ctx context.Context, txn *Transaction) error {
	if txn.Payer.Email == "" {
		return fmt.Errorf("transaction %s has no payer email", txn.ID)
	}

	m := mail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", txn.Payer.Email)
	m.SetHeader("Subject", subjectFor(txn.Status))
	m.SetBody("text/plain", fmt.Sprintf(
		"Your payment of %s %s for order %s is now %s.",
		txn.Amount.Amount, txn.Amount.Currency, txn.ID, statusText(txn.Status),
	))

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send notification for transaction %s: %w", txn.ID, err)
	}

	return nil
}

func subjectFor(status TransactionStatus) string {
	switch status {
	case StatusApproved:
		return "Payment received"
	case StatusWaiting:
		return "Payment pending"
	default:
		return "Payment failed"
	}
}

func statusText(status TransactionStatus) string {
	switch status {
	case StatusApproved:
		return "approved"
	case StatusWaiting:
		return "awaiting confirmation"
	case StatusRefused:
		return "refused"
	default:
		return string(status)
	}
}

// LogNotifier records notifications instead of delivering them. Used when
// SMTP is not configured and in tests.
type LogNotifier struct{}

// SendNotification logs the would-be customer notification.
func (LogNotifier) SendNotification(ctx context.Context, txn *Transaction) error {
	logger.Info("Customer notification dispatched", logger.LogContext{
		Fields: map[string]any{
			"transaction_id": txn.ID,
			"status":         string(txn.Status),
		},
	})
	return nil
}

// Package notify delivers budget alert notifications.
package notify

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"paisatrack/internal/logger"
)

// BudgetAlert describes a budget whose spending crossed its alert threshold.
// ThresholdPercent is the configured threshold, not the usage ratio.
type BudgetAlert struct {
	Category         string
	Budgeted         int64
	Spent            int64
	ThresholdPercent int
}

// Notifier delivers budget alerts to a user.
type Notifier interface {
	NotifyBudgetAlert(email string, alert BudgetAlert) error
}

// MailNotifier sends budget alerts over SMTP.
type MailNotifier struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailNotifier creates an SMTP-backed notifier.
func NewMailNotifier(host string, port int, username, password, from string) *MailNotifier {
	return &MailNotifier{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (n *MailNotifier) NotifyBudgetAlert(email string, alert BudgetAlert) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", fmt.Sprintf("Budget alert: %s", alert.Category))
	m.SetBody("text/plain", fmt.Sprintf(
		"Your %s spending has reached %d%% of its budget.\n\nSpent: %s\nBudgeted: %s\n",
		alert.Category, alert.ThresholdPercent,
		formatAmount(alert.Spent), formatAmount(alert.Budgeted),
	))

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("sending budget alert mail: %w", err)
	}
	return nil
}

// LogNotifier writes alerts to the application log. Used when SMTP is not
// configured, and in tests.
type LogNotifier struct{}

func (LogNotifier) NotifyBudgetAlert(email string, alert BudgetAlert) error {
	logger.Get().Infow("budget alert",
		"email", email,
		"category", alert.Category,
		"spent", alert.Spent,
		"budgeted", alert.Budgeted,
		"thresholdPercent", alert.ThresholdPercent,
	)
	return nil
}

// formatAmount renders minor units as a rupee string, e.g. 123456 -> "₹1234.56".
func formatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s₹%d.%02d", sign, minor/100, minor%100)
}

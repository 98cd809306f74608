// Package notify delivers admin notifications for settled payments.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lijoraj-p-r/NoPaper/internal/pkg/config"
)

// PaymentNotice carries the details of a settled order.
type PaymentNotice struct {
	OrderID    int64
	UserEmail  string
	BookTitle  string
	Amount     float64
	Status     string
	PaymentRef string
	PaidAt     time.Time
}

// Notifier is implemented by anything that can announce a settled payment.
type Notifier interface {
	PaymentReceived(ctx context.Context, notice PaymentNotice) error
}

var _ Notifier = (*Mailer)(nil)

// Mailer sends payment notices to the shop admin over SMTP. With no
// SMTP password configured it logs the notice instead of sending.
type Mailer struct {
	cfg    config.SMTPConfig
	upiVPA string
	logger *zap.Logger

	// send is swappable for tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(cfg config.SMTPConfig, upiVPA string, logger *zap.Logger) *Mailer {
	return &Mailer{
		cfg:    cfg,
		upiVPA: upiVPA,
		logger: logger,
		send:   smtp.SendMail,
	}
}

// PaymentReceived implements Notifier.
func (m *Mailer) PaymentReceived(_ context.Context, notice PaymentNotice) error {
	if m.cfg.Password == "" || m.cfg.AdminEmail == "" {
		m.logger.Info("Email not configured, logging payment notice instead",
			zap.Int64("orderID", notice.OrderID),
			zap.Float64("amount", notice.Amount),
			zap.String("status", notice.Status))
		return nil
	}

	subject := fmt.Sprintf("Payment %s - Order #%d", strings.ToUpper(notice.Status), notice.OrderID)
	body := fmt.Sprintf(`Payment Details:
---------------
Order ID: %d
User Email: %s
Book: %s
Amount: INR %.2f
Status: %s
Payment Ref: %s
Payment Time: %s
UPI ID: %s
`,
		notice.OrderID,
		notice.UserEmail,
		notice.BookTitle,
		notice.Amount,
		strings.ToUpper(notice.Status),
		notice.PaymentRef,
		notice.PaidAt.Format("2006-01-02 15:04:05"),
		m.upiVPA,
	)

	msg := strings.Join([]string{
		"From: " + m.cfg.User,
		"To: " + m.cfg.AdminEmail,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	if err := m.send(addr, auth, m.cfg.User, []string{m.cfg.AdminEmail}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send payment email: %w", err)
	}

	m.logger.Info("Payment email sent", zap.Int64("orderID", notice.OrderID))
	return nil
}

package mail

import (
	"context"
	"fmt"
	"html"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/config"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/model"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/provider"
)

// Sender delivers composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier sends payment notifications over SMTP.
type EmailNotifier struct {
	from   string
	sender Sender
	logger *zap.Logger
}

// NewEmailNotifier creates a notifier that dials cfg's SMTP server per message.
func NewEmailNotifier(cfg config.EmailConfig, logger *zap.Logger) *EmailNotifier {
	return NewEmailNotifierWithSender(cfg.From, gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password), logger)
}

func NewEmailNotifierWithSender(from string, sender Sender, logger *zap.Logger) *EmailNotifier {
	return &EmailNotifier{
		from:   from,
		sender: sender,
		logger: logger,
	}
}

type emailContent struct {
	subject string
	text    string
	html    string
}

func compose(n provider.Notification) (*emailContent, error) {
	amount := model.FormatAmount(n.Amount, n.Currency)

	switch n.Kind {
	case provider.NotificationPaymentCompleted:
		return &emailContent{
			subject: "Payment Received",
			text:    fmt.Sprintf("We received your payment of %s (payment %s). Your analysis credit is ready to use.", amount, n.PaymentID),
			html: fmt.Sprintf(`<h2>Payment Received</h2>
<p>We received your payment of <strong>%s</strong>.</p>
<p>Payment reference: %s</p>
<p>Your analysis credit is ready to use.</p>`, html.EscapeString(amount), html.EscapeString(n.PaymentID)),
		}, nil
	case provider.NotificationRefundProcessed:
		return &emailContent{
			subject: "Refund Processed Successfully",
			text:    fmt.Sprintf("Your refund of %s has been processed successfully. The amount will be credited to your original payment method within 5-7 business days.", amount),
			html: fmt.Sprintf(`<h2>Refund Processed Successfully</h2>
<p>Your refund of %s has been processed successfully.</p>
<p>The amount will be credited to your original payment method within 5-7 business days.</p>`, html.EscapeString(amount)),
		}, nil
	case provider.NotificationRefundFailed:
		reason := n.Reason
		if reason == "" {
			reason = "unknown"
		}
		return &emailContent{
			subject: "Refund Request Failed",
			text:    fmt.Sprintf("We encountered an issue processing your refund. Reason: %s. Please contact our support team for assistance.", reason),
			html: fmt.Sprintf(`<h2>Refund Request Failed</h2>
<p>We encountered an issue processing your refund.</p>
<p><strong>Reason:</strong> %s</p>
<p>Please contact our support team for assistance.</p>`, html.EscapeString(reason)),
		}, nil
	default:
		return nil, fmt.Errorf("unknown notification kind: %s", n.Kind)
	}
}

// Notify composes and sends the email for n.
func (s *EmailNotifier) Notify(ctx context.Context, n provider.Notification) error {
	if n.Email == "" {
		return fmt.Errorf("notification %s has no recipient", n.Kind)
	}

	content, err := compose(n)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.from, "Project Analyzer"))
	m.SetHeader("To", n.Email)
	m.SetHeader("Subject", content.subject)
	m.SetBody("text/plain", content.text)
	m.AddAlternative("text/html", content.html)

	if err := s.sender.DialAndSend(m); err != nil {
		s.logger.Error("Failed to send email",
			zap.String("kind", n.Kind),
			zap.String("payment_id", n.PaymentID),
			zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("Email sent",
		zap.String("kind", n.Kind),
		zap.String("payment_id", n.PaymentID))
	return nil
}

// LogNotifier only logs notifications; used when email is disabled.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(ctx context.Context, n provider.Notification) error {
	l.logger.Info("Notification (email disabled)",
		zap.String("kind", n.Kind),
		zap.String("payment_id", n.PaymentID),
		zap.String("order_id", n.OrderID))
	return nil
}

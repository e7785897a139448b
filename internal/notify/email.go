package notify

import (
	"context"
	"fmt"
	"html"
	"unicode/utf8"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/wolfman30/assessment-api/pkg/logging"
)

// EmailSender delivers internal lead notices. SendGrid, SES and the stub all
// satisfy it.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// Categories tag lead notices in the provider's analytics.
const (
	CategoryHighPriority = "lead-high-priority"
	CategoryQualified    = "lead-qualified"
)

// EmailMessage is one internal lead notice.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Body    string // Plain text body
	HTML    string // Optional HTML body

	// RecordID ties the message back to the stored lead in logs and headers.
	RecordID string
	Category string
}

// htmlBody renders the plain body as preformatted HTML when no HTML part
// was supplied.
func (m EmailMessage) htmlBody() string {
	if m.HTML != "" {
		return m.HTML
	}
	return "<pre>" + html.EscapeString(m.Body) + "</pre>"
}

const defaultFromName = "Assessment Desk"

// SendGridSender sends emails via SendGrid API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// NewSendGridSender creates a new SendGrid email sender.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = defaultFromName
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

// buildSendGridMessage maps a lead notice onto a v3 mail payload. Record id
// and category travel as a header and a SendGrid category.
func (s *SendGridSender) buildSendGridMessage(msg EmailMessage) *mail.SGMailV3 {
	message := mail.NewSingleEmail(
		mail.NewEmail(s.fromName, s.fromEmail),
		msg.Subject,
		mail.NewEmail(msg.ToName, msg.To),
		msg.Body,
		msg.htmlBody(),
	)
	if msg.RecordID != "" {
		message.SetHeader("X-Lead-Record", msg.RecordID)
	}
	if msg.Category != "" {
		message.AddCategories(msg.Category)
	}
	return message
}

// Send delivers one notice through the SendGrid v3 API.
func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s.client == nil {
		return fmt.Errorf("notify: sendgrid client not configured")
	}

	response, err := s.client.SendWithContext(ctx, s.buildSendGridMessage(msg))
	if err != nil {
		return fmt.Errorf("notify: sendgrid send: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("notify: sendgrid status %d: %s", response.StatusCode, truncate(response.Body, 200))
	}

	s.logger.Debug("lead notice sent", "provider", "sendgrid", "category", msg.Category, "record_id", msg.RecordID, "status", response.StatusCode)
	return nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// StubEmailSender is a no-op sender for testing or when email is disabled.
type StubEmailSender struct {
	logger *logging.Logger
}

// NewStubEmailSender creates a stub email sender that logs but doesn't send.
func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

// Send logs the email but doesn't actually send it.
func (s *StubEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	s.logger.Info("stub email sender: would send email", "subject", msg.Subject, "record_id", msg.RecordID)
	return nil
}

package bootstrap

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	appconfig "github.com/wolfman30/assessment-api/internal/config"
	"github.com/wolfman30/assessment-api/internal/notify"
	"github.com/wolfman30/assessment-api/internal/observability/metrics"
	"github.com/wolfman30/assessment-api/pkg/logging"
)

// BuildEmailSender prefers SES, then SendGrid, then the logging stub. The
// second return names the chosen provider.
func BuildEmailSender(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) (notify.EmailSender, string) {
	if cfg.SESFromEmail != "" && awsCfg != nil {
		if sender := notify.NewSESSender(sesv2.NewFromConfig(*awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); sender != nil {
			return sender, "ses"
		}
	}
	if sender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sender != nil {
		return sender, "sendgrid"
	}
	return notify.NewStubEmailSender(logger), "stub"
}

// BuildFollowUpQueue publishes enrollments to SQS when a queue URL is set.
func BuildFollowUpQueue(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) notify.FollowUpQueue {
	if cfg.FollowUpQueueURL != "" && awsCfg != nil {
		return notify.NewSQSFollowUpQueue(sqs.NewFromConfig(*awsCfg), cfg.FollowUpQueueURL)
	}
	return notify.NewLogFollowUpQueue(logger)
}

// BuildDispatcher wires every notification channel. awsCfg may be nil when no
// AWS-backed channel is configured.
func BuildDispatcher(cfg *appconfig.Config, awsCfg *aws.Config, recordURL func(string) string, m *metrics.LeadMetrics, logger *logging.Logger) *notify.Dispatcher {
	if cfg == nil {
		cfg = &appconfig.Config{}
	}
	if logger == nil {
		logger = logging.Default()
	}

	email, provider := BuildEmailSender(cfg, awsCfg, logger)
	dcfg := notify.DispatcherConfig{
		Email:      email,
		Recipients: cfg.NotifyEmailRecipients,
		FollowUp:   BuildFollowUpQueue(cfg, awsCfg, logger),
		RecordURL:  recordURL,
		Metrics:    m,
		Logger:     logger,
	}
	// NewSlackNotifier returns a nil pointer when disabled; keep the interface nil.
	if slack := notify.NewSlackNotifier(cfg.SlackWebhookURL, nil, logger); slack != nil {
		if !notify.LooksValid(cfg.SlackWebhookURL) {
			logger.Warn("slack webhook does not point at hooks.slack.com")
		}
		dcfg.Chat = slack
	}
	logger.Info("notifications configured",
		"email_provider", provider,
		"email_recipients", len(cfg.NotifyEmailRecipients),
		"chat_enabled", dcfg.Chat != nil,
		"followup_queue", cfg.FollowUpQueueURL != "",
	)
	return notify.NewDispatcher(dcfg)
}

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/assessment-api/pkg/logging"
)

// SlackNotifier posts priority alerts to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewSlackNotifier returns nil when no webhook is configured; the chat-ops
// channel is then skipped without affecting the others.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *logging.Logger) *SlackNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	webhookURL = strings.TrimSpace(webhookURL)
	if webhookURL == "" {
		logger.Warn("notify: SLACK_WEBHOOK_URL not set, priority chat alerts disabled")
		return nil
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &SlackNotifier{webhookURL: webhookURL, httpClient: httpClient, logger: logger}
}

// LooksValid reports whether the webhook points at hooks.slack.com.
func LooksValid(webhookURL string) bool {
	return strings.HasPrefix(webhookURL, "https://hooks.slack.com/")
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type  string    `json:"type"`
	Text  slackText `json:"text"`
	URL   string    `json:"url,omitempty"`
	Style string    `json:"style,omitempty"`
}

type slackBlock struct {
	Type     string         `json:"type"`
	Text     *slackText     `json:"text,omitempty"`
	Fields   []slackText    `json:"fields,omitempty"`
	Elements []slackElement `json:"elements,omitempty"`
}

type slackPayload struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

func markdown(text string) slackText {
	return slackText{Type: "mrkdwn", Text: text}
}

func buildSlackPayload(lead Lead, score int, recordURL string) slackPayload {
	header := markdown(fmt.Sprintf("*:rotating_light: HIGH PRIORITY LEAD*\n*Company:* %s\n*Contact:* %s\n*Email:* %s\n*Phone:* %s",
		lead.CompanyName, lead.FullName, lead.Email, lead.Phone))
	pain := markdown(fmt.Sprintf("*Pain Points:*\n• %s\n• %s\n• Priority: %s",
		lead.Challenge, lead.Driver, lead.PriorityLevel))

	blocks := []slackBlock{
		{Type: "section", Text: &header},
		{Type: "section", Fields: []slackText{
			markdown(fmt.Sprintf("*Lead Score:*\n%d/100", score)),
			markdown("*Timeline:*\n" + lead.Timeline),
			markdown("*Industry:*\n" + lead.Industry),
			markdown("*Decision Role:*\n" + lead.DecisionRole),
		}},
		{Type: "section", Text: &pain},
	}
	if recordURL != "" {
		blocks = append(blocks, slackBlock{Type: "actions", Elements: []slackElement{{
			Type:  "button",
			Text:  slackText{Type: "plain_text", Text: "View in Airtable"},
			URL:   recordURL,
			Style: "primary",
		}}})
	}
	return slackPayload{Text: ":rotating_light: HIGH PRIORITY LEAD ALERT", Blocks: blocks}
}

// Alert posts the high-priority block message.
func (s *SlackNotifier) Alert(ctx context.Context, lead Lead, score int, recordURL string) error {
	body, err := json.Marshal(buildSlackPayload(lead, score, recordURL))
	if err != nil {
		return fmt.Errorf("notify: encode slack payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: slack webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notify: slack webhook returned status %d", resp.StatusCode)
	}
	s.logger.Info("slack alert sent", "company", lead.CompanyName, "score", score)
	return nil
}

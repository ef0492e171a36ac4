package observability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/opsdesk/opsdesk/pkg/models"
)

// Notifier pushes newly triggered reminders to an external channel.
type Notifier interface {
	Notify(reminders []models.Reminder) error
}

// slackNotifier sends reminder notifications to a Slack webhook.
type slackNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewSlackNotifier creates a Notifier that posts reminders to the given
// Slack webhook URL.
func NewSlackNotifier(webhookURL string) Notifier {
	return &slackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{},
	}
}

type slackMessage struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type string     `json:"type"`
	Text *slackText `json:"text,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Notify sends the given reminders to the configured Slack webhook.
// It returns nil without making a request when the slice is empty.
func (s *slackNotifier) Notify(reminders []models.Reminder) error {
	if len(reminders) == 0 {
		return nil
	}

	msg := s.buildMessage(reminders)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling slack message: %w", err)
	}

	resp, err := s.client.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("posting to slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func (s *slackNotifier) buildMessage(reminders []models.Reminder) slackMessage {
	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: "opsdesk Reminders Due"},
		},
	}

	for i, rem := range reminders {
		if i > 0 {
			blocks = append(blocks, slackBlock{Type: "divider"})
		}
		text := fmt.Sprintf("⏰ *%s*\n_due %s_",
			rem.Message,
			rem.Datetime.Format("2006-01-02 15:04"),
		)
		if rem.EndDatetime != nil {
			text += fmt.Sprintf(" _until %s_", rem.EndDatetime.Format("15:04"))
		}
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: text},
		})
	}

	return slackMessage{Blocks: blocks}
}

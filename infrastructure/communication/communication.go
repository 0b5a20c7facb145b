package communication

import (
	"fmt"

	"github.com/slack-go/slack"
)

// Slack posts security-audit events to the configured channel. Used
// fire-and-forget: the attendance core never waits on it.
type Slack struct {
	client  *slack.Client
	options SlackOption
}

type SlackOption struct {
	AuditChannelID string
}

func NewSlack(token string, options SlackOption) *Slack {
	client := slack.New(token)
	return &Slack{client: client, options: options}
}

func (s *Slack) postMessage(channelID, message string) error {
	_, _, err := s.client.PostMessage(
		channelID,
		slack.MsgOptionText(message, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}

// SecurityEvent implements attendance.AuditNotifier.
func (s *Slack) SecurityEvent(message string) error {
	return s.postMessage(s.options.AuditChannelID, message)
}

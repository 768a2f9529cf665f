package notify

import (
	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
)

// SlackAPI is the minimal Slack API surface needed by the notifier.
type SlackAPI interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackNotifier posts notifications to a Slack channel. The daemon uses it
// to announce document processing outcomes; posting failures are logged
// and otherwise swallowed, matching the fire-and-forget contract.
type SlackNotifier struct {
	api     SlackAPI
	channel string
	logger  zerolog.Logger
}

// NewSlackNotifier creates a notifier posting to the given channel.
func NewSlackNotifier(token, channel string, logger zerolog.Logger) *SlackNotifier {
	return &SlackNotifier{
		api:     slack.New(token),
		channel: channel,
		logger:  logger.With().Str("component", "slack-notify").Logger(),
	}
}

// NewSlackNotifierWithAPI creates a notifier with a custom API (for testing).
func NewSlackNotifierWithAPI(api SlackAPI, channel string, logger zerolog.Logger) *SlackNotifier {
	return &SlackNotifier{api: api, channel: channel, logger: logger}
}

func (n *SlackNotifier) Success(msg string) {
	n.post(":white_check_mark: " + msg)
}

func (n *SlackNotifier) Error(msg string) {
	n.post(":x: " + msg)
}

func (n *SlackNotifier) post(text string) {
	_, _, err := n.api.PostMessage(n.channel, slack.MsgOptionText(text, false))
	if err != nil {
		n.logger.Warn().Err(err).Msg("slack notification failed")
	}
}

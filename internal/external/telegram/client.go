package telegram

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/wonny/propopol/internal/contracts"
	"github.com/wonny/propopol/pkg/logger"
)

// maxMessageLen stays under the 4096 character Bot API limit
const maxMessageLen = 4000

// Notifier sends text to a chat
type Notifier interface {
	SendMessage(text string) error
}

type botNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewNotifier connects to the Bot API (getMe) and returns a chat notifier
func NewNotifier(botToken string, chatID int64) (Notifier, error) {
	return NewNotifierWithEndpoint(botToken, chatID, tgbotapi.APIEndpoint)
}

// NewNotifierWithEndpoint is NewNotifier against a custom Bot API endpoint
func NewNotifierWithEndpoint(botToken string, chatID int64, endpoint string) (Notifier, error) {
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(botToken, endpoint)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	return &botNotifier{bot: bot, chatID: chatID}, nil
}

func (n *botNotifier) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.DisableWebPagePreview = true
	_, err := n.bot.Send(msg)
	return err
}

// Channel publishes reports through a Notifier
type Channel struct {
	notifier Notifier
	logger   *logger.Logger
}

// NewChannel wraps a notifier as a report channel
func NewChannel(notifier Notifier, log *logger.Logger) *Channel {
	return &Channel{notifier: notifier, logger: log}
}

// Name implements contracts.Channel
func (c *Channel) Name() string {
	return "telegram"
}

// Publish sends the markdown as plain text, split on line boundaries
func (c *Channel) Publish(ctx context.Context, _ *contracts.Report, markdown string) error {
	chunks := SplitMessage(markdown, maxMessageLen)
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.notifier.SendMessage(chunk); err != nil {
			return fmt.Errorf("send telegram message %d/%d: %w", i+1, len(chunks), err)
		}
	}

	c.logger.WithField("messages", len(chunks)).Info("Telegram report sent")
	return nil
}

// SplitMessage cuts text into chunks of at most limit bytes, breaking at
// line ends. A line longer than limit is hard-split on rune boundaries.
func SplitMessage(text string, limit int) []string {
	text = strings.TrimRight(text, "\n")
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			chunks = append(chunks, b.String())
			b.Reset()
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if len(line) > limit {
			flush()
			pieces := hardSplit(line, limit)
			chunks = append(chunks, pieces[:len(pieces)-1]...)
			line = pieces[len(pieces)-1]
		}
		if b.Len() > 0 && b.Len()+len(line)+1 > limit {
			flush()
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	flush()
	return chunks
}

// hardSplit cuts line into pieces of at most limit bytes without splitting a rune
func hardSplit(line string, limit int) []string {
	var pieces []string
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		if cut == 0 {
			// limit보다 긴 단일 rune
			_, cut = utf8.DecodeRuneInString(line)
		}
		pieces = append(pieces, line[:cut])
		line = line[cut:]
	}
	return append(pieces, line)
}

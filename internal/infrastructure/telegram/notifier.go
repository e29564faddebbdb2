package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"IntelliSearch/internal/ports"
)

// maxMessageLen is Telegram's per-message text limit.
const maxMessageLen = 4096

// Notifier sends digests to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   int64
	endpoint string
	client   *http.Client
	logger   ports.Logger

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier. The bot is connected on
// first use.
func NewNotifier(botToken string, chatID int64, log ports.Logger) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		endpoint: tgbotapi.APIEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   log,
	}
}

// WithEndpoint points the bot at another API server; the format follows
// tgbotapi.APIEndpoint.
func (n *Notifier) WithEndpoint(endpoint string, client *http.Client) *Notifier {
	n.endpoint = endpoint
	if client != nil {
		n.client = client
	}
	return n
}

// PublishDigest posts a Markdown message, split to fit Telegram's limit.
func (n *Notifier) PublishDigest(ctx context.Context, digest string) error {
	if n.botToken == "" || n.chatID == 0 {
		return fmt.Errorf("telegram notifier misconfigured")
	}
	if strings.TrimSpace(digest) == "" {
		return nil
	}

	bot, err := n.connect()
	if err != nil {
		return err
	}

	for _, chunk := range splitMessage(digest, maxMessageLen) {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg := tgbotapi.NewMessage(n.chatID, chunk)
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.DisableWebPagePreview = true
		if _, err := bot.Send(msg); err != nil {
			// Unbalanced markdown in scraped titles is rejected; resend as plain text.
			n.warn("markdown send failed, retrying as plain text", "error", err)
			msg.ParseMode = ""
			if _, err := bot.Send(msg); err != nil {
				return fmt.Errorf("send telegram message: %w", err)
			}
		}
	}
	return nil
}

func (n *Notifier) connect() (*tgbotapi.BotAPI, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.bot != nil {
		return n.bot, nil
	}

	bot, err := tgbotapi.NewBotAPIWithClient(n.botToken, n.endpoint, n.client)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	n.bot = bot
	return bot, nil
}

// splitMessage cuts text at line boundaries into chunks of at most limit runes.
func splitMessage(text string, limit int) []string {
	if len([]rune(text)) <= limit {
		return []string{text}
	}

	var (
		chunks  []string
		current strings.Builder
		size    int
	)
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			size = 0
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		runes := []rune(line)
		for len(runes) > limit {
			flush()
			chunks = append(chunks, string(runes[:limit]))
			runes = runes[limit:]
		}
		if size+len(runes) > limit {
			flush()
		}
		current.WriteString(string(runes))
		size += len(runes)
	}
	flush()
	return chunks
}

func (n *Notifier) warn(msg string, args ...any) {
	if n.logger != nil {
		n.logger.Warn(msg, args...)
	}
}

package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-telegram/bot"
)

// Telegram sends messages through the Bot API sendMessage method
type Telegram struct {
	b *bot.Bot
}

// NewTelegram builds the bot without calling getMe, so a bad token only
// surfaces when a message is sent. serverURL defaults to the public Bot API.
func NewTelegram(token, serverURL string, client *http.Client) (*Telegram, error) {
	opts := []bot.Option{bot.WithSkipGetMe()}
	if serverURL != "" {
		opts = append(opts, bot.WithServerURL(strings.TrimRight(serverURL, "/")))
	}
	if client != nil {
		opts = append(opts, bot.WithHTTPClient(time.Minute, client))
	}
	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", unwrapURLError(err))
	}
	return &Telegram{b: b}, nil
}

func (t *Telegram) Send(ctx context.Context, chatID, message string) error {
	if chatID == "" {
		return fmt.Errorf("telegram: empty chat id")
	}
	_, err := t.b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: message})
	if err != nil {
		// The request url holds the token; report only the host-level failure.
		return fmt.Errorf("telegram: sendMessage failed: %w", unwrapURLError(err))
	}
	return nil
}

func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

// Package notify delivers short text messages to a chat destination.
package notify

import (
	"context"

	"github.com/charmbracelet/log"
)

// Channel sends message to destination (a chat id for Telegram).
type Channel interface {
	Send(ctx context.Context, destination, message string) error
}

// LogChannel only logs messages. Used when no chat bot is configured.
type LogChannel struct {
	Logger *log.Logger
}

func (l LogChannel) Send(_ context.Context, destination, message string) error {
	l.Logger.Info("notification", "to", destination, "message", message)
	return nil
}

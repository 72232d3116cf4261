package mail

import (
	"context"
	"log/slog"
)

// Transport delivers one rendered message.
type Transport interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// LogTransport logs messages instead of sending them — used in ENV=local.
type LogTransport struct {
	logger *slog.Logger
}

func NewLogTransport(logger *slog.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

func (t *LogTransport) Name() string { return "log" }

func (t *LogTransport) Send(ctx context.Context, msg Message) error {
	t.logger.InfoContext(ctx, "sign-in email (local dev)",
		"to", msg.To, "subject", msg.Subject, "body", msg.Text)
	return nil
}

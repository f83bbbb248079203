// FILE: internal/service/notifier.go
package service

import (
	"context"
	"fmt"

	"inspection-be/internal/pkg/logger"
	"inspection-be/internal/pkg/metrics"
	"inspection-be/pkg/utils"
)

// MessageSender is the outbound gateway port, implemented by whatsapp.Client.
type MessageSender interface {
	SendMessage(ctx context.Context, phone, text string) error
}

type INotifier interface {
	// Notify sends text to phone, split into gateway-sized chunks. A failure is
	// logged and returned; callers must not undo state because of it.
	Notify(ctx context.Context, sessionKey, phone, text string) error
}

type Notifier struct {
	sender    MessageSender
	charLimit int
	logger    logger.ILogger
	metrics   *metrics.Metrics
}

func NewNotifier(sender MessageSender, charLimit int, log logger.ILogger, m *metrics.Metrics) *Notifier {
	return &Notifier{
		sender:    sender,
		charLimit: charLimit,
		logger:    log,
		metrics:   m,
	}
}

func (n *Notifier) Notify(ctx context.Context, sessionKey, phone, text string) error {
	if phone == "" || text == "" {
		return nil
	}

	chunks := utils.SplitMessage(text, n.charLimit)
	for i, chunk := range chunks {
		if err := n.sender.SendMessage(ctx, phone, chunk); err != nil {
			n.metrics.ObserveNotificationFailure()
			n.logger.Error("Notifier", "Failed to send WhatsApp reply", map[string]interface{}{
				"session_key": sessionKey,
				"phone":       phone,
				"chunk":       i + 1,
				"chunks":      len(chunks),
				"error":       err.Error(),
			})
			return fmt.Errorf("failed to send reply chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}

	n.logger.Debug("Notifier", "Reply sent", map[string]interface{}{
		"session_key": sessionKey,
		"chunks":      len(chunks),
	})
	return nil
}

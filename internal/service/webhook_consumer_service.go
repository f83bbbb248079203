// FILE: internal/service/webhook_consumer_service.go
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"inspection-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const WebhookTopic = "whatsapp.inbound"

type IWebhookQueue interface {
	// Enqueue hands a raw webhook body to the background consumer.
	Enqueue(ctx context.Context, raw []byte) error
}

type IWebhookConsumerService interface {
	IWebhookQueue
	Consume(ctx context.Context) error
	Wait()
}

type webhookConsumerService struct {
	pubSub       *gochannel.GoChannel
	topicName    string
	conversation IConversationService
	logger       logger.ILogger
	slots        chan struct{}
	maxAttempts  int
	retryBackoff time.Duration
	inflight     sync.WaitGroup
}

func NewWebhookConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	conversation IConversationService,
	concurrency int,
	log logger.ILogger,
) IWebhookConsumerService {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &webhookConsumerService{
		pubSub:       pubSub,
		topicName:    topicName,
		conversation: conversation,
		logger:       log,
		slots:        make(chan struct{}, concurrency),
		maxAttempts:  3,
		retryBackoff: 200 * time.Millisecond,
	}
}

func (s *webhookConsumerService) Enqueue(_ context.Context, raw []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), raw)
	if err := s.pubSub.Publish(s.topicName, msg); err != nil {
		return fmt.Errorf("failed to enqueue webhook: %w", err)
	}
	return nil
}

// Consume starts the subscription. Every message is handled in its own
// goroutine, bounded by the concurrency given at construction.
func (s *webhookConsumerService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.slots <- struct{}{}
			s.inflight.Add(1)
			go func(msg *message.Message) {
				defer func() {
					<-s.slots
					s.inflight.Done()
				}()
				s.processMessage(ctx, msg)
			}(msg)
		}
	}()

	s.logger.Info("WebhookConsumer", "Consuming inbound webhooks", map[string]interface{}{"topic": s.topicName})
	return nil
}

// Wait blocks until in-flight messages are handled.
func (s *webhookConsumerService) Wait() {
	s.inflight.Wait()
}

// processMessage always acks. Failed attempts are retried here with linear backoff.
func (s *webhookConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		result, err := s.conversation.HandleInbound(ctx, msg.Payload)
		if err == nil {
			s.logger.Debug("WebhookConsumer", "Webhook handled", map[string]interface{}{
				"uuid":    msg.UUID,
				"outcome": result.Outcome,
			})
			return
		}

		s.logger.Warn("WebhookConsumer", "Webhook handling failed", map[string]interface{}{
			"uuid":    msg.UUID,
			"attempt": attempt,
			"error":   err.Error(),
		})

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.retryBackoff * time.Duration(attempt)):
		}
	}

	s.logger.Error("WebhookConsumer", "Dropping webhook after retries", map[string]interface{}{
		"uuid":     msg.UUID,
		"attempts": s.maxAttempts,
	})
}

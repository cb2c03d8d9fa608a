package service

import (
	"context"
	"encoding/json"
	"sync"

	"riff-be/internal/dto"
	"riff-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	// Consume processes bias detection jobs until ctx is done.
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	detector   BiasDetector
	sessions   SessionPublisher
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	detector BiasDetector,
	sessions SessionPublisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		detector:   detector,
		sessions:   sessions,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			// gochannel holds the next delivery until this one is acked, and
			// detection is never retried, so ack on receipt.
			msg.Ack()
			wg.Add(1)
			go func() {
				defer wg.Done()
				cs.processMessage(ctx, msg)
			}()
		}
	}
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.BiasDetectionMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal bias detection job", map[string]interface{}{"error": err.Error()})
		return
	}

	cs.logger.Debug("ConsumerService", "Running bias detection", map[string]interface{}{
		"session_id": payload.SessionId,
		"length":     len(payload.Text),
	})
	detectAndPublish(ctx, cs.detector, cs.sessions, cs.logger, payload)
}

package service

import (
	"context"
	"encoding/json"

	"riff-be/internal/constant"
	"riff-be/internal/dto"
	"riff-be/internal/pkg/logger"
	"riff-be/pkg/insight"
)

// BiasDetector finds bias spans in text. Implemented by generation.Service.
type BiasDetector interface {
	Biases(ctx context.Context, text string) ([]insight.Bias, error)
}

// IBiasScheduler queues bias detection for a session. It never fails the caller.
type IBiasScheduler interface {
	Schedule(ctx context.Context, sessionID, text string)
}

type biasScheduler struct {
	publisher IPublisherService
	logger    logger.ILogger
}

func NewBiasScheduler(publisher IPublisherService, log logger.ILogger) IBiasScheduler {
	return &biasScheduler{publisher: publisher, logger: log}
}

func (s *biasScheduler) Schedule(ctx context.Context, sessionID, text string) {
	payload, err := json.Marshal(dto.BiasDetectionMessage{SessionId: sessionID, Text: text})
	if err == nil {
		err = s.publisher.Publish(ctx, payload)
	}
	if err != nil {
		s.logger.Error("BiasScheduler", "Failed to queue bias detection", map[string]interface{}{
			"code":       constant.ErrCodeBiasDetectionError,
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}

// detectAndPublish runs detection and pushes the result to the session.
// Errors stay here; the analysis that asked for them has already succeeded.
func detectAndPublish(ctx context.Context, detector BiasDetector, sessions SessionPublisher, log logger.ILogger, msg dto.BiasDetectionMessage) {
	biases, err := detector.Biases(ctx, msg.Text)
	if err != nil {
		log.Error("BiasDetection", "Bias detection failed", map[string]interface{}{
			"code":       constant.ErrCodeBiasDetectionError,
			"session_id": msg.SessionId,
			"error":      err.Error(),
		})
		return
	}
	if biases == nil {
		biases = []insight.Bias{}
	}

	sessions.Publish(msg.SessionId, dto.BiasesEvent{
		Type:   constant.EventBiases,
		Biases: biases,
	})
}

package service

import (
	"context"
	"time"

	"riff-be/internal/constant"
	"riff-be/internal/entity"
	"riff-be/internal/pkg/logger"
	"riff-be/pkg/events"
)

// EventPublisher is the bus the audit trail is written to (NATS JetStream in production).
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// IRunAuditor records run lifecycle transitions. Failures are logged, never returned.
type IRunAuditor interface {
	RunStarted(ctx context.Context, run *entity.Run, sessionID string)
	RunFinished(ctx context.Context, run *entity.Run, status constant.RunStatus, errCode string)
}

type runAuditor struct {
	publisher EventPublisher
	logger    logger.ILogger
}

// NewRunAuditor returns an auditor; a nil publisher disables publishing.
func NewRunAuditor(publisher EventPublisher, log logger.ILogger) IRunAuditor {
	return &runAuditor{publisher: publisher, logger: log}
}

func (a *runAuditor) RunStarted(ctx context.Context, run *entity.Run, sessionID string) {
	a.publish(ctx, constant.AuditRunStarted, map[string]interface{}{
		"run_id":     run.Id,
		"chain_id":   run.ChainId,
		"fp":         run.Fingerprint,
		"session_id": sessionID,
		"cached":     run.SourceRunId != nil,
	})
}

func (a *runAuditor) RunFinished(ctx context.Context, run *entity.Run, status constant.RunStatus, errCode string) {
	eventType := constant.AuditRunDone
	switch status {
	case constant.RunStatusFailed:
		eventType = constant.AuditRunFailed
	case constant.RunStatusAborted:
		eventType = constant.AuditRunAborted
	}

	data := map[string]interface{}{
		"run_id":      run.Id,
		"chain_id":    run.ChainId,
		"status":      string(status),
		"duration_ms": time.Since(run.StartedAt).Milliseconds(),
	}
	if errCode != "" {
		data["error"] = errCode
	}
	a.publish(ctx, eventType, data)
}

func (a *runAuditor) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if a.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := a.publisher.Publish(ctx, events.New(eventType, data)); err != nil {
		a.logger.Error("RunAuditor", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}

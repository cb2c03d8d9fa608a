package service

import (
	"context"
	"errors"
	"iter"
	"sync"
	"time"

	"riff-be/internal/constant"
	"riff-be/internal/dto"
	"riff-be/internal/entity"
	"riff-be/internal/pkg/logger"
	"riff-be/internal/repository/specification"
	"riff-be/internal/repository/unitofwork"
	"riff-be/pkg/cache"
	"riff-be/pkg/fingerprint"
	"riff-be/pkg/pipeline"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var ErrRunNotFound = errors.New("run not found")

// PipelineRunner executes chain steps. Implemented by pipeline.Executor.
type PipelineRunner interface {
	Run(ctx context.Context, steps []pipeline.StepSpec, input string) iter.Seq2[pipeline.Chunk, error]
}

type IRunService interface {
	// Execute starts a run of chain over text for the session and returns its id
	// without waiting. The run stops when ctx is canceled.
	Execute(ctx context.Context, sessionID string, chain *entity.Chain, text string) (string, error)
	Show(ctx context.Context, id string) (*dto.RunResponse, error)
	Events(ctx context.Context, id string) ([]dto.RunEventResponse, error)
	// Wait blocks until every started run has finished.
	Wait()
}

type runService struct {
	uowFactory unitofwork.RepositoryFactory
	ledger     IRunLedger
	cache      ResultCache
	runner     PipelineRunner
	sessions   SessionPublisher
	auditor    IRunAuditor
	logger     logger.ILogger
	wg         sync.WaitGroup
}

func NewRunService(
	uowFactory unitofwork.RepositoryFactory,
	ledger IRunLedger,
	resultCache ResultCache,
	runner PipelineRunner,
	sessions SessionPublisher,
	auditor IRunAuditor,
	log logger.ILogger,
) IRunService {
	return &runService{
		uowFactory: uowFactory,
		ledger:     ledger,
		cache:      resultCache,
		runner:     runner,
		sessions:   sessions,
		auditor:    auditor,
		logger:     log,
	}
}

func (s *runService) Execute(ctx context.Context, sessionID string, chain *entity.Chain, text string) (string, error) {
	fp := fingerprint.ForChain(text, chain.Steps)
	run := &entity.Run{
		Id:          "run-" + uuid.NewString(),
		ChainId:     chain.Id,
		Fingerprint: fp,
		TextHash:    fingerprint.Of(text, nil),
		Status:      constant.RunStatusRunning,
		StartedAt:   time.Now(),
	}

	if entry, ok := s.cache.Get(ctx, fp); ok && entry.Mode == cache.ModeRun && entry.RunID != "" {
		if s.replay(ctx, sessionID, run, entry.RunID) {
			return run.Id, nil
		}
	}

	if err := s.uowFactory.NewUnitOfWork(ctx).RunRepository().Create(ctx, run); err != nil {
		s.persistenceError("Failed to create run", run.Id, err)
	}
	s.auditor.RunStarted(ctx, run, sessionID)

	s.wg.Add(1)
	go s.execute(ctx, sessionID, run, chain.Steps, text)

	return run.Id, nil
}

// replay serves run from the ledger of sourceRunID. It reports false when the
// source ledger is unusable, in which case the caller runs the chain instead.
func (s *runService) replay(ctx context.Context, sessionID string, run *entity.Run, sourceRunID string) bool {
	payloads, err := s.ledger.Replay(ctx, sourceRunID)
	if err != nil {
		s.persistenceError("Failed to read source run ledger", sourceRunID, err)
		return false
	}
	if len(payloads) == 0 {
		return false
	}

	finished := time.Now()
	run.Status = constant.RunStatusDone
	run.SourceRunId = &sourceRunID
	run.FinishedAt = &finished
	if err := s.uowFactory.NewUnitOfWork(ctx).RunRepository().Create(ctx, run); err != nil {
		s.persistenceError("Failed to create replayed run", run.Id, err)
	}
	s.auditor.RunStarted(ctx, run, sessionID)

	s.sessions.Publish(sessionID, dto.Event{Type: constant.EventCacheHit, RunId: run.Id, Fp: run.Fingerprint})
	for _, payload := range payloads {
		s.sessions.Publish(sessionID, payload)
	}

	s.auditor.RunFinished(ctx, run, constant.RunStatusDone, "")
	return true
}

func (s *runService) execute(ctx context.Context, sessionID string, run *entity.Run, steps []pipeline.StepSpec, text string) {
	defer s.wg.Done()

	ctx, span := tracer.Start(ctx, "run.execute", trace.WithAttributes(
		attribute.String("riff.run_id", run.Id),
		attribute.String("riff.chain_id", run.ChainId),
		attribute.Int("riff.steps", len(steps)),
	))
	defer span.End()

	var runErr error
	for chunk, err := range s.runner.Run(ctx, steps, text) {
		if err != nil {
			runErr = err
			break
		}
		if chunk.Done {
			s.emit(ctx, sessionID, run.Id, dto.Event{
				Type:     constant.EventStepComplete,
				RunId:    run.Id,
				StepId:   chunk.StepID,
				Insights: chunk.Artifact,
			})
			continue
		}
		s.emit(ctx, sessionID, run.Id, dto.Event{
			Type:      constant.EventStream,
			RunId:     run.Id,
			StepId:    chunk.StepID,
			PersonaId: chunk.LaneID,
			Chunk:     chunk.Token,
		})
	}

	status := constant.RunStatusDone
	errCode := ""
	switch {
	case runErr == nil:
		s.emit(ctx, sessionID, run.Id, dto.Event{Type: constant.EventComplete, RunId: run.Id})
	case ctx.Err() != nil:
		// the session is gone, nobody is listening for an error event
		status = constant.RunStatusAborted
		errCode = constant.ErrCodeInternalError
	default:
		status = constant.RunStatusFailed
		errCode = generationErrorCode(runErr)
		span.RecordError(runErr)
		s.emit(ctx, sessionID, run.Id, dto.Event{Type: constant.EventError, RunId: run.Id, Error: errCode})
		s.logger.Warn("RunService", "Run failed", map[string]interface{}{"run_id": run.Id, "error": runErr.Error()})
	}

	// the session context may already be canceled; the run's outcome is still recorded
	bg := context.WithoutCancel(ctx)
	if err := s.uowFactory.NewUnitOfWork(bg).RunRepository().UpdateStatus(bg, run.Id, status, errCode, time.Now()); err != nil {
		s.persistenceError("Failed to update run status", run.Id, err)
	}
	if status == constant.RunStatusDone {
		s.cache.Set(bg, cache.Entry{Fingerprint: run.Fingerprint, Mode: cache.ModeRun, RunID: run.Id})
	}
	s.auditor.RunFinished(bg, run, status, errCode)
}

// emit appends the event to the run ledger, then publishes the stored bytes.
func (s *runService) emit(ctx context.Context, sessionID, runID string, ev dto.Event) {
	raw, err := s.ledger.Append(context.WithoutCancel(ctx), runID, ev.Type, ev)
	if err != nil {
		s.persistenceError("Failed to append run event", runID, err)
	}
	if raw == nil {
		s.sessions.Publish(sessionID, ev)
		return
	}
	s.sessions.Publish(sessionID, raw)
}

func (s *runService) Show(ctx context.Context, id string) (*dto.RunResponse, error) {
	run, err := s.uowFactory.NewUnitOfWork(ctx).RunRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, ErrRunNotFound
	}

	return &dto.RunResponse{
		Id:          run.Id,
		ChainId:     run.ChainId,
		Fingerprint: run.Fingerprint,
		Status:      string(run.Status),
		Error:       run.Error,
		SourceRunId: run.SourceRunId,
		StartedAt:   run.StartedAt,
		FinishedAt:  run.FinishedAt,
	}, nil
}

// Events returns the ledger a client would see for the run; replayed runs
// resolve to their source run.
func (s *runService) Events(ctx context.Context, id string) ([]dto.RunEventResponse, error) {
	run, err := s.uowFactory.NewUnitOfWork(ctx).RunRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, ErrRunNotFound
	}

	ledgerID := run.Id
	if run.SourceRunId != nil {
		ledgerID = *run.SourceRunId
	}

	events, err := s.ledger.Events(ctx, ledgerID)
	if err != nil {
		return nil, err
	}

	res := make([]dto.RunEventResponse, len(events))
	for i, e := range events {
		res[i] = dto.RunEventResponse{Seq: e.Seq, Kind: e.Kind, Payload: e.Payload, Ts: e.Ts}
	}
	return res, nil
}

func (s *runService) Wait() {
	s.wg.Wait()
}

func (s *runService) persistenceError(message, runID string, err error) {
	s.logger.Error("RunService", message, map[string]interface{}{
		"code":   constant.ErrCodePersistenceError,
		"run_id": runID,
		"error":  err.Error(),
	})
}

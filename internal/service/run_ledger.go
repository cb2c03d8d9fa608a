package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"riff-be/internal/entity"
	"riff-be/internal/repository/scope"
	"riff-be/internal/repository/specification"
	"riff-be/internal/repository/unitofwork"
)

// IRunLedger is the append-only event log of pipeline runs.
type IRunLedger interface {
	// Append stores payload under the next sequence number of runID and returns
	// the exact bytes stored, which callers publish unchanged.
	Append(ctx context.Context, runID, kind string, payload any) (json.RawMessage, error)
	// Replay returns every stored payload of runID in append order.
	Replay(ctx context.Context, runID string) ([]json.RawMessage, error)
	Events(ctx context.Context, runID string) ([]*entity.RunEvent, error)
}

type runLedger struct {
	uowFactory unitofwork.RepositoryFactory
	now        func() time.Time
}

func NewRunLedger(uowFactory unitofwork.RepositoryFactory) IRunLedger {
	return &runLedger{uowFactory: uowFactory, now: time.Now}
}

func (l *runLedger) Append(ctx context.Context, runID, kind string, payload any) (json.RawMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", kind, err)
	}

	uow := l.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return raw, err
	}
	defer uow.Rollback()

	seq, err := uow.RunEventRepository().NextSeq(ctx, runID)
	if err != nil {
		return raw, err
	}

	if err := uow.RunEventRepository().Create(ctx, &entity.RunEvent{
		RunId:   runID,
		Seq:     seq,
		Kind:    kind,
		Payload: raw,
		Ts:      l.now(),
	}); err != nil {
		return raw, err
	}

	return raw, uow.Commit()
}

func (l *runLedger) Replay(ctx context.Context, runID string) ([]json.RawMessage, error) {
	events, err := l.Events(ctx, runID)
	if err != nil {
		return nil, err
	}
	out := make([]json.RawMessage, len(events))
	for i, e := range events {
		out[i] = e.Payload
	}
	return out, nil
}

func (l *runLedger) Events(ctx context.Context, runID string) ([]*entity.RunEvent, error) {
	uow := l.uowFactory.NewUnitOfWork(ctx)
	return uow.RunEventRepository().FindAll(ctx,
		specification.ByRunID{RunID: runID},
		specification.Scoped(scope.OrderBySeq),
	)
}

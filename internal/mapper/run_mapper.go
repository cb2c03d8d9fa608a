package mapper

import (
	"encoding/json"
	"time"

	"riff-be/internal/constant"
	"riff-be/internal/entity"
	"riff-be/internal/model"
)

type RunMapper struct{}

func NewRunMapper() *RunMapper {
	return &RunMapper{}
}

func (m *RunMapper) ToEntity(r *model.Run) *entity.Run {
	if r == nil {
		return nil
	}
	return &entity.Run{
		Id:          r.Id,
		ChainId:     r.ChainId,
		Fingerprint: r.Fingerprint,
		TextHash:    r.TextHash,
		Status:      constant.RunStatus(r.Status),
		Error:       r.Error,
		SourceRunId: r.SourceRunId,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
	}
}

func (m *RunMapper) ToModel(r *entity.Run) *model.Run {
	if r == nil {
		return nil
	}
	return &model.Run{
		Id:          r.Id,
		ChainId:     r.ChainId,
		Fingerprint: r.Fingerprint,
		TextHash:    r.TextHash,
		Status:      string(r.Status),
		Error:       r.Error,
		SourceRunId: r.SourceRunId,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
	}
}

func (m *RunMapper) EventToEntity(e *model.RunEvent) *entity.RunEvent {
	if e == nil {
		return nil
	}
	return &entity.RunEvent{
		Id:      e.Id,
		RunId:   e.RunId,
		Seq:     e.Seq,
		Kind:    e.Kind,
		Payload: json.RawMessage(e.Payload),
		Ts:      time.UnixMilli(e.Ts),
	}
}

func (m *RunMapper) EventToModel(e *entity.RunEvent) *model.RunEvent {
	if e == nil {
		return nil
	}
	return &model.RunEvent{
		Id:      e.Id,
		RunId:   e.RunId,
		Seq:     e.Seq,
		Kind:    e.Kind,
		Payload: string(e.Payload),
		Ts:      e.Ts.UnixMilli(),
	}
}

func (m *RunMapper) EventsToEntities(events []*model.RunEvent) []*entity.RunEvent {
	entities := make([]*entity.RunEvent, len(events))
	for i, e := range events {
		entities[i] = m.EventToEntity(e)
	}
	return entities
}

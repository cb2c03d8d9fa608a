package contract

import (
	"context"
	"time"

	"riff-be/internal/constant"
	"riff-be/internal/entity"
	"riff-be/internal/repository/specification"
)

type RunRepository interface {
	Create(ctx context.Context, run *entity.Run) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Run, error)
	UpdateStatus(ctx context.Context, id string, status constant.RunStatus, errMsg string, finishedAt time.Time) error
}

type RunEventRepository interface {
	// NextSeq returns the sequence number the next event of runID must take.
	NextSeq(ctx context.Context, runID string) (int, error)
	Create(ctx context.Context, event *entity.RunEvent) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RunEvent, error)
}

package contract

import (
	"context"

	"riff-be/internal/entity"
	"riff-be/internal/repository/specification"
)

type ChainRepository interface {
	Create(ctx context.Context, chain *entity.Chain) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chain, error)
	CreateShare(ctx context.Context, share *entity.Share) error
	FindShare(ctx context.Context, slug string) (*entity.Share, error)
}

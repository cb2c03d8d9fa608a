package contract

import (
	"context"

	"riff-be/internal/entity"
	"riff-be/internal/repository/specification"
)

type FingerprintRepository interface {
	// FindOne loads the fingerprint row and its stored insights.
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Fingerprint, error)
	Create(ctx context.Context, fp *entity.Fingerprint) error
	DeleteByFp(ctx context.Context, fp string) error
	DeleteAll(ctx context.Context) error
}

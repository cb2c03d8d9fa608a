package unitofwork

import (
	"context"

	"riff-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChainRepository() contract.ChainRepository
	RunRepository() contract.RunRepository
	RunEventRepository() contract.RunEventRepository
	FingerprintRepository() contract.FingerprintRepository
}

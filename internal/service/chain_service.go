package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"riff-be/internal/dto"
	"riff-be/internal/entity"
	"riff-be/internal/repository/specification"
	"riff-be/internal/repository/unitofwork"
	"riff-be/pkg/pipeline"

	"github.com/google/uuid"
)

var ErrChainNotFound = errors.New("chain not found")

type IChainService interface {
	Create(ctx context.Context, name string, steps []pipeline.StepSpec) (*dto.CreateChainResponse, error)
	// Resolve loads a chain by id, or by share slug when slug is set.
	Resolve(ctx context.Context, id, slug string) (*entity.Chain, error)
	Show(ctx context.Context, id, slug string) (*dto.ChainResponse, error)
	Share(ctx context.Context, id string) (*dto.ShareChainResponse, error)
}

type chainService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewChainService(uowFactory unitofwork.RepositoryFactory) IChainService {
	return &chainService{uowFactory: uowFactory}
}

func (c *chainService) Create(ctx context.Context, name string, steps []pipeline.StepSpec) (*dto.CreateChainResponse, error) {
	if err := pipeline.ValidateSteps(steps); err != nil {
		return nil, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	chain := entity.Chain{
		Id:        "chain-" + uuid.NewString(),
		Name:      name,
		Steps:     steps,
		CreatedAt: time.Now(),
	}

	if err := uow.ChainRepository().Create(ctx, &chain); err != nil {
		return nil, err
	}

	return &dto.CreateChainResponse{Id: chain.Id}, nil
}

func (c *chainService) Resolve(ctx context.Context, id, slug string) (*entity.Chain, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	if slug != "" {
		share, err := uow.ChainRepository().FindShare(ctx, slug)
		if err != nil {
			return nil, err
		}
		if share == nil {
			return nil, ErrChainNotFound
		}
		id = share.ChainId
	}
	if id == "" {
		return nil, ErrChainNotFound
	}

	chain, err := uow.ChainRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if chain == nil {
		return nil, ErrChainNotFound
	}
	return chain, nil
}

func (c *chainService) Show(ctx context.Context, id, slug string) (*dto.ChainResponse, error) {
	chain, err := c.Resolve(ctx, id, slug)
	if err != nil {
		return nil, err
	}

	createdAt := chain.CreatedAt
	return &dto.ChainResponse{
		Id:        chain.Id,
		Name:      chain.Name,
		Steps:     chain.Steps,
		CreatedAt: &createdAt,
	}, nil
}

func (c *chainService) Share(ctx context.Context, id string) (*dto.ShareChainResponse, error) {
	chain, err := c.Resolve(ctx, id, "")
	if err != nil {
		return nil, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	share := entity.Share{
		Slug:      newSlug(),
		ChainId:   chain.Id,
		CreatedAt: time.Now(),
	}
	if err := uow.ChainRepository().CreateShare(ctx, &share); err != nil {
		return nil, fmt.Errorf("create share: %w", err)
	}

	return &dto.ShareChainResponse{Slug: share.Slug, ChainId: share.ChainId}, nil
}

func newSlug() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

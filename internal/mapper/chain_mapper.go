package mapper

import (
	"encoding/json"

	"riff-be/internal/entity"
	"riff-be/internal/model"
	"riff-be/pkg/pipeline"

	"gorm.io/datatypes"
)

type ChainMapper struct{}

func NewChainMapper() *ChainMapper {
	return &ChainMapper{}
}

func (m *ChainMapper) ToEntity(c *model.Chain) (*entity.Chain, error) {
	if c == nil {
		return nil, nil
	}

	steps := make([]pipeline.StepSpec, 0)
	if len(c.StepsJson) > 0 {
		if err := json.Unmarshal(c.StepsJson, &steps); err != nil {
			return nil, err
		}
	}

	return &entity.Chain{
		Id:        c.Id,
		Name:      c.Name,
		Steps:     steps,
		CreatedAt: c.CreatedAt,
	}, nil
}

func (m *ChainMapper) ToModel(c *entity.Chain) (*model.Chain, error) {
	if c == nil {
		return nil, nil
	}

	steps := c.Steps
	if steps == nil {
		steps = []pipeline.StepSpec{}
	}
	raw, err := json.Marshal(steps)
	if err != nil {
		return nil, err
	}

	return &model.Chain{
		Id:        c.Id,
		Name:      c.Name,
		StepsJson: datatypes.JSON(raw),
		CreatedAt: c.CreatedAt,
	}, nil
}

func (m *ChainMapper) ShareToEntity(s *model.Share) *entity.Share {
	if s == nil {
		return nil
	}
	return &entity.Share{Slug: s.Slug, ChainId: s.ChainId, CreatedAt: s.CreatedAt}
}

func (m *ChainMapper) ShareToModel(s *entity.Share) *model.Share {
	if s == nil {
		return nil
	}
	return &model.Share{Slug: s.Slug, ChainId: s.ChainId, CreatedAt: s.CreatedAt}
}

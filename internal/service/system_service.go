package service

import (
	"context"

	"riff-be/internal/constant"
	"riff-be/internal/dto"
	"riff-be/internal/pkg/logger"
	"riff-be/pkg/prompt"
)

// SessionCounter reports how many sessions are attached locally.
type SessionCounter interface {
	SessionCount() int
}

// ClearableCache is the cache surface the operator endpoints need.
type ClearableCache interface {
	Clear(ctx context.Context) error
	Len() int
}

type ISystemService interface {
	Health() *dto.HealthResponse
	Personas() []dto.PersonaResponse
	// ClearCache empties both cache tiers. A failing durable purge is logged,
	// the in-memory tier is cleared regardless.
	ClearCache(ctx context.Context)
}

type systemService struct {
	instanceID string
	sessions   SessionCounter
	cache      ClearableCache
	logger     logger.ILogger
}

func NewSystemService(instanceID string, sessions SessionCounter, resultCache ClearableCache, log logger.ILogger) ISystemService {
	return &systemService{
		instanceID: instanceID,
		sessions:   sessions,
		cache:      resultCache,
		logger:     log,
	}
}

func (s *systemService) Health() *dto.HealthResponse {
	return &dto.HealthResponse{
		Status:     "ok",
		InstanceId: s.instanceID,
		Sessions:   s.sessions.SessionCount(),
		CacheSize:  s.cache.Len(),
	}
}

func (s *systemService) Personas() []dto.PersonaResponse {
	catalogue := prompt.Personas()
	res := make([]dto.PersonaResponse, len(catalogue))
	for i, p := range catalogue {
		res[i] = dto.PersonaResponse{
			Id:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Color:       p.Color,
		}
	}
	return res
}

func (s *systemService) ClearCache(ctx context.Context) {
	if err := s.cache.Clear(ctx); err != nil {
		s.logger.Error("SystemService", "Failed to purge durable cache", map[string]interface{}{
			"code":  constant.ErrCodePersistenceError,
			"error": err.Error(),
		})
		return
	}
	s.logger.Info("SystemService", "Cache cleared", nil)
}

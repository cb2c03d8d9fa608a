package service

import (
	"context"
	"errors"
	"iter"
	"strings"

	"riff-be/internal/constant"
	"riff-be/internal/dto"
	"riff-be/internal/pkg/logger"
	"riff-be/internal/repository/memory"
	"riff-be/pkg/cache"
	"riff-be/pkg/fingerprint"
	"riff-be/pkg/generation"
	"riff-be/pkg/insight"
	"riff-be/pkg/novelty"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("riff-be/internal/service")

// ResultCache is the two-tier insight cache.
type ResultCache interface {
	Get(ctx context.Context, fp string) (cache.Entry, bool)
	Set(ctx context.Context, entry cache.Entry)
}

// LaneGenerator produces the streamed critique analyze publishes.
type LaneGenerator interface {
	Insights(ctx context.Context, text string) iter.Seq2[string, error]
	Lanes(ctx context.Context, text string, lanes []string) iter.Seq2[generation.LaneChunk, error]
}

type IAnalyzeService interface {
	Analyze(ctx context.Context, sessionID string, cmd *dto.AnalyzeCommand) dto.RpcResult
}

type AnalyzeOptions struct {
	NoveltyGate bool
}

type analyzeService struct {
	cache     ResultCache
	generator LaneGenerator
	sessions  SessionPublisher
	memory    *memory.SessionRepository
	bias      IBiasScheduler
	logger    logger.ILogger
	opts      AnalyzeOptions
}

func NewAnalyzeService(
	resultCache ResultCache,
	generator LaneGenerator,
	sessions SessionPublisher,
	sessionMemory *memory.SessionRepository,
	bias IBiasScheduler,
	log logger.ILogger,
	opts AnalyzeOptions,
) IAnalyzeService {
	return &analyzeService{
		cache:     resultCache,
		generator: generator,
		sessions:  sessions,
		memory:    sessionMemory,
		bias:      bias,
		logger:    log,
		opts:      opts,
	}
}

func (s *analyzeService) Analyze(ctx context.Context, sessionID string, cmd *dto.AnalyzeCommand) dto.RpcResult {
	ctx, span := tracer.Start(ctx, "analyze")
	defer span.End()

	lanes := uniqueLanes(cmd.Personas)
	span.SetAttributes(attribute.Int("riff.lanes", len(lanes)))

	if s.opts.NoveltyGate && s.memory != nil {
		session := s.memory.GetOrCreate(sessionID)
		laneKey := fingerprint.Of("", lanes)
		if session.LastLanes == laneKey && !novelty.IsNovel(cmd.Text, session.LastText) {
			s.logger.Debug("AnalyzeService", "Skipping analyze, text is not novel", map[string]interface{}{"session_id": sessionID})
			return dto.Ok(dto.AnalyzeSkippedResponse{Skipped: true})
		}
		text := cmd.Text
		session.LastText = &text
		session.LastLanes = laneKey
		s.memory.Save(session)
	}

	fp := fingerprint.Of(cmd.Text, lanes)
	span.SetAttributes(attribute.String("riff.fp", fp))

	if entry, ok := s.cache.Get(ctx, fp); ok && entry.Mode != cache.ModeRun {
		s.logger.Info("AnalyzeService", "cache-hit", map[string]interface{}{"session_id": sessionID, "fp": fp})
		s.replay(sessionID, fp, lanes, entry)
	} else {
		var err error
		if len(lanes) == 0 {
			err = s.single(ctx, sessionID, fp, cmd.Text)
		} else {
			err = s.multi(ctx, sessionID, fp, cmd.Text, lanes)
		}
		if err != nil {
			span.RecordError(err)
			return dto.Fail(generationErrorCode(err))
		}
	}

	if cmd.DetectBias && s.bias != nil {
		s.bias.Schedule(ctx, sessionID, cmd.Text)
	}

	return dto.Ok(nil)
}

func (s *analyzeService) replay(sessionID, fp string, lanes []string, entry cache.Entry) {
	hit := dto.Event{Type: constant.EventCacheHit, Fp: fp, Personas: lanes}
	if len(lanes) == 0 {
		hit.Insights = nonNil(entry.Lanes[insight.SingleLane])
		s.sessions.Publish(sessionID, hit)
		s.sessions.Publish(sessionID, dto.Event{Type: constant.EventComplete, Insights: hit.Insights})
		return
	}

	hit.BandInsights = entry.Lanes
	s.sessions.Publish(sessionID, hit)
	for _, lane := range lanes {
		s.sessions.Publish(sessionID, dto.Event{
			Type:      constant.EventComplete,
			PersonaId: lane,
			Insights:  nonNil(entry.Lanes[lane]),
		})
	}
}

func (s *analyzeService) single(ctx context.Context, sessionID, fp, text string) error {
	var full strings.Builder
	for token, err := range s.generator.Insights(ctx, text) {
		if err != nil {
			return err
		}
		full.WriteString(token)
		s.sessions.Publish(sessionID, dto.Event{Type: constant.EventStream, Chunk: token})
	}

	list := insight.DecodeList(full.String())
	s.cache.Set(ctx, cache.Entry{
		Fingerprint: fp,
		Mode:        cache.ModeSingle,
		Lanes:       map[string][]insight.Insight{insight.SingleLane: list},
	})
	s.sessions.Publish(sessionID, dto.Event{Type: constant.EventComplete, Insights: list})
	return nil
}

func (s *analyzeService) multi(ctx context.Context, sessionID, fp, text string, lanes []string) error {
	var result map[string][]insight.Insight
	for chunk, err := range s.generator.Lanes(ctx, text, lanes) {
		if err != nil {
			return err
		}
		if chunk.Final {
			result = chunk.Result
			break
		}
		s.sessions.Publish(sessionID, dto.Event{Type: constant.EventStream, PersonaId: chunk.LaneID, Chunk: chunk.Chunk})
	}
	if result == nil {
		return ctx.Err()
	}

	s.cache.Set(ctx, cache.Entry{Fingerprint: fp, Mode: cache.ModeMulti, Lanes: result})
	for _, lane := range lanes {
		s.sessions.Publish(sessionID, dto.Event{
			Type:      constant.EventComplete,
			PersonaId: lane,
			Insights:  nonNil(result[lane]),
		})
	}
	return nil
}

// uniqueLanes drops blanks and repeats while keeping first-seen order.
func uniqueLanes(personas []string) []string {
	seen := make(map[string]struct{}, len(personas))
	out := make([]string, 0, len(personas))
	for _, p := range personas {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func nonNil(list []insight.Insight) []insight.Insight {
	if list == nil {
		return []insight.Insight{}
	}
	return list
}

func generationErrorCode(err error) string {
	switch {
	case errors.Is(err, generation.ErrTimeout):
		return constant.ErrCodeGenerationTimeout
	case errors.Is(err, context.Canceled):
		return constant.ErrCodeInternalError
	default:
		return constant.ErrCodeGenerationError
	}
}

// Package generation turns raw provider output into the token streams the
// analysis paths consume. The provider returns whole blobs; streaming is
// simulated word by word with an optional delay between fragments.
package generation

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"riff-be/pkg/insight"
	"riff-be/pkg/llm"
	"riff-be/pkg/prompt"
)

var (
	ErrTimeout    = errors.New("generation timed out")
	ErrGeneration = errors.New("generation failed")
	ErrNoProvider = errors.New("no generation provider configured")
)

// LaneChunk is a streamed fragment of one lane, or (Final) the parsed result
// for every requested lane.
type LaneChunk struct {
	LaneID string
	Chunk  string
	Final  bool
	Result map[string][]insight.Insight
}

type Config struct {
	// Timeout bounds every provider call; zero disables the bound.
	Timeout time.Duration
	// StreamDelay is inserted between streamed fragments.
	StreamDelay time.Duration
	// Temperature overrides the provider default when positive.
	Temperature float64
}

type Service struct {
	provider llm.LLMProvider
	cfg      Config
}

func NewService(provider llm.LLMProvider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

// Insights streams single-lane critique of text.
func (s *Service) Insights(ctx context.Context, text string) iter.Seq2[string, error] {
	return s.streamWords(ctx, prompt.Insights(text))
}

// Summary streams a plain-text summary of text.
func (s *Service) Summary(ctx context.Context, text string) iter.Seq2[string, error] {
	return s.streamWords(ctx, prompt.Summary(text))
}

// Lanes generates critique for all lanes in one call, streams each lane's
// rendering interleaved word by word in lane order, then yields the parsed
// per-lane result as the final element.
func (s *Service) Lanes(ctx context.Context, text string, lanes []string) iter.Seq2[LaneChunk, error] {
	return func(yield func(LaneChunk, error) bool) {
		raw, err := s.generate(ctx, prompt.Lanes(text, lanes))
		if err != nil {
			yield(LaneChunk{}, err)
			return
		}
		parsed := insight.DecodeLanes(raw, lanes)

		words := make(map[string][]string, len(lanes))
		longest := 0
		for _, lane := range lanes {
			w := strings.Split(renderLane(parsed[lane]), " ")
			words[lane] = w
			longest = max(longest, len(w))
		}

		for i := 0; i < longest; i++ {
			for _, lane := range lanes {
				w := words[lane]
				if i >= len(w) {
					continue
				}
				chunk := w[i]
				if i > 0 {
					chunk = " " + chunk
				}
				if !yield(LaneChunk{LaneID: lane, Chunk: chunk}, nil) {
					return
				}
				if err := s.pause(ctx); err != nil {
					yield(LaneChunk{}, err)
					return
				}
			}
		}

		yield(LaneChunk{Final: true, Result: parsed}, nil)
	}
}

// Biases runs bias detection on text. Results are never cached.
func (s *Service) Biases(ctx context.Context, text string) ([]insight.Bias, error) {
	raw, err := s.generate(ctx, prompt.Biases(text))
	if err != nil {
		return nil, err
	}
	return insight.ParseBiases(raw, text)
}

func (s *Service) streamWords(ctx context.Context, p string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		full, err := s.generate(ctx, p)
		if err != nil {
			yield("", err)
			return
		}
		if full == "" {
			return
		}
		for i, word := range strings.Split(full, " ") {
			chunk := word
			if i > 0 {
				chunk = " " + word
			}
			if !yield(chunk, nil) {
				return
			}
			if err := s.pause(ctx); err != nil {
				yield("", err)
				return
			}
		}
	}
}

type result struct {
	text string
	err  error
}

// generate calls the provider with a bounded wait. The wait is enforced here
// as well as through the context so a provider that ignores cancellation
// cannot hang the caller.
func (s *Service) generate(ctx context.Context, p string) (string, error) {
	if s.provider == nil {
		return "", ErrNoProvider
	}

	callCtx := ctx
	cancel := context.CancelFunc(func() {})
	if s.cfg.Timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
	}
	defer cancel()

	done := make(chan result, 1)
	go func() {
		text, err := s.provider.Generate(callCtx, p, s.options()...)
		done <- result{text: text, err: err}
	}()

	select {
	case r := <-done:
		if r.err == nil {
			return r.text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s", ErrTimeout, s.cfg.Timeout)
		}
		return "", fmt.Errorf("%w: %w", ErrGeneration, r.err)
	case <-callCtx.Done():
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w after %s", ErrTimeout, s.cfg.Timeout)
	}
}

func (s *Service) pause(ctx context.Context) error {
	if s.cfg.StreamDelay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.cfg.StreamDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func renderLane(list []insight.Insight) string {
	parts := make([]string, 0, len(list))
	for _, in := range list {
		var prefix string
		switch in.Type {
		case insight.TypeCounterArgument:
			prefix = "Counterpoint: "
		case insight.TypeQuestion:
			prefix = "Question: "
		default:
			prefix = "Lateral: "
		}
		parts = append(parts, prefix+in.Content)
	}
	return strings.Join(parts, " ")
}

func (s *Service) options() []llm.Option {
	if s.cfg.Temperature <= 0 {
		return nil
	}
	return []llm.Option{llm.WithTemperature(s.cfg.Temperature)}
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"riff-be/internal/constant"
	"riff-be/internal/dto"
	"riff-be/internal/pkg/logger"
	"riff-be/internal/pkg/serverutils"
	"riff-be/pkg/pipeline"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var errInvalidPayload = errors.New("invalid payload")

// IDispatcherService routes one raw command from a session to its handler.
type IDispatcherService interface {
	// Dispatch never panics on malformed input; every failure is reported as
	// a RpcResult error code and leaves no side effects.
	Dispatch(ctx context.Context, sessionID string, raw []byte) dto.RpcResult
}

type commandHandler func(ctx context.Context, sessionID string, raw []byte) dto.RpcResult

type dispatcherService struct {
	chains   IChainService
	runs     IRunService
	analyze  IAnalyzeService
	logger   logger.ILogger
	handlers map[string]commandHandler
}

func NewDispatcherService(chains IChainService, runs IRunService, analyze IAnalyzeService, log logger.ILogger) IDispatcherService {
	d := &dispatcherService{
		chains:  chains,
		runs:    runs,
		analyze: analyze,
		logger:  log,
	}
	d.handlers = map[string]commandHandler{
		constant.CommandChainCreate: d.chainCreate,
		constant.CommandChainGet:    d.chainGet,
		constant.CommandRunExecute:  d.runExecute,
		constant.CommandAnalyze:     d.analyzeText,
	}
	return d
}

func (d *dispatcherService) Dispatch(ctx context.Context, sessionID string, raw []byte) dto.RpcResult {
	var env dto.Envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Type == "" {
		return dto.Fail(constant.ErrCodeInvalidPayload)
	}

	handler, ok := d.handlers[env.Type]
	if !ok {
		// a tag outside the command set is a shape mismatch, not a routing miss
		return dto.Fail(constant.ErrCodeInvalidPayload)
	}

	ctx, span := tracer.Start(ctx, "command "+env.Type, trace.WithAttributes(
		attribute.String("riff.command", env.Type),
		attribute.String("riff.session_id", sessionID),
	))
	defer span.End()

	result := handler(ctx, sessionID, raw)
	if !result.Ok {
		span.SetStatus(codes.Error, result.Error)
	}
	return result
}

func (d *dispatcherService) chainCreate(ctx context.Context, _ string, raw []byte) dto.RpcResult {
	var cmd dto.ChainCreateCommand
	if err := decodeCommand(raw, &cmd); err != nil {
		return d.invalid(constant.CommandChainCreate, err)
	}
	if err := pipeline.ValidateSteps(cmd.Steps); err != nil {
		return d.invalid(constant.CommandChainCreate, err)
	}

	res, err := d.chains.Create(ctx, cmd.Name, cmd.Steps)
	if err != nil {
		return d.failure(constant.CommandChainCreate, err)
	}
	return dto.Ok(res)
}

func (d *dispatcherService) chainGet(ctx context.Context, _ string, raw []byte) dto.RpcResult {
	var cmd dto.ChainGetCommand
	if err := decodeCommand(raw, &cmd); err != nil {
		return d.invalid(constant.CommandChainGet, err)
	}

	res, err := d.chains.Show(ctx, cmd.Id, cmd.Slug)
	if err != nil {
		return d.failure(constant.CommandChainGet, err)
	}
	return dto.Ok(res)
}

func (d *dispatcherService) runExecute(ctx context.Context, sessionID string, raw []byte) dto.RpcResult {
	var cmd dto.RunExecuteCommand
	if err := decodeCommand(raw, &cmd); err != nil {
		return d.invalid(constant.CommandRunExecute, err)
	}

	chain, err := d.chains.Resolve(ctx, cmd.ChainId, cmd.Slug)
	if err != nil {
		return d.failure(constant.CommandRunExecute, err)
	}

	runID, err := d.runs.Execute(ctx, sessionID, chain, cmd.Text)
	if err != nil {
		return d.failure(constant.CommandRunExecute, err)
	}
	return dto.Ok(dto.RunExecuteResponse{RunId: runID})
}

func (d *dispatcherService) analyzeText(ctx context.Context, sessionID string, raw []byte) dto.RpcResult {
	var cmd dto.AnalyzeCommand
	if err := decodeCommand(raw, &cmd); err != nil {
		return d.invalid(constant.CommandAnalyze, err)
	}
	return d.analyze.Analyze(ctx, sessionID, &cmd)
}

func (d *dispatcherService) invalid(command string, err error) dto.RpcResult {
	d.logger.Debug("Dispatcher", "Rejected command payload", map[string]interface{}{
		"command": command,
		"error":   err.Error(),
	})
	return dto.Fail(constant.ErrCodeInvalidPayload)
}

func (d *dispatcherService) failure(command string, err error) dto.RpcResult {
	if errors.Is(err, ErrChainNotFound) {
		return dto.Fail(constant.ErrCodeChainNotFound)
	}
	d.logger.Error("Dispatcher", "Command failed", map[string]interface{}{
		"command": command,
		"error":   err.Error(),
	})
	return dto.Fail(constant.ErrCodeInternalError)
}

// decodeCommand decodes raw strictly into v and validates it.
func decodeCommand(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errInvalidPayload, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", errInvalidPayload)
	}
	if err := serverutils.Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %w", errInvalidPayload, err)
	}
	return nil
}

package controller

import (
	"errors"

	"riff-be/internal/constant"
	"riff-be/internal/pkg/serverutils"
	"riff-be/internal/service"
	"riff-be/pkg/pipeline"

	"github.com/gofiber/fiber/v2"
)

// toAppError maps service errors onto the REST error envelope.
func toAppError(err error) error {
	switch {
	case errors.Is(err, service.ErrChainNotFound):
		return serverutils.NewAppError(fiber.StatusNotFound, constant.ErrCodeChainNotFound, "chain not found")
	case errors.Is(err, service.ErrRunNotFound):
		return serverutils.NewAppError(fiber.StatusNotFound, constant.ErrCodeRunNotFound, "run not found")
	case errors.Is(err, pipeline.ErrUnknownKind),
		errors.Is(err, pipeline.ErrUnknownTransform),
		errors.Is(err, pipeline.ErrDuplicateStepID),
		errors.Is(err, pipeline.ErrInvalidConfig):
		return serverutils.NewAppError(fiber.StatusBadRequest, constant.ErrCodeInvalidPayload, err.Error())
	default:
		return err
	}
}

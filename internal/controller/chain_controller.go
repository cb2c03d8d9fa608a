package controller

import (
	"errors"

	"riff-be/internal/constant"
	"riff-be/internal/dto"
	"riff-be/internal/pkg/serverutils"
	"riff-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

type IChainController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Share(ctx *fiber.Ctx) error
}

type chainController struct {
	service service.IChainService
}

func NewChainController(service service.IChainService) IChainController {
	return &chainController{service: service}
}

func (c *chainController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chains")
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Post(":id/share", c.Share)
}

func (c *chainController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateChainRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewAppError(fiber.StatusBadRequest, constant.ErrCodeInvalidPayload, err.Error())
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.UserContext(), req.Name, req.Steps)
	if err != nil {
		return toAppError(err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create chain", res))
}

// Show accepts a chain id or a share slug.
func (c *chainController) Show(ctx *fiber.Ctx) error {
	id := utils.CopyString(ctx.Params("id"))

	res, err := c.service.Show(ctx.UserContext(), id, "")
	if errors.Is(err, service.ErrChainNotFound) {
		res, err = c.service.Show(ctx.UserContext(), "", id)
	}
	if err != nil {
		return toAppError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show chain", res))
}

func (c *chainController) Share(ctx *fiber.Ctx) error {
	res, err := c.service.Share(ctx.UserContext(), utils.CopyString(ctx.Params("id")))
	if err != nil {
		return toAppError(err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success share chain", res))
}

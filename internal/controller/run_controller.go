package controller

import (
	"riff-be/internal/pkg/serverutils"
	"riff-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

type IRunController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	Events(ctx *fiber.Ctx) error
}

type runController struct {
	service service.IRunService
}

func NewRunController(service service.IRunService) IRunController {
	return &runController{service: service}
}

func (c *runController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/runs")
	h.Get(":id", c.Show)
	h.Get(":id/events", c.Events)
}

func (c *runController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.Show(ctx.UserContext(), utils.CopyString(ctx.Params("id")))
	if err != nil {
		return toAppError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show run", res))
}

func (c *runController) Events(ctx *fiber.Ctx) error {
	res, err := c.service.Events(ctx.UserContext(), utils.CopyString(ctx.Params("id")))
	if err != nil {
		return toAppError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get run events", res))
}

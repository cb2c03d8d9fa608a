package controller

import (
	"riff-be/internal/pkg/serverutils"
	"riff-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISystemController interface {
	RegisterRoutes(r fiber.Router)
	RegisterHealth(app *fiber.App)
	Health(ctx *fiber.Ctx) error
	Personas(ctx *fiber.Ctx) error
	ClearCache(ctx *fiber.Ctx) error
}

type systemController struct {
	service service.ISystemService
}

func NewSystemController(service service.ISystemService) ISystemController {
	return &systemController{service: service}
}

func (c *systemController) RegisterRoutes(r fiber.Router) {
	r.Get("/personas", c.Personas)
	r.Delete("/cache", c.ClearCache)
}

func (c *systemController) RegisterHealth(app *fiber.App) {
	app.Get("/health", c.Health)
}

func (c *systemController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(c.service.Health())
}

func (c *systemController) Personas(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get personas", c.service.Personas()))
}

func (c *systemController) ClearCache(ctx *fiber.Ctx) error {
	c.service.ClearCache(ctx.UserContext())
	return ctx.JSON(serverutils.SuccessResponse[any]("Success clear cache", nil))
}

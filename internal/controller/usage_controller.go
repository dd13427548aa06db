package controller

import (
	"legal-annotation-be/internal/pkg/serverutils"
	"legal-annotation-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUsageController interface {
	RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler)
}

type usageController struct {
	usageService service.IUsageService
}

func NewUsageController(usageService service.IUsageService) IUsageController {
	return &usageController{
		usageService: usageService,
	}
}

func (c *usageController) RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler) {
	// Public endpoints
	api.Get("/plans", c.GetAllPlans)

	usage := api.Group("/usage/v1", jwtMiddleware)
	usage.Get("/status", c.GetUsageStatus)
}

// GetAllPlans returns all active plans with their limits
// @Summary Get all subscription plans
// @Tags Plans
// @Produce json
// @Success 200 {object} []dto.PlanWithFeaturesResponse
// @Router /api/plans [get]
func (c *usageController) GetAllPlans(ctx *fiber.Ctx) error {
	plans, err := c.usageService.GetAllActivePlans(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Plans retrieved", plans))
}

// GetUsageStatus returns current usage vs limits for the authenticated user
// @Summary Get user usage status
// @Tags Usage
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UsageStatusResponse
// @Router /api/usage/v1/status [get]
func (c *usageController) GetUsageStatus(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	status, err := c.usageService.GetUserUsageStatus(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Usage status retrieved", status))
}

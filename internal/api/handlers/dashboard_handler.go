package handlers

import (
	"farmxchain/domain"
	"farmxchain/internal/api/presenters"
	"farmxchain/pkg/dashboard"

	"github.com/gofiber/fiber/v2"
)

type (
	DashboardHandler interface {
		GetDashboard(c *fiber.Ctx) error
		GetDashboardStats(c *fiber.Ctx) error
		GetInventory(c *fiber.Ctx) error
	}

	dashboardHandler struct {
		dashboardService dashboard.DashboardService
	}
)

func NewDashboardHandler(dashboardService dashboard.DashboardService) DashboardHandler {
	return &dashboardHandler{dashboardService: dashboardService}
}

func (h *dashboardHandler) GetDashboard(c *fiber.Ctx) error {
	d, err := h.dashboardService.For(localString(c, "role"))
	if err != nil {
		return failure(c, domain.MessageFailedGetDashboard, err)
	}

	res, err := d.Overview(c.Context())
	if err != nil {
		return failure(c, domain.MessageFailedGetDashboard, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetDashboard)
}

func (h *dashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	d, err := h.dashboardService.For(localString(c, "role"))
	if err != nil {
		return failure(c, domain.MessageFailedGetDashboardStats, err)
	}

	stats, err := d.Stats(c.Context())
	if err != nil {
		return failure(c, domain.MessageFailedGetDashboardStats, err)
	}

	return presenters.SuccessResponse(c, stats, fiber.StatusOK, domain.MessageSuccessGetDashboardStats)
}

func (h *dashboardHandler) GetInventory(c *fiber.Ctx) error {
	d, err := h.dashboardService.For(localString(c, "role"))
	if err != nil {
		return failure(c, domain.MessageFailedGetInventory, err)
	}

	items, err := d.Inventory(c.Context())
	if err != nil {
		return failure(c, domain.MessageFailedGetInventory, err)
	}

	return presenters.SuccessResponse(c, items, fiber.StatusOK, domain.MessageSuccessGetInventory)
}

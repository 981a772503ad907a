package handlers

import (
	"slices"

	"farmxchain/domain"
	"farmxchain/internal/api/presenters"
	"farmxchain/pkg/dashboard"
	"farmxchain/pkg/order"
	"farmxchain/pkg/payment"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	OrderHandler interface {
		GetOrders(c *fiber.Ctx) error
		PlaceOrder(c *fiber.Ctx) error
		UpdateStatus(c *fiber.Ctx) error
		CreatePayment(c *fiber.Ctx) error
	}

	orderHandler struct {
		dashboardService dashboard.DashboardService
		orderService     order.OrderService
		paymentService   payment.PaymentService
		validator        *validator.Validate
	}
)

func NewOrderHandler(
	dashboardService dashboard.DashboardService,
	orderService order.OrderService,
	paymentService payment.PaymentService,
	validator *validator.Validate,
) OrderHandler {
	return &orderHandler{
		dashboardService: dashboardService,
		orderService:     orderService,
		paymentService:   paymentService,
		validator:        validator,
	}
}

func (h *orderHandler) GetOrders(c *fiber.Ctx) error {
	d, err := h.dashboardService.For(localString(c, "role"))
	if err != nil {
		return failure(c, domain.MessageFailedGetOrders, err)
	}

	orders, err := d.Orders(c.Context(), c.Params("log"))
	if err != nil {
		return failure(c, domain.MessageFailedGetOrders, err)
	}

	return presenters.SuccessResponse(c, orders, fiber.StatusOK, domain.MessageSuccessGetOrders)
}

func (h *orderHandler) PlaceOrder(c *fiber.Ctx) error {
	req := new(domain.PlaceOrderRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if req.PlacedBy == "" {
		req.PlacedBy = localString(c, "email")
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedPlaceOrder, err)
	}

	d, err := h.dashboardService.For(localString(c, "role"))
	if err != nil {
		return failure(c, domain.MessageFailedPlaceOrder, err)
	}

	placed, err := d.Place(c.Context(), *req)
	if err != nil {
		return failure(c, domain.MessageFailedPlaceOrder, err)
	}

	return presenters.SuccessResponse(c, placed, fiber.StatusCreated, domain.MessageSuccessPlaceOrder)
}

func (h *orderHandler) UpdateStatus(c *fiber.Ctx) error {
	req := new(domain.UpdateOrderStatusRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateStatus, err)
	}

	d, err := h.dashboardService.For(localString(c, "role"))
	if err != nil {
		return failure(c, domain.MessageFailedUpdateStatus, err)
	}

	res, err := d.Advance(c.Context(), c.Params("log"), c.Params("id"), req.Status)
	if err != nil {
		return failure(c, domain.MessageFailedUpdateStatus, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateStatus)
}

// CreatePayment opens a Midtrans payment for an order the caller's role places.
func (h *orderHandler) CreatePayment(c *fiber.Ctx) error {
	logName := c.Params("log")

	d, err := h.dashboardService.For(localString(c, "role"))
	if err != nil {
		return failure(c, domain.MessageFailedCreatePayment, err)
	}
	if !slices.Contains(d.Role().Places, logName) {
		return presenters.ErrorResponse(c, fiber.StatusForbidden, domain.MessageFailedCreatePayment, domain.ErrForbiddenAction)
	}

	o, err := h.orderService.GetOrder(c.Context(), logName, c.Params("id"))
	if err != nil {
		return failure(c, domain.MessageFailedCreatePayment, err)
	}

	res, err := h.paymentService.CreatePayment(c.Context(), o)
	if err != nil {
		return failure(c, domain.MessageFailedCreatePayment, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCreatePayment)
}

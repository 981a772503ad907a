package handlers

import (
	"strconv"

	"farmxchain/domain"
	"farmxchain/internal/api/presenters"
	"farmxchain/pkg/account"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	UserHandler interface {
		Login(c *fiber.Ctx) error
		Register(c *fiber.Ctx) error
		GetUsers(c *fiber.Ctx) error
		DeleteUser(c *fiber.Ctx) error
		UpdateRole(c *fiber.Ctx) error
	}

	userHandler struct {
		accountService account.AccountService
		validator      *validator.Validate
	}
)

func NewUserHandler(accountService account.AccountService, validator *validator.Validate) UserHandler {
	return &userHandler{
		accountService: accountService,
		validator:      validator,
	}
}

func (h *userHandler) Login(c *fiber.Ctx) error {
	req := new(domain.LoginRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedLogin, err)
	}

	res, err := h.accountService.Login(c.Context(), *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedLogin, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessLogin)
}

func (h *userHandler) Register(c *fiber.Ctx) error {
	req := new(domain.RegisterRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedRegister, err)
	}

	user, err := h.accountService.Register(c.Context(), *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedRegister, err)
	}

	return presenters.SuccessResponse(c, user, fiber.StatusCreated, domain.MessageSuccessRegister)
}

func (h *userHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.accountService.GetUsers(c.Context(), localString(c, "upstream_token"))
	if err != nil {
		return failure(c, domain.MessageFailedGetUsers, err)
	}

	return presenters.SuccessResponse(c, users, fiber.StatusOK, domain.MessageSuccessGetUsers)
}

func (h *userHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedDeleteUser, err)
	}

	if err := h.accountService.DeleteUser(c.Context(), localString(c, "upstream_token"), id); err != nil {
		return failure(c, domain.MessageFailedDeleteUser, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteUser)
}

func (h *userHandler) UpdateRole(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateRole, err)
	}

	req := new(domain.UpdateRoleRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateRole, err)
	}

	if err := h.accountService.UpdateRole(c.Context(), localString(c, "upstream_token"), id, req.Role); err != nil {
		return failure(c, domain.MessageFailedUpdateRole, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{"id": id, "role": domain.NormalizeRole(req.Role)}, fiber.StatusOK, domain.MessageSuccessUpdateRole)
}

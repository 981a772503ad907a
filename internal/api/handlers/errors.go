package handlers

import (
	"errors"

	"farmxchain/domain"
	"farmxchain/internal/api/presenters"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrAuthorization):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrForbiddenAction),
		errors.Is(err, domain.ErrUnknownRolePair),
		errors.Is(err, domain.ErrUserNotAllowed):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrUnknownLog),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrInventoryItemNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateOrder):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrAccountBackend),
		errors.Is(err, domain.ErrPaymentFailed):
		return fiber.StatusBadGateway
	case errors.Is(err, domain.ErrLedgerClosed):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// failure writes err with its mapped status. Rejected upstream credentials
// tell the dashboard to log out.
func failure(c *fiber.Ctx, message string, err error) error {
	if errors.Is(err, domain.ErrAuthorization) {
		return presenters.ErrorResponseWithData(c, fiber.StatusUnauthorized, message, err, fiber.Map{"logout": true})
	}
	return presenters.ErrorResponse(c, statusFor(err), message, err)
}

func localString(c *fiber.Ctx, key string) string {
	v, _ := c.Locals(key).(string)
	return v
}

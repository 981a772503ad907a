package middleware

import (
	"errors"
	"slices"
	"strings"

	"farmxchain/domain"
	"farmxchain/internal/api/presenters"
	"farmxchain/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type (
	Middleware interface {
		CORSMiddleware() fiber.Handler
		AuthMiddleware(jwtService jwt.JWTService) fiber.Handler
		RoleMiddleware(roles ...string) fiber.Handler
	}

	middleware struct{}
)

func NewMiddleware() Middleware {
	return &middleware{}
}

func (m *middleware) CORSMiddleware() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	})
}

// AuthMiddleware validates the bearer token and stores user_id, role, email
// and upstream_token in the request locals.
func (m *middleware) AuthMiddleware(jwtService jwt.JWTService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return presenters.ErrorResponseWithData(c, fiber.StatusUnauthorized, domain.MessageFailedGetToken, domain.ErrTokenNotFound, fiber.Map{"logout": true})
		}

		claims, err := jwtService.GetClaims(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			if errors.Is(err, domain.ErrTokenExpired) {
				return presenters.ErrorResponseWithData(c, fiber.StatusUnauthorized, domain.MessageFailedTokenInvalid, err, fiber.Map{"logout": true})
			}
			return presenters.ErrorResponseWithData(c, fiber.StatusUnauthorized, domain.MessageFailedTokenInvalid, domain.ErrTokenInvalid, fiber.Map{"logout": true})
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("role", claims.Role)
		c.Locals("email", claims.Email)
		c.Locals("upstream_token", claims.Upstream)
		return c.Next()
	}
}

// RoleMiddleware allows the request only for the listed roles. It must run after AuthMiddleware.
func (m *middleware) RoleMiddleware(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if !slices.Contains(roles, domain.NormalizeRole(role)) {
			return presenters.ErrorResponse(c, fiber.StatusForbidden, domain.MesaageUserNotAllowed, domain.ErrUserNotAllowed)
		}
		return c.Next()
	}
}

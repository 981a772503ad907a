package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"farmxchain/domain"
	"farmxchain/internal/api/presenters"
	"farmxchain/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(jwtService jwt.JWTService) *fiber.App {
	m := NewMiddleware()
	app := fiber.New()
	app.Get("/distributor", m.AuthMiddleware(jwtService), m.RoleMiddleware(domain.RoleDistributor), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("user_id").(string))
	})
	return app
}

func TestAuthAndRole(t *testing.T) {
	jwtService := jwt.NewJWTServiceWithSecret("test")
	app := newApp(jwtService)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"wrong role", "Bearer " + jwtService.GenerateTokenUser(domain.User{ID: 2, Role: "customer"}, ""), http.StatusForbidden},
		{"allowed", "Bearer " + jwtService.GenerateTokenUser(domain.User{ID: 3, Role: "Distributor"}, ""), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/distributor", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)

			if tc.status == http.StatusUnauthorized {
				var body presenters.Response
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, map[string]any{"logout": true}, body.Data)
			}
		})
	}
}

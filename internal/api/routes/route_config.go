package routes

import (
	"farmxchain/domain"
	"farmxchain/internal/api/handlers"
	"farmxchain/internal/middleware"
	"farmxchain/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	App              *fiber.App
	UserHandler      handlers.UserHandler
	AnalysisHandler  handlers.AnalysisHandler
	OrderHandler     handlers.OrderHandler
	DashboardHandler handlers.DashboardHandler
	Middleware       middleware.Middleware
	JWTService       jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.GuestRoute()
	c.User()
	c.Analysis()
	c.Orders()
	c.Dashboard()
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong, its works. test"})
	})
	c.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

func (c *Config) User() {
	user := c.App.Group("/api/v1/users")
	{
		user.Post("/login", c.UserHandler.Login)
		user.Post("/register", c.UserHandler.Register)

		authed := c.Middleware.AuthMiddleware(c.JWTService)
		adminOnly := c.Middleware.RoleMiddleware(domain.RoleAdmin)
		user.Get("", authed, adminOnly, c.UserHandler.GetUsers)
		user.Delete("/:id", authed, adminOnly, c.UserHandler.DeleteUser)
		user.Put("/:id/role", authed, adminOnly, c.UserHandler.UpdateRole)
	}
}

func (c *Config) Analysis() {
	c.App.Post("/api/v1/analysis",
		c.Middleware.AuthMiddleware(c.JWTService),
		c.Middleware.RoleMiddleware(domain.RoleFarmer, domain.RoleDistributor, domain.RoleCustomer),
		c.AnalysisHandler.AnalyzeImage,
	)
}

func (c *Config) Orders() {
	orders := c.App.Group("/api/v1/orders",
		c.Middleware.AuthMiddleware(c.JWTService),
		c.Middleware.RoleMiddleware(domain.RoleDistributor, domain.RoleRetailer, domain.RoleCustomer),
	)
	orders.Get("/:log", c.OrderHandler.GetOrders)
	orders.Post("", c.OrderHandler.PlaceOrder)
	orders.Patch("/:log/:id/status", c.OrderHandler.UpdateStatus)
	orders.Post("/:log/:id/payment", c.Middleware.RoleMiddleware(domain.RoleCustomer), c.OrderHandler.CreatePayment)
}

func (c *Config) Dashboard() {
	authed := c.Middleware.AuthMiddleware(c.JWTService)

	dashboard := c.App.Group("/api/v1/dashboard", authed)
	dashboard.Get("", c.DashboardHandler.GetDashboard)
	dashboard.Get("/stats", c.DashboardHandler.GetDashboardStats)

	c.App.Get("/api/v1/inventory", authed, c.Middleware.RoleMiddleware(domain.RoleDistributor), c.DashboardHandler.GetInventory)
}

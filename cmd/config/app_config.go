package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"farmxchain/internal/api/handlers"
	"farmxchain/internal/api/routes"
	"farmxchain/internal/metrics"
	"farmxchain/internal/middleware"
	"farmxchain/internal/utils"
	"farmxchain/internal/utils/mailing"
	"farmxchain/internal/utils/storage"
	"farmxchain/pkg/account"
	"farmxchain/pkg/analysis"
	"farmxchain/pkg/broker"
	"farmxchain/pkg/dashboard"
	"farmxchain/pkg/inventory"
	"farmxchain/pkg/jwt"
	"farmxchain/pkg/notify"
	"farmxchain/pkg/order"
	"farmxchain/pkg/payment"
	"farmxchain/pkg/slot"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

const (
	OrderLogLedger = "ledger"
	OrderLogSlot   = "slot"

	OrderStorePostgres = "postgres"
	OrderStoreMemory   = "memory"
)

// NewApp wires repositories, services and handlers. db may be nil when
// ORDER_STORE is memory.
func NewApp(db *gorm.DB) (*fiber.App, error) {
	utils.InitValidator()
	metrics.Register()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
		BodyLimit:         10 * 1024 * 1024,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Asia/Jakarta",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	closers := []func(){cancel}
	app.Hooks().OnShutdown(func() error {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		return nil
	})

	// utils
	s3 := storage.NewAwsS3()

	// Repository
	storeKind := utils.GetConfigOrDefault("ORDER_STORE", OrderStorePostgres)
	if storeKind != OrderStoreMemory && db == nil {
		return nil, fmt.Errorf("ORDER_STORE %q needs a database connection", storeKind)
	}
	var (
		slotRepository      slot.SlotRepository
		eventRepository     order.EventRepository
		inventoryRepository inventory.InventoryRepository
	)
	switch storeKind {
	case OrderStoreMemory:
		slotRepository = slot.NewMemorySlotRepository()
		eventRepository = order.NewMemoryEventRepository()
		inventoryRepository = inventory.NewMemoryInventoryRepository()
	case OrderStorePostgres:
		slotRepository = slot.NewSlotRepository(db)
		eventRepository = order.NewEventRepository(db)
		inventoryRepository = inventory.NewInventoryRepository(db)
	default:
		return nil, fmt.Errorf("unknown ORDER_STORE %q", storeKind)
	}
	if err := inventoryRepository.SeedItems(ctx, inventory.DefaultInventory()); err != nil {
		return nil, fmt.Errorf("seed inventory: %w", err)
	}

	slotStore := slot.NewStore(slotRepository)
	closers = append(closers, slotStore.Close)

	var orderLog order.Log
	var ledger *order.Ledger
	switch mode := utils.GetConfigOrDefault("ORDER_LOG_MODE", OrderLogLedger); mode {
	case OrderLogLedger:
		ledger, err = order.NewLedger(ctx, eventRepository, order.WithProjection(slotStore))
		if err != nil {
			return nil, fmt.Errorf("start order ledger: %w", err)
		}
		closers = append(closers, ledger.Close)
		orderLog = ledger
	case OrderLogSlot:
		log.Warn("ORDER_LOG_MODE=slot: concurrent writers can overwrite each other's orders")
		orderLog = order.NewSlotLog(slotStore, "api")
	default:
		return nil, fmt.Errorf("unknown ORDER_LOG_MODE %q", mode)
	}

	// Service
	jwtService := jwt.NewJWTService()
	accountService := account.NewAccountService(
		account.NewAccountClient(utils.GetConfig("ACCOUNT_API_URL"), nil),
		jwtService,
	)
	gemini := analysis.NewGeminiClient(
		utils.GetConfig("GEMINI_API_KEY"),
		utils.GetConfig("GEMINI_MODEL"),
		analysis.WithBaseURL(utils.GetConfigOrDefault("GEMINI_BASE_URL", analysis.DefaultGeminiBaseURL)),
	)
	analysisService := analysis.NewAnalysisService(gemini, validator)
	inventoryService := inventory.NewInventoryService(inventoryRepository)
	orderService := order.NewOrderService(orderLog, inventoryService, validator)
	dashboardService := dashboard.NewDashboardService(orderService, inventoryService)
	paymentService := payment.NewPaymentService(payment.NewSnapClient())

	// Subscribers
	if ledger != nil {
		if mailConfig := mailing.LoadMailConfig(); mailConfig.Enabled() {
			events, err := ledger.Subscribe("notify")
			if err != nil {
				return nil, err
			}
			go notify.NewNotifyService(mailing.NewSender(mailConfig), mailConfig.AppURL).Run(ctx, events)
		}

		if amqpURL := utils.GetConfig("AMQP_URL"); amqpURL != "" {
			brokerService, err := broker.Dial(amqpURL, utils.GetConfig("AMQP_EXCHANGE"))
			if err != nil {
				log.Errorf("order events will not be published: %v", err)
			} else {
				events, err := ledger.Subscribe("broker")
				if err != nil {
					return nil, err
				}
				go brokerService.Run(ctx, events)
				closers = append(closers, func() { _ = brokerService.Close() })
			}
		}
	}

	// Handler
	userHandler := handlers.NewUserHandler(accountService, validator)
	analysisHandler := handlers.NewAnalysisHandler(analysisService, s3, validator)
	orderHandler := handlers.NewOrderHandler(dashboardService, orderService, paymentService, validator)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// routes
	routesConfig := routes.Config{
		App:              app,
		UserHandler:      userHandler,
		AnalysisHandler:  analysisHandler,
		OrderHandler:     orderHandler,
		DashboardHandler: dashboardHandler,
		Middleware:       middlewares,
		JWTService:       jwtService,
	}
	routesConfig.Setup()
	return app, nil
}

package main

import (
	"log"
	"net/http"
	"time"

	"restbar/internal/config"
	"restbar/internal/database"
	"restbar/internal/events"
	"restbar/internal/handlers"
	"restbar/internal/migrations"
	"restbar/internal/policy"
	"restbar/internal/redis"
	"restbar/internal/repository"
	"restbar/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if cfg.ResetDatabase {
		if err := migrations.Reset(db); err != nil {
			log.Fatal("Failed to reset database:", err)
		}
		if err := migrations.Seed(db); err != nil {
			log.Fatal("Failed to seed database:", err)
		}
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	// Event bus and websocket fan-out
	bus := events.NewBus(cfg.EventBuffer)
	defer bus.Close()
	hub := events.NewHub(bus)
	go hub.Run()

	// Initialize repositories
	orderRepo := repository.NewOrderRepository(db)
	itemRepo := repository.NewOrderItemRepository(db)
	tableRepo := repository.NewTableRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	splitRepo := repository.NewSplitAccountRepository(db)
	productRepo := repository.NewProductRepository(db)

	// Initialize services
	catalogService := services.NewCatalogService(productRepo, redisClient, time.Duration(cfg.CacheTTL)*time.Second)
	orderService := services.NewOrderService(orderRepo, itemRepo, tableRepo, paymentRepo, splitRepo, catalogService, bus, cfg.TaxRate)
	tableService := services.NewTableService(tableRepo, accountRepo, bus)
	paymentService := services.NewPaymentService(orderRepo, paymentRepo, splitRepo, accountRepo, bus)

	// Initialize handlers
	orderHandler := handlers.NewOrderHandler(orderService, paymentService)
	tableHandler := handlers.NewTableHandler(tableService)

	// Setup routes
	router := gin.Default()
	router.Use(handlers.CORS(cfg.FrontendURL))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "RestBar API is running"})
	})

	// Real-time event stream
	router.GET("/ws", hub.HandleWebSocket)

	api := router.Group("/api")
	{
		orders := api.Group("/orders")
		{
			orders.GET("", handlers.Require(policy.OrdersRead), orderHandler.GetAll)
			orders.POST("", handlers.Require(policy.OrdersCreate), orderHandler.Create)
			orders.GET("/:id", handlers.Require(policy.OrdersRead), orderHandler.GetByID)
			orders.PATCH("/:id/status", handlers.Require(policy.OrdersStatus), orderHandler.UpdateStatus)
			orders.PUT("/:id/items", handlers.Require(policy.OrdersItems), orderHandler.UpdateItems)
			orders.PATCH("/:id/items/:itemId/status", handlers.Require(policy.OrdersStatus), orderHandler.UpdateItemStatus)
			orders.POST("/:id/payments", handlers.Require(policy.Payments), orderHandler.AddPayment)
			orders.POST("/:id/split", handlers.Require(policy.Split), orderHandler.Split)
		}

		tables := api.Group("/tables")
		{
			tables.GET("", handlers.Require(policy.TablesRead), tableHandler.GetAll)
			tables.POST("", handlers.Require(policy.TablesManage), tableHandler.Create)
			tables.GET("/:id", handlers.Require(policy.TablesRead), tableHandler.GetByID)
			tables.PUT("/:id", handlers.Require(policy.TablesManage), tableHandler.Update)
			tables.PATCH("/:id/position", handlers.Require(policy.TablesManage), tableHandler.UpdatePosition)
			tables.PATCH("/:id/status", handlers.Require(policy.TablesManage), tableHandler.OverrideStatus)
			tables.PATCH("/:id/deactivate", handlers.Require(policy.TablesManage), tableHandler.Deactivate)
			tables.POST("/:id/occupy", handlers.Require(policy.TablesService), tableHandler.Occupy)
			tables.POST("/:id/account", handlers.Require(policy.TablesService), tableHandler.OpenAccount)
			tables.DELETE("/:id/account", handlers.Require(policy.TablesService), tableHandler.CloseAccount)
		}
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

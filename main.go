package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"nictech/internal/handlers"
	"nictech/internal/middleware"
	"nictech/internal/models"
	"nictech/internal/repositories"
	"nictech/internal/services"
	"nictech/pkg/mercadopago"
	"nictech/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_URL", "") // empty runs on in-memory repositories
	viper.SetDefault("MP_BASE_URL", mercadopago.DefaultBaseURL)
	viper.SetDefault("PUBLIC_BASE_URL", "")
	viper.SetDefault("WEBHOOK_URL", "")
	viper.SetDefault("RABBITMQ_URL", "") // empty disables fulfillment events
	viper.SetDefault("JWT_SECRET", "change_me_in_production")
	viper.SetDefault("ADMIN_USERNAME", "admin")
	viper.SetDefault("ADMIN_EMAIL", "admin@nictech.com.ar")
	viper.SetDefault("ADMIN_PASSWORD", "") // empty skips admin bootstrap
	viper.AutomaticEnv() // Load environment variables

	appPort := viper.GetString("APP_PORT")
	databaseURL := viper.GetString("DATABASE_URL")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	// --- Initialize Payment Provider Client ---
	mpClient, err := mercadopago.NewClient(mercadopago.Config{
		AccessToken: viper.GetString("MP_ACCESS_TOKEN"),
		BaseURL:     viper.GetString("MP_BASE_URL"),
	})
	if err != nil {
		log.Fatalf("Failed to initialize MercadoPago client: %v", err)
	}

	// --- Initialize RabbitMQ Client (optional) ---
	var mqClient *rabbitmq.Client
	if rabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
	} else {
		log.Println("RABBITMQ_URL not set; fulfillment events disabled")
	}

	// --- Initialize Repositories ---
	var (
		productRepo repositories.ProductRepository
		orderRepo   repositories.OrderRepository
		repairRepo  repositories.RepairRepository
		staffRepo   repositories.StaffRepository
	)
	if databaseURL != "" {
		db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		err = db.AutoMigrate(
			&models.Product{}, &models.ProductVariant{},
			&models.Order{},
			&models.Repair{}, &models.RepairLog{},
			&models.StaffAccount{},
		)
		if err != nil {
			log.Fatalf("Failed to auto-migrate database: %v", err)
		}
		productRepo = repositories.NewGORMProductRepository(db)
		orderRepo = repositories.NewGORMOrderRepository(db)
		repairRepo = repositories.NewGORMRepairRepository(db)
		staffRepo = repositories.NewGORMStaffRepository(db)
	} else {
		log.Println("DATABASE_URL not set; using in-memory repositories")
		mockProducts := repositories.NewMockProductRepository()
		seedProducts(mockProducts)
		productRepo = mockProducts
		orderRepo = repositories.NewMockOrderRepository()
		repairRepo = repositories.NewMockRepairRepository()
		staffRepo = repositories.NewMockStaffRepository()
	}

	// --- Initialize Services ---
	checkoutService := services.NewCheckoutService(
		mpClient,
		viper.GetString("PUBLIC_BASE_URL"),
		viper.GetString("WEBHOOK_URL"),
	)
	var publisher services.EventPublisher
	if mqClient != nil {
		publisher = mqClient
	}
	webhookService := services.NewWebhookService(mpClient, orderRepo, productRepo, publisher)
	productService := services.NewProductService(productRepo)
	orderService := services.NewOrderService(orderRepo)
	repairService := services.NewRepairService(repairRepo)
	authService := services.NewAuthService(staffRepo, viper.GetString("JWT_SECRET"))

	// Bootstrap admin: there is no public sign-up, so the first admin comes
	// from configuration. Later accounts are created by admins over the API.
	if viper.GetString("ADMIN_PASSWORD") != "" {
		err = authService.EnsureAdmin(
			viper.GetString("ADMIN_USERNAME"),
			viper.GetString("ADMIN_EMAIL"),
			viper.GetString("ADMIN_PASSWORD"),
		)
		if err != nil {
			log.Fatalf("Failed to seed admin account: %v", err)
		}
	} else {
		log.Println("ADMIN_PASSWORD not set; admin bootstrap skipped")
	}

	// --- Initialize Handlers ---
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	webhookHandler := handlers.NewWebhookHandler(webhookService)
	productHandler := handlers.NewProductHandler(productService)
	orderHandler := handlers.NewOrderHandler(orderService)
	repairHandler := handlers.NewRepairHandler(repairService)

	// --- Initialize Fiber App ---
	app := fiber.New()

	// --- Middleware ---
	app.Use(logger.New()) // Request logger
	// The payment provider calls the webhook cross-origin and sends an
	// OPTIONS preflight; permissive CORS keeps it (and the storefront) happy.
	app.Use(cors.New())

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")

	// Public surface: catalog reads, checkout, webhook, repair tracking.
	checkoutHandler.RegisterRoutes(apiV1)
	webhookHandler.RegisterRoutes(apiV1)
	productHandler.RegisterPublicRoutes(apiV1)
	repairHandler.RegisterPublicRoutes(apiV1)

	// Back-office surface: any staff token reads orders and works repairs;
	// catalog mutations and account management additionally require the
	// admin role.
	authHandler := handlers.NewAuthHandler(authService)
	authHandler.RegisterPublicRoutes(apiV1)

	staffRoutes := apiV1.Group("", middleware.StaffOnly(authService))
	repairHandler.RegisterAdminRoutes(staffRoutes)
	orderHandler.RegisterRoutes(staffRoutes)

	adminRoutes := staffRoutes.Group("", middleware.AdminOnly())
	productHandler.RegisterAdminRoutes(adminRoutes)
	authHandler.RegisterAdminRoutes(adminRoutes)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Start RabbitMQ Consumer in a Goroutine ---
	// Downstream fulfillment: approved orders trigger packing/notification
	// work consumed off the order events queue.
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for order events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received order event (tag %d, type %s): %s", msg.DeliveryTag, msg.Type, string(msg.Body))
				return nil // Return nil to acknowledge
			}
			if consumerErr := mqClient.ConsumeOrderEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// seedProducts populates the in-memory product repository with some
// initial catalog data for local development.
func seedProducts(repo repositories.ProductRepository) {
	products := []models.Product{
		{ID: "prod-1", Name: "iPhone 13 Tempered Glass", Description: "9H screen protector", Price: 4500.00, Stock: 30},
		{ID: "prod-2", Name: "Samsung A54 Silicone Case", Description: "Shock absorbing case", Price: 6200.00, Stock: 18,
			Variants: []models.ProductVariant{{ID: "var-1", Label: "Black", Stock: 10}, {ID: "var-2", Label: "Clear", Stock: 8}}},
		{ID: "prod-3", Name: "USB-C Fast Charger 25W", Description: "Wall charger with cable", Price: 9800.00, Stock: 12},
	}

	for i := range products {
		if err := repo.Create(&products[i]); err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Name, err)
		} else {
			log.Printf("Seeded product: %s (ID: %s)", products[i].Name, products[i].ID)
		}
	}
}

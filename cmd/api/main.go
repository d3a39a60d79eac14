package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"paisatrack/internal/cache"
	"paisatrack/internal/config"
	"paisatrack/internal/database"
	"paisatrack/internal/handlers"
	"paisatrack/internal/logger"
	"paisatrack/internal/middleware"
	"paisatrack/internal/notify"
	"paisatrack/internal/scheduler"
	"paisatrack/internal/services"
	"paisatrack/internal/validator"

	_ "paisatrack/internal/docs" // Import swagger docs
)

// @title           Paisatrack API
// @version         1.0
// @description     Paisatrack is a personal finance backend for tracking wallets, transactions, budgets, and recurring payments.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	cfg := config.Get()

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(cfg); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// Budget alerts go out by mail when SMTP is configured, otherwise to the log.
	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.SMTPHost != "" {
		notifier = notify.NewMailNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	}

	// Initialize services
	userService := services.NewUserService(db)
	walletService := services.NewWalletService(db)
	transactionService := services.NewTransactionService(db, walletService, cfg.DefaultCurrency)
	recurringService := services.NewRecurringService(db)
	budgetService := services.NewBudgetService(db, notifier)

	responseCache := cache.New(cfg.CacheTTL)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, cfg)
	walletHandler := handlers.NewWalletHandler(walletService, responseCache)
	transactionHandler := handlers.NewTransactionHandler(transactionService, responseCache)
	budgetHandler := handlers.NewBudgetHandler(budgetService, responseCache)
	recurringHandler := handlers.NewRecurringHandler(recurringService, responseCache)

	// Start the recurring rule scheduler
	sched := scheduler.New(db, recurringService, transactionService)
	if err := sched.Start(cfg.SchedulerSpec); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.Auth(cfg.JWTSecret))
	protected.Use(middleware.ResponseCache(responseCache))

	// User profile
	protected.GET("/profile", authHandler.Profile)
	protected.PATCH("/profile", authHandler.UpdateProfile)

	// Wallet routes
	wallets := protected.Group("/wallets")
	wallets.POST("", walletHandler.Create)
	wallets.GET("", walletHandler.List)
	wallets.GET("/:id", walletHandler.Get)
	wallets.PUT("/:id", walletHandler.Update)
	wallets.DELETE("/:id", walletHandler.Delete)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.Create)
	transactions.GET("", transactionHandler.List)
	transactions.GET("/stats", transactionHandler.Stats)
	transactions.GET("/:id", transactionHandler.Get)
	transactions.PATCH("/:id", transactionHandler.Update)
	transactions.DELETE("/:id", transactionHandler.Delete)

	// Budget routes
	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.Create)
	budgets.GET("", budgetHandler.List)
	budgets.GET("/summary", budgetHandler.Summary)
	budgets.GET("/:id", budgetHandler.Get)
	budgets.PATCH("/:id", budgetHandler.Update)
	budgets.DELETE("/:id", budgetHandler.Delete)

	// Recurring rule routes
	recurring := protected.Group("/recurring")
	recurring.POST("", recurringHandler.Create)
	recurring.GET("", recurringHandler.List)
	recurring.GET("/:id", recurringHandler.Get)
	recurring.PATCH("/:id", recurringHandler.Update)
	recurring.DELETE("/:id", recurringHandler.Delete)

	log.Infof("Starting Paisatrack backend server on port %s", cfg.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
	return router.Run(":" + cfg.Port)
}

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"satang/internal/config"
	"satang/internal/database"
	"satang/internal/handlers"
	"satang/internal/logger"
	"satang/internal/middleware"
	"satang/internal/services"
	"satang/internal/validator"

	_ "satang/internal/docs" // Import swagger docs
)

// @title           Satang API
// @version         1.0
// @description     Satang is a personal finance backend for organizing money into jars, saving toward goals with automatic allocation, and generating recurring income and expense records.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	categoryService := services.NewCategoryService(db)
	auditService := services.NewAuditService(db)
	jarService := services.NewJarService(db)
	ledgerService := services.NewLedgerService(db)
	goalService := services.NewGoalService(db, ledgerService)
	incomeService := services.NewIncomeService(db, goalService)
	expenseService := services.NewExpenseService(db)
	recurrenceService := services.NewRecurrenceService(db, appConfig.DefaultTZOffsetMinutes)
	dashboardService := services.NewDashboardService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	jarHandler := handlers.NewJarHandler(jarService, ledgerService, auditService)
	goalHandler := handlers.NewGoalHandler(goalService, auditService)
	incomeHandler := handlers.NewIncomeHandler(incomeService, auditService)
	expenseHandler := handlers.NewExpenseHandler(expenseService, auditService)
	recurringHandler := handlers.NewRecurringHandler(recurrenceService, auditService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Background recurrence tick: catch up all users' rules periodically.
	go func() {
		ticker := time.NewTicker(appConfig.RecurrenceInterval)
		defer ticker.Stop()
		for range ticker.C {
			generated, err := recurrenceService.RunOnce(nil, time.Now().UTC())
			if err != nil {
				log.Errorw("recurrence tick failed", "error", err)
				continue
			}
			if generated > 0 {
				log.Infow("recurrence tick", "generated", generated)
			}
		}
	}()

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
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
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Jar routes
	jars := protected.Group("/jars")
	jars.POST("", jarHandler.CreateJar)
	jars.GET("", jarHandler.GetJars)
	jars.GET("/transfers", jarHandler.GetTransfers)
	jars.POST("/transfer", jarHandler.TransferBetweenJars)
	jars.GET("/:id", jarHandler.GetJar)
	jars.DELETE("/:id", jarHandler.DeleteJar)
	jars.POST("/:id/fund", jarHandler.FundJar)
	jars.POST("/:id/withdraw", jarHandler.WithdrawJar)

	// Goal routes
	goals := protected.Group("/goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetGoals)
	goals.POST("/allocate", goalHandler.AutoAllocate)
	goals.GET("/:id", goalHandler.GetGoal)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)
	goals.POST("/:id/fund", goalHandler.FundGoal)

	// Recurring rule routes
	recurring := protected.Group("/recurring")
	recurring.POST("", recurringHandler.CreateRule)
	recurring.GET("", recurringHandler.GetRules)
	recurring.POST("/run", recurringHandler.RunNow)
	recurring.GET("/:id", recurringHandler.GetRule)
	recurring.PUT("/:id", recurringHandler.UpdateRule)
	recurring.POST("/:id/toggle", recurringHandler.ToggleRule)
	recurring.DELETE("/:id", recurringHandler.DeleteRule)

	// Income/expense routes
	income := protected.Group("/income")
	income.POST("", incomeHandler.AddIncome)
	income.GET("", incomeHandler.GetIncomes)
	income.DELETE("/:id", incomeHandler.DeleteIncome)

	expense := protected.Group("/expense")
	expense.POST("", expenseHandler.AddExpense)
	expense.GET("", expenseHandler.GetExpenses)
	expense.DELETE("/:id", expenseHandler.DeleteExpense)

	// Category routes
	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:id", categoryHandler.GetCategory)

	// Dashboard route
	protected.GET("/dashboard", dashboardHandler.GetDashboard)

	log.Infof("Starting Satang backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}

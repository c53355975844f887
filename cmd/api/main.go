package main

import (
	"fmt"
	"khata/internal/config"
	"khata/internal/database"
	"khata/internal/handlers"
	"khata/internal/logger"
	"khata/internal/middleware"
	"khata/internal/services"
	"khata/internal/validator"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/crypto/bcrypt"
)

// @title           Khata API
// @version         1.0
// @description     Khata is a personal "who owes whom" ledger for tracking money given to and received from people, with repayment settlements, tags, and statements.
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
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	validator.Register()

	// Create database manager
	dbManager, err := database.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	personService := services.NewPersonService(db)
	tagService := services.NewTagService(db, cfg.MaxTagsPerTransaction, cfg.RecentTagLimit)
	settlementService := services.NewSettlementService(db)
	transactionService := services.NewTransactionService(db, personService, tagService, settlementService)
	statementService := services.NewStatementService(db, personService)
	backupService := services.NewBackupService(db)

	// Initialize handlers
	personHandler := handlers.NewPersonHandler(personService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	tagHandler := handlers.NewTagHandler(tagService)
	settlementHandler := handlers.NewSettlementHandler(settlementService)
	statementHandler := handlers.NewStatementHandler(statementService)
	backupHandler := handlers.NewBackupHandler(backupService)

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

	// Protected routes. The app lock is optional: without a configured
	// passcode every route is open, matching single-user local use.
	protected := v1.Group("/")
	if cfg.Passcode != "" {
		passcodeHash, err := bcrypt.GenerateFromPassword([]byte(cfg.Passcode), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash passcode: %w", err)
		}
		authHandler := handlers.NewAuthHandler(passcodeHash)
		v1.POST("/unlock", authHandler.Unlock)
		protected.Use(middleware.AuthMiddleware())
	}

	// Person routes
	persons := protected.Group("/persons")
	persons.POST("", personHandler.CreatePerson)
	persons.GET("", personHandler.ListPersons)
	persons.GET("/archived", personHandler.ListArchivedPersons)
	persons.GET("/:id", personHandler.GetPerson)
	persons.PUT("/:id", personHandler.UpdatePerson)
	persons.POST("/:id/archive", personHandler.ArchivePerson)
	persons.POST("/:id/unarchive", personHandler.UnarchivePerson)
	persons.DELETE("/:id", personHandler.DeletePerson)
	persons.GET("/:id/transactions", transactionHandler.GetPersonTransactions)
	persons.POST("/:id/transactions", transactionHandler.CreateTransaction)
	persons.GET("/:id/statement", statementHandler.GetStatement)
	persons.GET("/:id/statement/smart", statementHandler.GetSmartStatement)
	persons.GET("/:id/settlement-targets", settlementHandler.GetEligibleTargets)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.GET("/:id/tags", tagHandler.GetTransactionTags)
	transactions.PUT("/:id/tags", tagHandler.SetTransactionTags)
	transactions.GET("/:id/settlements", settlementHandler.GetSettlements)
	transactions.PUT("/:id/settlements", settlementHandler.SetSettlements)

	// Tag routes
	tags := protected.Group("/tags")
	tags.POST("", tagHandler.CreateTag)
	tags.GET("", tagHandler.ListTags)
	tags.GET("/recent", tagHandler.ListRecentTags)
	tags.PUT("/:id", tagHandler.RenameTag)
	tags.DELETE("/:id", tagHandler.DeleteTag)

	// Backup routes
	protected.GET("/backup", backupHandler.ExportBackup)
	protected.POST("/restore", backupHandler.RestoreBackup)

	log.Infof("Starting Khata backend server on port %s", cfg.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
	return router.Run(":" + cfg.Port)
}

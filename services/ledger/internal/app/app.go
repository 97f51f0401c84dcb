package internal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eksporyuk-ledger/pkg/cache"
	"eksporyuk-ledger/pkg/config"
	"eksporyuk-ledger/pkg/database"
	"eksporyuk-ledger/pkg/jwt"
	"eksporyuk-ledger/pkg/logger"
	"eksporyuk-ledger/pkg/middleware"
	"eksporyuk-ledger/pkg/queue"
	"eksporyuk-ledger/pkg/s3"
	ledgerHTTP "eksporyuk-ledger/services/ledger/internal/controller/http"
	"eksporyuk-ledger/services/ledger/internal/repo/persistent"
	"eksporyuk-ledger/services/ledger/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	redisClient *redis.Client
	s3Client    *s3.Client
	jwtService  *jwt.Service
	queueClient *queue.Client
	httpServer  *http.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.New()

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		return nil, err
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v (continuing without cache)", err)
		redisClient = nil
	}

	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		log.Error("Failed to create S3 client: %v (continuing without report archive)", err)
		s3Client = nil
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ: %v (continuing without events)", err)
		queueClient = nil
	}

	jwtService := jwt.NewService(cfg.JWTSecret)

	return &App{
		cfg:         cfg,
		log:         log,
		db:          db,
		redisClient: redisClient,
		s3Client:    s3Client,
		jwtService:  jwtService,
		queueClient: queueClient,
	}, nil
}

func (a *App) Run() error {
	// Initialize repositories
	saleRepo := persistent.NewSaleRepository(a.db)
	ruleRepo := persistent.NewRuleRepository(a.db)
	affiliateRepo := persistent.NewAffiliateRepository(a.db)
	ledgerRepo := persistent.NewLedgerRepository(a.db, a.cfg.PostingMaxRetries)
	walletRepo := persistent.NewWalletRepository(a.db)
	payoutRepo := persistent.NewPayoutRepository(a.db)
	auditRepo := persistent.NewAuditRepository(a.db)

	// Initialize use cases
	ruleResolver := usecase.NewRuleResolver(ruleRepo)
	attribution := usecase.NewAttributionResolver(affiliateRepo)

	var events usecase.EventPublisher
	if a.queueClient != nil {
		events = a.queueClient
	}
	var archive usecase.ReportArchive
	if a.s3Client != nil {
		archive = a.s3Client
	}

	// The wallet use case doubles as the summary-cache invalidator for the
	// write paths, so it is wired first.
	walletUseCase := usecase.NewWalletUseCase(walletRepo, ledgerRepo, a.redisClient, a.log)
	postingUseCase := usecase.NewPostingUseCase(saleRepo, affiliateRepo, ledgerRepo, ruleResolver, attribution, events, walletUseCase, a.log)
	auditUseCase := usecase.NewAuditUseCase(auditRepo, saleRepo, ledgerRepo, walletRepo, ruleResolver, attribution, archive, a.log)
	payoutUseCase := usecase.NewPayoutUseCase(payoutRepo, events, walletUseCase, a.log)

	// Initialize HTTP handlers
	saleHandler := ledgerHTTP.NewSaleHandler(postingUseCase, a.log)
	auditHandler := ledgerHTTP.NewAuditHandler(auditUseCase, a.log)
	payoutHandler := ledgerHTTP.NewPayoutHandler(payoutUseCase, a.log)
	walletHandler := ledgerHTTP.NewWalletHandler(walletUseCase, a.log)

	// Setup router
	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(a.jwtService))
	if a.redisClient != nil {
		api.Use(middleware.RateLimitMiddleware(a.redisClient, 100, time.Minute))
	}

	{
		api.POST("/sales", saleHandler.RecordSale)
		api.GET("/wallets/:user_id", walletHandler.GetSummary)
		api.GET("/wallets/:user_id/transactions", walletHandler.GetTransactions)
		api.GET("/affiliates/:id/ledger", walletHandler.GetLedgerHistory)
		api.POST("/payouts", payoutHandler.RequestPayout)
		api.GET("/payouts", payoutHandler.ListPayouts)

		// Admin paths: corrections, voids, settlements and audits
		admin := api.Group("")
		admin.Use(middleware.AdminOnly())
		{
			admin.GET("/sales/unattributed", saleHandler.ListUnattributed)
			admin.POST("/sales/:id/void", saleHandler.VoidSale)
			admin.POST("/sales/:id/correction", saleHandler.ManualCorrection)
			admin.POST("/payouts/:id/settle", payoutHandler.SettlePayout)
			admin.POST("/audit/runs", auditHandler.RunAudit)
		}
	}

	// Create HTTP server
	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		a.log.Info("Ledger service starting on port %s", a.cfg.ServerPort)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	return nil
}

func (a *App) Wait() {
	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("Shutting down ledger service...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Close database connection
	sqlDB, err := a.db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			a.log.Error("Error closing database: %v", err)
		}
	}

	// Close Redis connection
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis: %v", err)
		}
	}

	// Close RabbitMQ connection
	if a.queueClient != nil {
		if err := a.queueClient.Close(); err != nil {
			a.log.Error("Error closing RabbitMQ: %v", err)
		}
	}

	// Shutdown server
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("Server forced to shutdown: %v", err)
		return err
	}

	a.log.Info("Ledger service exited")
	return nil
}

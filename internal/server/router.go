package server

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/lijoraj-p-r/NoPaper/internal/app/domain/admin"
	"github.com/lijoraj-p-r/NoPaper/internal/app/domain/auth"
	"github.com/lijoraj-p-r/NoPaper/internal/app/domain/catalog"
	"github.com/lijoraj-p-r/NoPaper/internal/app/domain/checkout"
	appmiddleware "github.com/lijoraj-p-r/NoPaper/internal/app/middleware"
	"github.com/lijoraj-p-r/NoPaper/internal/notify"
	"github.com/lijoraj-p-r/NoPaper/internal/pkg/config"
)

// SetupRouter configures and returns the Gin router with all middleware
// and routes.
func SetupRouter(cfg *config.Config, dbPool *pgxpool.Pool, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(ginzap.GinzapWithConfig(logger, &ginzap.Config{
		UTC:        true,
		TimeFormat: time.RFC3339,
	}))
	r.Use(ginzap.RecoveryWithZap(logger, true))
	r.Use(otelgin.Middleware("nopaper"))
	r.Use(appmiddleware.RequestIDMiddleware())
	r.Use(appmiddleware.CORSMiddleware())
	r.Use(appmiddleware.SecurityMiddleware())

	setupRoutes(r, cfg, dbPool, logger)

	return r
}

func setupRoutes(r *gin.Engine, cfg *config.Config, dbPool *pgxpool.Pool, logger *zap.Logger) {
	// Repositories
	authRepo := auth.NewPostgresAuthRepo(dbPool, logger)
	catalogRepo := catalog.NewPostgresCatalogRepo(dbPool, logger)
	checkoutRepo := checkout.NewPostgresCheckoutRepo(dbPool, logger)
	adminRepo := admin.NewPostgresAdminRepo(dbPool, logger)

	// Services
	mailer := notify.NewMailer(cfg.SMTP, cfg.UPI.PayeeVPA, logger)
	authService := auth.NewAuthService(authRepo, cfg, logger)
	catalogService := catalog.NewService(catalogRepo, logger)
	checkoutService := checkout.NewService(checkoutRepo, catalogRepo, mailer, cfg, logger)
	adminService := admin.NewService(adminRepo, logger)

	// Handlers
	authHandlers := auth.NewAuthHandlers(authService, logger)
	catalogHandlers := catalog.NewHandlers(catalogService, logger)
	checkoutHandlers := checkout.NewHandlers(checkoutService, logger)
	adminHandlers := admin.NewHandlers(adminService, catalogService, logger)

	jwtConfig := auth.JWTConfig{
		SecretKey:       cfg.JWT.SecretKey,
		TokenExpiration: cfg.JWT.AccessTokenTTL,
		Issuer:          cfg.JWT.Issuer,
		Logger:          logger,
	}
	requireAuth := auth.JWTAuthMiddleware(jwtConfig)

	optionalConfig := jwtConfig
	optionalConfig.Optional = true
	optionalAuth := auth.JWTAuthMiddleware(optionalConfig)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "NoPaper Book Shop API running"})
	})

	r.POST("/register", authHandlers.RegisterHandler)
	r.POST("/login", authHandlers.LoginHandler)

	r.GET("/books", optionalAuth, catalogHandlers.ListBooksHandler)
	r.GET("/books/:id/download", requireAuth, catalogHandlers.DownloadHandler)

	r.POST("/buy", requireAuth, checkoutHandlers.BuyHandler)
	r.POST("/payment/verify", requireAuth, checkoutHandlers.VerifyPaymentHandler)

	adminGroup := r.Group("/admin", requireAuth, auth.RequireAdmin())
	{
		adminGroup.GET("/books", adminHandlers.ListBooksHandler)
		adminGroup.POST("/books", adminHandlers.CreateBookHandler)
		adminGroup.DELETE("/books/:id", adminHandlers.DeleteBookHandler)
		adminGroup.GET("/orders", adminHandlers.ListOrdersHandler)
		adminGroup.GET("/stats", adminHandlers.StatsHandler)
	}
}

package router

import (
	"time"

	"allure/config"
	"allure/internal/domain"
	"allure/internal/handler"
	"allure/internal/middleware"
	"allure/internal/repository"
	"allure/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewModelProfileRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// Services
	authSvc := service.NewAuthService(cfg, db, userRepo, profileRepo)
	notifSvc := service.NewNotificationService(notificationRepo)
	referralSvc := service.NewReferralService(db, profileRepo, settingRepo)
	escrowSvc := service.NewEscrowService(db, profileRepo, referralSvc, notifSvc, auditRepo)
	walletSvc := service.NewWalletService(db, walletRepo)
	summarySvc := service.NewSummaryService(walletRepo, ledgerRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	bookingHandler := handler.NewBookingHandler(escrowSvc, bookingRepo, ledgerRepo)
	walletHandler := handler.NewWalletHandler(walletRepo, summarySvc)
	transactionHandler := handler.NewTransactionHandler(ledgerRepo)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)
	adminHandler := handler.NewAdminHandler(authSvc, walletSvc, referralSvc, settingRepo, profileRepo, auditRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		api.GET("/wallet", authMw, walletHandler.GetMine)
		api.GET("/notifications", authMw, notificationHandler.List)
		api.POST("/notifications/:id/read", authMw, notificationHandler.MarkRead)

		bookings := api.Group("/bookings")
		bookings.Use(authMw)
		{
			bookings.POST("", middleware.RequireRole(domain.RoleCustomer), bookingHandler.Hold)
			bookings.GET("/:id", bookingHandler.Get)
			bookings.POST("/:id/dispute", bookingHandler.Dispute)
		}

		admin := api.Group("/admin")
		admin.POST("/login", adminHandler.Login)
		adminAuthed := admin.Group("")
		adminAuthed.Use(authMw, middleware.AdminRequired())
		{
			adminAuthed.GET("/bookings", bookingHandler.List)
			adminAuthed.POST("/bookings/:id/release", bookingHandler.Release)
			adminAuthed.POST("/bookings/:id/refund", bookingHandler.Refund)
			adminAuthed.POST("/bookings/:id/resolve", bookingHandler.Resolve)

			adminAuthed.GET("/transactions", transactionHandler.List)
			adminAuthed.GET("/transactions/:id", transactionHandler.Get)

			adminAuthed.GET("/wallets/:id", walletHandler.Get)
			adminAuthed.GET("/wallets/:id/summary", walletHandler.Summary)
			adminAuthed.PATCH("/wallets/:id/status", walletHandler.SetStatus)

			adminAuthed.POST("/customers/:id/recharge", adminHandler.Recharge)
			adminAuthed.POST("/models/:id/withdraw", adminHandler.Withdraw)
			adminAuthed.PATCH("/models/:id/commission", adminHandler.SetCommissionRate)
			adminAuthed.POST("/models/:id/signup-bonus", adminHandler.PaySignupBonus)

			adminAuthed.GET("/settings", adminHandler.ListSettings)
			adminAuthed.PUT("/settings/:key", adminHandler.SetSetting)
			adminAuthed.GET("/audit", adminHandler.ListAudit)
		}
	}

	return r
}

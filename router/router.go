package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/matchfund/matchfund-backend/config"
	_ "github.com/matchfund/matchfund-backend/docs"
	"github.com/matchfund/matchfund-backend/handlers"
	"github.com/matchfund/matchfund-backend/internal/websocket"
	"github.com/matchfund/matchfund-backend/logger"
	"github.com/matchfund/matchfund-backend/middleware"
	"github.com/matchfund/matchfund-backend/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies holds everything SetupRouter mounts.
type Dependencies struct {
	Config              *config.Config
	RateLimiter         services.RateLimiter
	HealthHandler       *handlers.HealthHandler
	PaymentHandler      *handlers.PaymentHandler
	NotificationHandler *handlers.NotificationHandler
	PushTokenHandler    *handlers.PushTokenHandler
	MatchHandler        *handlers.MatchHandler
	LiveEventHandler    *handlers.LiveEventHandler
	LiveFeedHandler     *websocket.Handler
	MemberHandler       *handlers.MemberHandler
	ConfigHandler       *handlers.ConfigHandler
}

// SetupRouter configures and returns the gin engine with every route.
func SetupRouter(deps Dependencies) *gin.Engine {
	log := logger.GetLogger().Named("router")

	r := gin.New()
	r.Use(gin.Recovery())
	if err := r.SetTrustedProxies(deps.Config.Server.TrustedProxies); err != nil {
		log.Warnw("Invalid trusted proxies, trusting none", "proxies", deps.Config.Server.TrustedProxies, "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))
	r.Use(middleware.SecurityHeadersMiddleware(deps.Config))

	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/live", deps.HealthHandler.LivenessCheck)
	r.GET("/health/ready", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if !deps.Config.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	window := time.Duration(deps.Config.RateLimit.WindowSeconds) * time.Second
	paymentLimit := middleware.IPRateLimiter(deps.RateLimiter, "payment-link",
		deps.Config.RateLimit.PaymentRequestsPerMinute, window)

	api := r.Group("/api")
	{
		api.POST("/create-payment-link", paymentLimit, deps.PaymentHandler.CreatePaymentLink)
		api.POST("/payos-webhook", deps.PaymentHandler.Webhook)
		api.PUT("/payos-webhook", deps.PaymentHandler.Webhook)

		api.POST("/send-match-notification", deps.NotificationHandler.SendMatchNotification)
		notify := api.Group("/notify")
		{
			notify.POST("/attendance-created", deps.NotificationHandler.AttendanceCreated)
			notify.POST("/attendance-deleted", deps.NotificationHandler.AttendanceDeleted)
			notify.POST("/manual", deps.NotificationHandler.SendManual)
		}
		api.GET("/notifications", deps.NotificationHandler.ListNotifications)

		api.POST("/notification-tokens", deps.PushTokenHandler.RegisterPushToken)
		api.DELETE("/notification-tokens", deps.PushTokenHandler.DeregisterPushToken)

		matches := api.Group("/matches")
		{
			matches.POST("", deps.MatchHandler.CreateMatch)
			matches.GET("/:id", deps.MatchHandler.GetMatch)
			matches.POST("/:id/shares", deps.MatchHandler.FinalizeShares)
			matches.GET("/:id/shares", deps.MatchHandler.ListShares)
			matches.GET("/:id/attendance", deps.MatchHandler.ListAttendance)
			matches.POST("/:id/attendance", deps.MatchHandler.AddAttendance)
			matches.DELETE("/:id/attendance/:memberId", deps.MatchHandler.RemoveAttendance)

			matches.GET("/:id/live-events", deps.LiveEventHandler.ListEvents)
			matches.POST("/:id/live-events", deps.LiveEventHandler.AddEvent)
			matches.DELETE("/:id/live-events/:eventId", deps.LiveEventHandler.DeleteEvent)
			matches.GET("/:id/stats", deps.LiveEventHandler.Stats)
			matches.GET("/:id/live", deps.LiveFeedHandler.LiveFeed)
		}

		members := api.Group("/members")
		{
			members.GET("", deps.MemberHandler.ListMembers)
			members.POST("", deps.MemberHandler.CreateMember)
			members.GET("/:id", deps.MemberHandler.GetMember)
			members.PATCH("/:id/flags", deps.MemberHandler.UpdateFlags)
			members.POST("/:id/avatar", deps.MemberHandler.UploadAvatar)
		}

		api.GET("/action-configs", deps.ConfigHandler.ListActionConfigs)
		api.PUT("/action-configs/:key", deps.ConfigHandler.UpsertActionConfig)
		api.GET("/configs/:key", deps.ConfigHandler.GetConfig)
		api.PUT("/configs/:key", deps.ConfigHandler.PutConfig)
	}

	return r
}

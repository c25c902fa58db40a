package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/sirupsen/logrus"

	"hourbank/internal/handler"
	"hourbank/internal/logging"
	"hourbank/internal/middleware"
	"hourbank/internal/redis"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	ServiceHandler      *handler.ServiceHandler
	ScheduleHandler     *handler.ScheduleHandler
	BookingHandler      *handler.BookingHandler
	TransactionHandler  *handler.TransactionHandler
	NotificationHandler *handler.NotificationHandler
	AdminHandler        *handler.AdminHandler

	Tokens      middleware.TokenParser
	Users       middleware.UserLookup
	AuthLimiter *middleware.RateLimiter
	Idempotency redis.IdempotencyStoreInterface
	NewRelicApp *newrelic.Application
	Log         logrus.FieldLogger
	ErrorLog    *logging.ErrorLogger

	AllowedOrigins []string
	TrustedProxies []string
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(deps.TrustedProxies); err != nil {
		return nil, err
	}

	// Global middleware.
	router.Use(middleware.Recovery(deps.ErrorLog))
	router.Use(middleware.RequestLogger(deps.Log))
	router.Use(middleware.APIErrors(deps.ErrorLog))
	router.Use(middleware.CORSMiddleware(deps.AllowedOrigins))

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
		router.Use(middleware.NewRelicAttributes())
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")

	// Public routes.
	authRoutes := v1.Group("/auth", middleware.RateLimit(deps.AuthLimiter))
	{
		authRoutes.POST("/register", deps.AuthHandler.Register)
		authRoutes.POST("/login", deps.AuthHandler.Login)
	}

	v1.GET("/services", deps.ServiceHandler.List)
	v1.GET("/services/:id", deps.ServiceHandler.Get)
	v1.GET("/services/:id/schedules", deps.ScheduleHandler.List)
	v1.GET("/services/:id/exceptions", deps.ScheduleHandler.ListExceptions)
	v1.GET("/services/:id/availability", deps.ScheduleHandler.Availability)
	v1.GET("/users/:id", deps.UserHandler.GetProfile)
	v1.GET("/users/:id/services", deps.ServiceHandler.ListByUser)
	v1.GET("/users/:id/ratings", deps.UserHandler.Ratings)

	// Authenticated routes.
	protected := v1.Group("",
		middleware.JWTAuth(deps.Tokens),
		middleware.ActiveUser(deps.Users),
		middleware.Idempotency(deps.Idempotency, deps.Log),
	)
	{
		me := protected.Group("/me")
		{
			me.GET("", deps.UserHandler.Me)
			me.PUT("", deps.UserHandler.UpdateMe)
			me.GET("/balance", deps.UserHandler.Balance)
			me.GET("/services", deps.ServiceHandler.ListMine)
		}

		services := protected.Group("/services")
		{
			services.POST("", deps.ServiceHandler.Create)
			services.PUT("/:id", deps.ServiceHandler.Update)
			services.DELETE("/:id", deps.ServiceHandler.Delete)
			services.POST("/:id/schedules", deps.ScheduleHandler.Create)
			services.POST("/:id/exceptions", deps.ScheduleHandler.CreateException)
		}

		schedules := protected.Group("/schedules")
		{
			schedules.PUT("/:id", deps.ScheduleHandler.Update)
			schedules.DELETE("/:id", deps.ScheduleHandler.Delete)
		}

		protected.DELETE("/exceptions/:id", deps.ScheduleHandler.DeleteException)

		bookings := protected.Group("/bookings")
		{
			bookings.POST("", deps.BookingHandler.Create)
			bookings.GET("", deps.BookingHandler.List)
			bookings.GET("/calendar", deps.BookingHandler.Calendar)
			bookings.GET("/:id", deps.BookingHandler.Get)
			bookings.POST("/:id/status", deps.BookingHandler.UpdateStatus)
		}

		transactions := protected.Group("/transactions")
		{
			transactions.POST("", deps.TransactionHandler.Request)
			transactions.GET("", deps.TransactionHandler.List)
			transactions.GET("/:id", deps.TransactionHandler.Get)
			transactions.POST("/:id/status", deps.TransactionHandler.UpdateStatus)
			transactions.POST("/:id/rating", deps.TransactionHandler.Rate)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", deps.NotificationHandler.List)
			notifications.POST("/read-all", deps.NotificationHandler.MarkAllRead)
			notifications.POST("/:id/read", deps.NotificationHandler.MarkRead)
		}

		admin := protected.Group("/admin", middleware.RequireAdmin())
		{
			admin.GET("/stats", deps.AdminHandler.Stats)
			admin.GET("/health", deps.AdminHandler.Health)
			admin.GET("/errors", deps.AdminHandler.Errors)
			admin.GET("/users", deps.AdminHandler.Users)
			admin.GET("/users/:id", deps.AdminHandler.UserDetails)
			admin.PUT("/users/:id/bank-hours", deps.AdminHandler.UpdateBankHours)
			admin.PUT("/users/:id/status", deps.AdminHandler.UpdateStatus)
		}
	}

	return router, nil
}

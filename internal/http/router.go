package api

import (
	stdhttp "net/http"

	intconfig "tripmarket/internal/config"
	"tripmarket/internal/domain"
	h "tripmarket/internal/http/handlers"
	"tripmarket/internal/http/middleware"
	"tripmarket/internal/utils"

	"github.com/gin-gonic/gin"
)

// Deps is everything the router needs besides configuration.
type Deps struct {
	API    *h.API
	Tokens middleware.SessionParser
	Guard  middleware.Guard
}

func NewRouter(env intconfig.Env, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.Log.WithError(err).Warn("failed to set trusted proxies")
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"success": false,
			"error":   "route not found",
			"path":    c.Request.URL.Path,
			"method":  c.Request.Method,
		})
	})

	a := deps.API
	requireAny := func(roles ...domain.Role) gin.HandlerFunc {
		return middleware.RequireRole(deps.Guard, roles...)
	}
	user := requireAny(domain.RoleUser, domain.RoleSupport)
	host := requireAny(domain.RoleHost)
	support := requireAny(domain.RoleSupport)
	admin := requireAny(domain.RoleAdmin)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		// The gateway authenticates itself with the body signature.
		api.POST("/payments/webhook", a.PaymentWebhook)

		auth := api.Group("/auth")
		auth.POST("/register", a.Register)
		auth.POST("/login", a.Login)

		// Public listings
		api.GET("/trips", a.ListTrips)
		api.GET("/trips/:id", middleware.Authenticate(deps.Tokens), middleware.OptionalRole(deps.Guard), a.GetTrip)
		api.GET("/trips/:id/reviews", a.ListTripReviews)
		api.GET("/hosts/:id/rating", a.HostRating)

		authed := api.Group("")
		authed.Use(middleware.Authenticate(deps.Tokens))

		bookings := authed.Group("/bookings")
		bookings.POST("", requireAny(domain.RoleUser), a.CreateBooking)
		bookings.GET("", requireAny(domain.RoleUser), a.ListMyBookings)
		bookings.GET("/:id", requireAny(domain.RoleUser, domain.RoleSupport), a.GetBooking)
		bookings.PUT("/:id/guests", requireAny(domain.RoleUser), a.UpdateGuestInfo)
		bookings.PUT("/:id/status", user, a.UpdateBookingStatus)
		bookings.GET("/:id/invoice", user, a.GetBookingInvoicePDF)
		bookings.GET("/:id/payments", user, a.PaymentHistory)
		bookings.POST("/:id/reviews", requireAny(domain.RoleUser), a.SubmitReview)
		bookings.GET("/:id/payout", requireAny(domain.RoleHost, domain.RoleSupport), a.GetBookingPayout)

		payments := authed.Group("/payments")
		payments.POST("/orders", user, a.CreatePaymentOrder)
		payments.POST("/verify", user, a.VerifyCheckout)

		authed.POST("/trips", host, a.CreateTrip)
		authed.PUT("/trips/:id/status", host, a.UpdateTripStatus)
		authed.GET("/host/trips", host, a.ListHostTrips)

		payouts := authed.Group("/payouts")
		payouts.GET("", host, a.ListHostPayouts)
		payouts.PUT("/:bookingId/installments/:n/paid", admin, a.MarkInstallmentPaid)

		users := authed.Group("/users", admin)
		users.GET("", a.ListUsers)
		users.PUT("/:id/role", a.UpdateUserRole)

		adminGroup := authed.Group("/admin")
		adminGroup.POST("/cache/clear", admin, a.ClearTripCache)
		adminGroup.POST("/bookings/sweep-overdue", support, a.SweepOverdue)
	}

	h.SetRouter(r)
	return r
}

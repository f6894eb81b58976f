package cli

import (
	"database/sql"

	"tripmarket/internal/auth"
	"tripmarket/internal/cache"
	intconfig "tripmarket/internal/config"
	"tripmarket/internal/domain"
	"tripmarket/internal/events"
	"tripmarket/internal/gateway"
	h "tripmarket/internal/http/handlers"
	"tripmarket/internal/repositories"
	"tripmarket/internal/services"
	"tripmarket/internal/utils"

	"github.com/redis/go-redis/v9"
)

// app holds the wired services and the resources that must be closed on exit.
type app struct {
	api    *h.API
	tokens auth.TokenIssuer
	guard  services.RoleGuard
	events events.Publisher
	redis  *redis.Client
}

func (a *app) Close() {
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			utils.Log.WithError(err).Warn("closing event publisher")
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// buildApp connects the optional Redis and Kafka backends and wires every service on top of db.
func buildApp(env intconfig.Env, db *sql.DB) *app {
	bookingRepo := repositories.BookingRepository{DB: db, Timeout: env.StoreTimeout}
	tripRepo := repositories.TripRepository{DB: db, Timeout: env.StoreTimeout}
	userRepo := repositories.UserRepository{DB: db, Timeout: env.StoreTimeout}
	reviewRepo := repositories.ReviewRepository{DB: db, Timeout: env.StoreTimeout}
	payoutRepo := repositories.PayoutRepository{DB: db, Timeout: env.StoreTimeout}
	paymentRepo := repositories.PaymentRepository{DB: db, Timeout: env.StoreTimeout}

	a := &app{events: events.New(env.KafkaBrokers)}
	if len(env.KafkaBrokers) > 0 {
		utils.Log.WithField("brokers", env.KafkaBrokers).Info("publishing events to kafka")
	}

	var shared services.SnapshotStore
	rc, err := intconfig.NewRedisClient(env.RedisURL)
	switch {
	case err != nil:
		utils.Log.WithError(err).Warn("redis unavailable, listing cache is process-local")
	case rc != nil:
		a.redis = rc
		shared = cache.NewRedisSnapshotStore(rc, env.TripCacheTTL)
		utils.Log.Info("listing cache shared through redis")
	}

	payouts := services.PayoutService{
		Payouts: payoutRepo,
		Trips:   tripRepo,
		Events:  a.events,
		Policy: domain.PayoutPolicy{
			CommissionPercent: env.PlatformCommissionPercent,
			FirstPercent:      env.PayoutFirstPercent,
			SettlementDays:    env.PayoutSettlementDays,
		},
	}
	bookings := services.BookingService{
		Bookings: bookingRepo,
		Trips:    tripRepo,
		Payouts:  payouts,
		Events:   a.events,
		Policy: domain.BookingPolicy{
			MinPaymentPercent: env.MinPaymentPercent,
			DeadlineDays:      env.PaymentDeadlineDays,
		},
	}
	gw := gateway.NewClient(env.GatewayKeyID, env.GatewayKeySecret,
		gateway.WithBaseURL(env.GatewayBaseURL),
		gateway.WithTimeout(env.GatewayTimeout),
	)

	a.tokens = auth.NewTokenIssuer(env.JWTSecret, env.JWTTTL)
	a.guard = services.RoleGuard{Users: userRepo}
	a.api = &h.API{
		Users:    services.UserService{Users: userRepo, Tokens: a.tokens},
		Bookings: bookings,
		Payments: services.PaymentService{
			Bookings:      bookingRepo,
			Ledger:        paymentRepo,
			Credits:       bookings,
			Gateway:       gw,
			WebhookSecret: env.GatewayWebhookSecret,
			KeySecret:     env.GatewayKeySecret,
			Currency:      env.GatewayCurrency,
		},
		Trips:   services.TripService{Trips: tripRepo, Cache: services.NewTripCache(tripRepo, shared, env.TripCacheTTL)},
		Reviews: services.ReviewService{Reviews: reviewRepo, Bookings: bookingRepo, Trips: tripRepo},
		Payouts: payouts,
		Docs:    services.DocsService{Bookings: bookingRepo, Trips: tripRepo, Currency: env.GatewayCurrency},
	}
	return a
}

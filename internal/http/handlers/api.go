package handlers

import "tripmarket/internal/services"

// API groups the services the route handlers call.
type API struct {
	Users    services.UserService
	Bookings services.BookingService
	Payments services.PaymentService
	Trips    services.TripService
	Reviews  services.ReviewService
	Payouts  services.PayoutService
	Docs     services.DocsService
}

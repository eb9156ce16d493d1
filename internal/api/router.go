/**
 * @description
 * This file sets up the HTTP router for the booking service using the
 * go-chi/chi router. It defines the API routes, applies middleware for
 * logging, CORS, and authentication, and maps the routes to their handlers.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new Chi router and registers the booking-service routes.
func NewRouter(h *Handler, jwtSecret string) *chi.Mux {
	r := chi.NewRouter()

	// Setup middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Booking service is healthy"))
	})

	// Protected routes that require authentication
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwtSecret))

		r.Get("/resources", h.handleListResources)
		r.Post("/availability/check", h.handleCheckAvailability)
		r.Post("/availability/blocks", h.handleCampaignBlocks)
		r.Post("/quotes", h.handleQuote)
		r.Post("/coupons/validate", h.handleValidateCoupon)

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", h.handleCreateBooking)
			r.Get("/", h.handleListBookings)
			r.Get("/{bookingID}", h.handleGetBooking)
			r.Patch("/{bookingID}", h.handleUpdateBooking)
			r.Delete("/{bookingID}", h.handleDeleteBooking)
			r.Post("/{bookingID}/submit", h.handleSubmitBooking)
			r.Post("/{bookingID}/pause", h.handlePauseBooking)
			r.Post("/{bookingID}/resume", h.handleResumeBooking)
			r.Post("/{bookingID}/cancel", h.handleCancelBooking)
			r.Post("/{bookingID}/reject", h.handleRejectBooking)
		})

		r.Route("/subscriptions/{subscriptionID}", func(r chi.Router) {
			r.Post("/cancel", h.handleCancelSubscription)
			r.Post("/pause", h.handlePauseSubscription)
			r.Post("/resume", h.handleResumeSubscription)
		})

		// Administrative "run now" trigger for the lifecycle pass.
		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Post("/admin/lifecycle/run", h.handleRunLifecycle)
		})
	})

	return r
}

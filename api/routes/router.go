package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/swiftcartlabs/swiftcart-backend/api/controllers"
	"github.com/swiftcartlabs/swiftcart-backend/api/middleware"
	"github.com/swiftcartlabs/swiftcart-backend/internal/orders"
	"github.com/swiftcartlabs/swiftcart-backend/internal/payments"
	"github.com/swiftcartlabs/swiftcart-backend/internal/paymentsettings"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/config"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/db"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/logger"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/metrics"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	ordersSvc orders.Service,
	paymentsSvc payments.Service,
	settingsSvc paymentsettings.Service,
) http.Handler {
	r := chi.NewRouter()

	var redisPinger redis.Pinger
	var idemStore redis.IdempotencyStore
	var rateLimiter middleware.RateLimiterStore
	if redisClient != nil {
		redisPinger = redisClient
		idemStore = redisClient
		rateLimiter = redisClient
	}

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RateLimit(rateLimiter, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(ordersSvc, logg))
			r.Get("/{orderId}", controllers.GetOrder(ordersSvc, logg))
			r.Post("/{orderId}/cancel", controllers.CancelOrder(ordersSvc, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/razorpay/order", controllers.CreateGatewayOrder(paymentsSvc, logg))
			r.Post("/razorpay/verify", controllers.VerifyGatewayPayment(paymentsSvc, logg))
			r.Post("/cod", controllers.MarkCOD(paymentsSvc, logg))
		})

		r.Route("/payment-settings", func(r chi.Router) {
			r.Get("/", controllers.GetPaymentSettings(settingsSvc, logg))
			r.Post("/submit-upi", controllers.SubmitUTR(paymentsSvc, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.RateLimit(rateLimiter, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(ordersSvc, logg))
			r.Get("/export", controllers.AdminExportOrders(ordersSvc, logg))
			r.Post("/bulk/status", controllers.AdminBulkStatus(ordersSvc, logg))
			r.Get("/{orderId}", controllers.AdminOrderDetail(ordersSvc, logg))
			r.Patch("/{orderId}/status", controllers.AdminUpdateStatus(ordersSvc, logg))
			r.Patch("/{orderId}/payment", controllers.AdminOverridePayment(paymentsSvc, logg))
			r.Post("/{orderId}/refund", controllers.AdminRefund(paymentsSvc, logg))
			r.Get("/{orderId}/notes", controllers.AdminListNotes(ordersSvc, logg))
			r.Post("/{orderId}/notes", controllers.AdminAddNote(ordersSvc, logg))
		})

		r.Route("/payment-settings", func(r chi.Router) {
			r.Put("/", controllers.AdminUpdatePaymentSettings(settingsSvc, logg))
			r.Post("/verify-payment", controllers.AdminVerifyPayment(paymentsSvc, logg))
		})
	})

	return r
}

package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coexhq/coex-backend/api/controllers"
	"github.com/coexhq/coex-backend/api/middleware"
	"github.com/coexhq/coex-backend/internal/deliveries"
	"github.com/coexhq/coex-backend/internal/notifications"
	"github.com/coexhq/coex-backend/internal/orders"
	"github.com/coexhq/coex-backend/internal/payments"
	"github.com/coexhq/coex-backend/internal/products"
	"github.com/coexhq/coex-backend/internal/users"
	"github.com/coexhq/coex-backend/pkg/config"
	"github.com/coexhq/coex-backend/pkg/db"
	"github.com/coexhq/coex-backend/pkg/logger"
	"github.com/coexhq/coex-backend/pkg/metrics"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DBPinger      db.Pinger
	HTTPMetrics   *metrics.HTTPMetrics
	PromGatherer  prometheus.Gatherer
	Users         users.Service
	Products      products.Service
	Orders        orders.Service
	Payments      payments.Service
	Deliveries    deliveries.Service
	Notifications notifications.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)
	if d.HTTPMetrics != nil {
		r.Use(middleware.Metrics(d.HTTPMetrics))
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	rateStore := middleware.NewMemoryRateLimiterStore()

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, d.DBPinger, logg))
	})

	if d.PromGatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.PromGatherer, promhttp.HandlerOpts{}))
	}

	// Uploaded check images and delivery confirmations are served straight
	// off the local uploads directory.
	uploadsFS := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Uploads.Dir)))
	r.Get("/uploads/*", uploadsFS.ServeHTTP)

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, rateStore, logg)).Post("/register", controllers.Register(d.Users, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).Post("/login", controllers.Login(d.Users, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, d.Users, logg))
			r.Get("/me", controllers.Me(logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Get("/users", controllers.ListUsers(d.Users, logg))
				r.Put("/users/{id}/credit-limit", controllers.SetCreditLimit(d.Users, logg))
			})
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Users, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(d.Products, logg))
			r.Get("/{id}", controllers.GetProduct(d.Products, logg))
			r.With(middleware.RequireDistributor(logg)).Post("/", controllers.CreateProduct(d.Products, logg))
			r.With(middleware.RequireDistributor(logg)).Put("/{id}", controllers.UpdateProduct(d.Products, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(d.Orders, logg))
			r.Get("/{id}", controllers.GetOrder(d.Orders, logg))
			r.With(middleware.RequirePharmacy(logg)).Post("/", controllers.CreateOrder(d.Orders, logg))
			r.With(middleware.RequireDistributor(logg)).Put("/{id}/status", controllers.UpdateOrderStatus(d.Orders, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", controllers.ListPayments(d.Payments, logg))
			r.Get("/{id}", controllers.GetPayment(d.Payments, logg))
			r.With(middleware.RequirePharmacy(logg)).Post("/", controllers.CreatePayment(d.Payments, logg))
			r.With(middleware.RequireDistributor(logg)).Put("/{id}/status", controllers.UpdatePaymentStatus(d.Payments, logg))
		})

		r.Route("/delivery", func(r chi.Router) {
			r.Get("/", controllers.ListDeliveries(d.Deliveries, logg))
			r.Get("/{id}", controllers.GetDelivery(d.Deliveries, logg))
			r.With(middleware.RequireDistributor(logg)).Post("/", controllers.CreateDelivery(d.Deliveries, logg))
			r.With(middleware.RequirePharmacy(logg)).Put("/{id}/confirm", controllers.ConfirmDelivery(d.Deliveries, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(d.Notifications, logg))
			r.Put("/{id}/read", controllers.MarkNotificationRead(d.Notifications, logg))
			r.Put("/read-all", controllers.MarkAllNotificationsRead(d.Notifications, logg))
			r.Delete("/", controllers.ClearNotifications(d.Notifications, logg))
		})
	})

	return r
}

package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/marketplace-backend/api/controllers"
	admincontrollers "github.com/angelmondragon/marketplace-backend/api/controllers/admin"
	authcontrollers "github.com/angelmondragon/marketplace-backend/api/controllers/auth"
	cartcontrollers "github.com/angelmondragon/marketplace-backend/api/controllers/cart"
	contactcontrollers "github.com/angelmondragon/marketplace-backend/api/controllers/contact"
	disputecontrollers "github.com/angelmondragon/marketplace-backend/api/controllers/disputes"
	ordercontrollers "github.com/angelmondragon/marketplace-backend/api/controllers/orders"
	productcontrollers "github.com/angelmondragon/marketplace-backend/api/controllers/products"
	ratingcontrollers "github.com/angelmondragon/marketplace-backend/api/controllers/ratings"
	"github.com/angelmondragon/marketplace-backend/api/controllers/realtime"
	shopcontrollers "github.com/angelmondragon/marketplace-backend/api/controllers/shops"
	"github.com/angelmondragon/marketplace-backend/api/middleware"
	"github.com/angelmondragon/marketplace-backend/internal/admin"
	"github.com/angelmondragon/marketplace-backend/internal/auth"
	"github.com/angelmondragon/marketplace-backend/internal/cart"
	"github.com/angelmondragon/marketplace-backend/internal/contact"
	"github.com/angelmondragon/marketplace-backend/internal/disputes"
	"github.com/angelmondragon/marketplace-backend/internal/orders"
	product "github.com/angelmondragon/marketplace-backend/internal/products"
	"github.com/angelmondragon/marketplace-backend/internal/ratings"
	"github.com/angelmondragon/marketplace-backend/internal/shops"
	"github.com/angelmondragon/marketplace-backend/pkg/auth/session"
	"github.com/angelmondragon/marketplace-backend/pkg/config"
	"github.com/angelmondragon/marketplace-backend/pkg/db"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	"github.com/angelmondragon/marketplace-backend/pkg/events"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/marketplace-backend/pkg/redis"
)

type eventSubscriber interface {
	Subscribe() (*events.Subscription, error)
}

// Infra carries the shared clients the router needs. Nil interfaces disable
// the feature that depends on them (rate limiting, idempotency replay).
type Infra struct {
	DB          db.Pinger
	Redis       db.Pinger
	Sessions    session.AccessSessionChecker
	Idempotency pkgredis.IdempotencyStore
	RateLimiter middleware.WindowLimiter
	Events      eventSubscriber
	Metrics     http.Handler
}

// Services groups the domain services exposed over HTTP.
type Services struct {
	Auth          auth.Service
	AdminRegister auth.AdminRegisterService
	Shops         shops.Service
	Products      product.Service
	Cart          cart.Service
	Orders        orders.Service
	Ratings       ratings.Service
	Disputes      disputes.Service
	Contact       contact.Service
	Admin         admin.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, infra Infra, svc Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.LoginRateLimit(cfg.AuthRateLimit)
	registerPolicy := middleware.RegisterRateLimit(cfg.AuthRateLimit)

	metricsHandler := infra.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, infra.DB, infra.Redis))
	})
	r.Method(http.MethodGet, "/metrics", metricsHandler)
	r.Get("/ws", realtime.Handler(infra.Events, cfg.Realtime, cfg.CORS, logg))

	authenticate := middleware.Auth(cfg.JWT, infra.Sessions, logg)
	idempotent := middleware.Idempotency(infra.Idempotency, logg)
	buyerOnly := middleware.RequireRole(logg, enums.UserRoleBuyer)
	vendorOnly := middleware.RequireRole(logg, enums.UserRoleVendor)
	adminOnly := middleware.RequireRole(logg, enums.UserRoleAdmin)

	r.Route("/api", func(r chi.Router) {
		// public
		r.With(rateLimited(loginPolicy, infra.RateLimiter, logg)).Post("/auth/login", authcontrollers.Login(svc.Auth, logg))
		r.With(rateLimited(registerPolicy, infra.RateLimiter, logg)).Post("/auth/register", authcontrollers.Register(svc.Auth, logg))
		if !cfg.App.IsProd() {
			r.Post("/auth/admin/register", authcontrollers.AdminRegister(svc.AdminRegister, cfg, logg))
		}

		r.Get("/products", productcontrollers.List(svc.Products, logg))
		r.Get("/products/category/{category}", productcontrollers.ByCategory(svc.Products, logg))
		r.Get("/products/{productId}", productcontrollers.Get(svc.Products, logg))
		r.Get("/shops", shopcontrollers.ListPublic(svc.Shops, logg))
		r.Get("/shops/{shopId}", shopcontrollers.GetPublic(svc.Shops, logg))
		r.Get("/ratings/product/{productId}", ratingcontrollers.ListForProduct(svc.Ratings, logg))
		r.Post("/contact", contactcontrollers.Submit(svc.Contact, logg))

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/auth/logout", authcontrollers.Logout(svc.Auth, logg))
			r.Get("/auth/me", authcontrollers.Me(svc.Auth, logg))

			r.Get("/orders/{orderId}", ordercontrollers.Detail(svc.Orders, logg))
			r.Get("/disputes/{disputeId}", disputecontrollers.Detail(svc.Disputes, logg))

			r.Group(func(r chi.Router) {
				r.Use(buyerOnly)

				r.Get("/cart", cartcontrollers.CartFetch(svc.Cart, logg))
				r.Post("/cart/add", cartcontrollers.CartAdd(svc.Cart, logg))
				r.Put("/cart/update", cartcontrollers.CartUpdate(svc.Cart, logg))
				r.Delete("/cart/remove/{productId}", cartcontrollers.CartRemove(svc.Cart, logg))
				r.Delete("/cart/clear", cartcontrollers.CartClear(svc.Cart, logg))

				r.With(idempotent).Post("/orders", ordercontrollers.Place(svc.Orders, logg))
				r.Get("/orders/my", ordercontrollers.Mine(svc.Orders, logg))

				r.With(idempotent).Post("/ratings", ratingcontrollers.Submit(svc.Ratings, logg))

				r.With(idempotent).Post("/disputes", disputecontrollers.Open(svc.Disputes, logg))
				r.Get("/disputes/my", disputecontrollers.Mine(svc.Disputes, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(vendorOnly)

				r.Post("/shops", shopcontrollers.Create(svc.Shops, logg))
				r.Get("/shops/mine", shopcontrollers.Mine(svc.Shops, logg))
				r.Get("/shops/profile", shopcontrollers.Profile(svc.Shops, logg))
				r.Put("/shops/profile", shopcontrollers.Update(svc.Shops, logg))

				r.Get("/products/mine", productcontrollers.Mine(svc.Products, logg))
				r.Post("/products", productcontrollers.Create(svc.Products, logg))
				r.Put("/products/{productId}", productcontrollers.Update(svc.Products, logg))
				r.Delete("/products/{productId}", productcontrollers.Delete(svc.Products, logg))

				r.Get("/orders/vendor", ordercontrollers.Vendor(svc.Orders, logg))
				r.Put("/orders/{orderId}/status", ordercontrollers.UpdateStatus(svc.Orders, logg))

				r.Get("/disputes/vendor", disputecontrollers.Vendor(svc.Disputes, logg))
				r.Put("/disputes/{disputeId}/reply", disputecontrollers.Reply(svc.Disputes, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)

				r.Get("/disputes", disputecontrollers.All(svc.Disputes, logg))
				r.Put("/disputes/{disputeId}/status", disputecontrollers.SetStatus(svc.Disputes, logg))

				r.Get("/contact", contactcontrollers.List(svc.Contact, logg))
				r.Get("/contact/stats", contactcontrollers.Stats(svc.Contact, logg))
				r.Get("/contact/{messageId}", contactcontrollers.Get(svc.Contact, logg))
				r.Put("/contact/{messageId}/status", contactcontrollers.UpdateStatus(svc.Contact, logg))
				r.Delete("/contact/{messageId}", contactcontrollers.Delete(svc.Contact, logg))

				r.Get("/admin/dashboard", admincontrollers.Dashboard(svc.Admin, logg))
				r.Get("/admin/commissions", admincontrollers.Commissions(svc.Admin, logg))
				r.Get("/admin/vendor-earnings", admincontrollers.VendorEarnings(svc.Admin, logg))
			})
		})
	})

	return r
}

func rateLimited(policy middleware.RateLimitPolicy, store middleware.WindowLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	if store == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.AuthRateLimit(policy, store, logg)
}

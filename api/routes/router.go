package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/inventory-reorder/api/controllers"
	webhookcontrollers "github.com/angelmondragon/inventory-reorder/api/controllers/webhooks"
	"github.com/angelmondragon/inventory-reorder/api/middleware"
	"github.com/angelmondragon/inventory-reorder/internal/items"
	"github.com/angelmondragon/inventory-reorder/internal/supplierorders"
	"github.com/angelmondragon/inventory-reorder/pkg/auth"
	"github.com/angelmondragon/inventory-reorder/pkg/config"
	"github.com/angelmondragon/inventory-reorder/pkg/db"
	"github.com/angelmondragon/inventory-reorder/pkg/logger"
	"github.com/angelmondragon/inventory-reorder/pkg/metrics"
)

// redisStore is the slice of the redis client the HTTP layer depends on.
type redisStore interface {
	Get(ctx context.Context, key string) (string, error)
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	Ping(ctx context.Context) error
}

// Services groups the domain services mounted by the router.
type Services struct {
	Items          items.Service
	Recomputer     controllers.BulkRecomputer
	Demand         controllers.DemandLedger
	SupplierOrders supplierorders.Service
	HTTPMetrics    *metrics.HTTPMetrics
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient redisStore,
	metricsHandler http.Handler,
	webhookSigner *auth.WebhookSigner,
	svc Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, svc.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	readiness := map[string]controllers.Pinger{}
	if dbP != nil {
		readiness["db"] = dbP
	}
	if redisClient != nil {
		readiness["redis"] = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	webhookPolicy := middleware.NewRateLimitPolicy(
		"webhook",
		cfg.RateLimit.WebhookWindow,
		cfg.RateLimit.WebhookLimit,
	)
	r.Route("/webhook", func(r chi.Router) {
		if redisClient != nil {
			r.Use(middleware.RateLimit(webhookPolicy, redisClient, logg))
		}
		r.Use(middleware.WebhookAuth(webhookSigner, logg))
		r.Post("/order-confirmation", webhookcontrollers.OrderConfirmation(svc.SupplierOrders, logg))
	})

	r.Route("/api", func(r chi.Router) {
		if redisClient != nil {
			r.Use(middleware.Idempotency(redisClient, cfg.Redis.IdempotencyTTL, logg))
		}

		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.ItemList(svc.Items, logg))
			r.Post("/", controllers.ItemCreate(svc.Items, logg))
			r.Post("/recompute", controllers.ItemRecomputeAll(svc.Recomputer, logg))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", controllers.ItemDetail(svc.Items, logg))
				r.Put("/", controllers.ItemUpdate(svc.Items, logg))
				r.Patch("/reorder-threshold", controllers.ItemSetThreshold(svc.Items, logg))
				r.Patch("/recompute", controllers.ItemRecompute(svc.Items, logg))
				r.Patch("/force-reorder", controllers.ItemForceReorder(svc.Items, logg))
				r.Get("/demand", controllers.DemandHistory(svc.Demand, logg))
				r.Post("/demand", controllers.DemandRecord(svc.Demand, logg))
			})
		})

		r.Route("/supplier", func(r chi.Router) {
			r.Get("/", controllers.SupplierOrderList(svc.SupplierOrders, logg))
			r.Post("/place-order", controllers.SupplierOrderPlace(svc.SupplierOrders, logg))
		})
	})

	return r
}

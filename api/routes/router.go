package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/api/controllers"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/api/middleware"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/config"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/db"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/logger"
	pkgredis "github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/redis"
)

type redisStore interface {
	pkgredis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	Ping(ctx context.Context) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient redisStore,
	storeP controllers.Pinger,
	placeService controllers.PlaceService,
	uploader controllers.Uploader,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	uploadPolicy := middleware.NewRateLimitPolicy(
		"uploads",
		cfg.Media.UploadRateWindow,
		cfg.Media.UploadRateLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg,
			controllers.ReadinessCheck{Name: "database", Pinger: dbP},
			controllers.ReadinessCheck{Name: "redis", Pinger: redisClient},
			controllers.ReadinessCheck{Name: "storage", Pinger: storeP},
		))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, logg))
			r.Get("/places", controllers.PlaceList(placeService, logg))
			r.Get("/places/{ref}", controllers.PlaceGet(placeService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(redisClient, cfg.Places.IdempotencyTTL(), logg))

			r.Post("/places", controllers.PlaceCreate(placeService, logg))
			r.Patch("/places/{placeId}", controllers.PlaceUpdate(placeService, logg))
			r.Delete("/places/{placeId}", controllers.PlaceDelete(placeService, logg))

			r.With(middleware.RateLimit(uploadPolicy, redisClient, logg)).
				Post("/uploads", controllers.UploadCreate(uploader, logg))
		})
	})

	return r
}

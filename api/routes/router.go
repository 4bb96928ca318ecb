package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arcadialabs/landgrid-backend/api/controllers"
	"github.com/arcadialabs/landgrid-backend/api/middleware"
	"github.com/arcadialabs/landgrid-backend/internal/ledger"
	"github.com/arcadialabs/landgrid-backend/internal/regions"
	"github.com/arcadialabs/landgrid-backend/internal/registry"
	"github.com/arcadialabs/landgrid-backend/pkg/auth/session"
	"github.com/arcadialabs/landgrid-backend/pkg/config"
	"github.com/arcadialabs/landgrid-backend/pkg/db"
	"github.com/arcadialabs/landgrid-backend/pkg/logger"
	"github.com/arcadialabs/landgrid-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Generate(context.Context, string) (string, error)
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionManager sessionManager,
	registryService registry.Service,
	ledgerService ledger.Service,
	regionsService regions.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	sessionPolicy := middleware.NewAuthRateLimitPolicy(
		"session",
		cfg.AuthRateLimit.SessionWindow,
		cfg.AuthRateLimit.SessionIPLimit,
		cfg.AuthRateLimit.SessionWalletLimit,
	)
	refreshPolicy := middleware.NewAuthRateLimitPolicy(
		"refresh",
		cfg.AuthRateLimit.RefreshWindow,
		cfg.AuthRateLimit.RefreshIPLimit,
		0,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(sessionPolicy, redisClient, logg)).Post("/session", controllers.AuthSession(sessionManager, cfg.JWT, logg))
		r.With(middleware.AuthRateLimit(refreshPolicy, redisClient, logg)).Post("/refresh", controllers.AuthRefresh(sessionManager, cfg.JWT, logg))
		r.Post("/logout", controllers.AuthLogout(sessionManager, cfg.JWT, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/parcels/{parcelID}", func(r chi.Router) {
			r.Get("/", controllers.ParcelGet(registryService, logg))
			r.Get("/history", controllers.ParcelOwnershipHistory(ledgerService, logg))
			r.Post("/purchase", controllers.ParcelPurchase(ledgerService, logg))
			r.Post("/listing", controllers.ParcelListForSale(ledgerService, logg))
			r.Delete("/listing", controllers.ParcelDelist(ledgerService, logg))
			r.Post("/house", controllers.ParcelBuildHouse(ledgerService, logg))
			r.Post("/license", controllers.ParcelPurchaseLicense(ledgerService, logg))
			r.Delete("/license", controllers.ParcelRemoveLicense(ledgerService, logg))
			r.Post("/revenue", controllers.ParcelRecordRevenue(ledgerService, logg))
		})

		r.Route("/v1/regions/{regionID}", func(r chi.Router) {
			r.Get("/", controllers.RegionGet(regionsService, logg))
			r.Get("/parcels", controllers.RegionParcels(registryService, logg))
			r.Get("/statistics", controllers.RegionStatistics(registryService, logg))
			r.Get("/wallets/{wallet}/parcels", controllers.WalletParcels(ledgerService, logg))
		})

		r.Route("/v1/worlds/{worldID}", func(r chi.Router) {
			r.Get("/", controllers.WorldGet(regionsService, logg))
			r.Get("/regions", controllers.RegionList(regionsService, logg))
		})

		r.Post("/v1/campaigns/{campaignID}/allocate", controllers.CampaignAllocate(regionsService, logg))

		r.Route("/v1/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole("admin", logg))
			r.Get("/ping", controllers.AdminPing())
			r.Post("/worlds", controllers.WorldCreate(regionsService, logg))
			r.Post("/regions", controllers.RegionCreate(regionsService, logg))
			r.Post("/campaigns", controllers.CampaignOpen(regionsService, logg))
			r.Post("/campaigns/{campaignID}/close", controllers.CampaignClose(regionsService, logg))
			r.Post("/parcels/{parcelID}/reconcile", controllers.ParcelReconcile(ledgerService, logg))
		})
	})

	return r
}

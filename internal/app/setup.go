// Package app wires the catalog service together.
package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/abgdnv/catalog/internal/config"
	"github.com/abgdnv/catalog/internal/service"
	"github.com/abgdnv/catalog/internal/store"
	"github.com/abgdnv/catalog/internal/transport/rest"
	"github.com/abgdnv/catalog/pkg/messaging"
	"github.com/abgdnv/catalog/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

// Options carries the optional collaborators. Zero values disable the feature.
type Options struct {
	Publisher messaging.Publisher
	Cache     *redis.Client
	CacheTTL  time.Duration
	Metrics   http.Handler
}

type Dependencies struct {
	ProductService service.ProductService
	DB             rest.Pinger
	Metrics        http.Handler
	Logger         *slog.Logger
}

func SetupDependencies(dbPool *pgxpool.Pool, logger *slog.Logger, opts Options) *Dependencies {
	var productStore store.ProductStore = store.NewPgStore(dbPool)
	if opts.Cache != nil {
		productStore = store.NewCachedStore(productStore, opts.Cache, opts.CacheTTL, logger)
	}
	publisher := opts.Publisher
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}

	return &Dependencies{
		ProductService: service.NewService(productStore, publisher),
		DB:             dbPool,
		Metrics:        opts.Metrics,
		Logger:         logger,
	}
}

// SetupHttpHandler builds the router with middleware and every catalog route.
// Used by E2E tests to serve the application without a listener.
func SetupHttpHandler(deps *Dependencies, routerCfg server.RouterConfig) http.Handler {
	mux := server.NewChiRouter(deps.Logger, routerCfg)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the catalog service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Logger)
	productHandler.RegisterRoutes(mux)
	productHandler.RegisterProbes(mux, deps.DB)
	if deps.Metrics != nil {
		mux.Handle("/metrics", deps.Metrics)
	}
}

// SetupHttpServer creates and configures the HTTP server for the catalog service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps, server.RouterConfig{
		RateLimitRequests: cfg.HTTPServer.RateLimit.Requests,
		RateLimitWindow:   cfg.HTTPServer.RateLimit.Window,
	})

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, "catalog-http", mux)
}

// SetupGrpcServer creates the gRPC server exposing the health service.
func SetupGrpcServer(healthServer *health.Server, reflectionEnabled bool) *grpc.Server {
	return server.NewGRPCServer(reflectionEnabled, server.HealthRegistration(healthServer))
}

package app

import (
	"context"
	"database/sql"
	"time"

	"identity-service/internal/audit"
	"identity-service/internal/auth/handler"
	"identity-service/internal/auth/provider"
	"identity-service/internal/auth/provider/keycloak"
	"identity-service/internal/config"
	"identity-service/internal/metrics"
	"identity-service/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const serviceName = "identity-service"

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	keycloakProvider, err := keycloak.New(
		ctx,
		keycloak.Config{
			URL:           cfg.Keycloak.URL,
			Realm:         cfg.Keycloak.Realm,
			ClientID:      cfg.Keycloak.ClientID,
			AdminUser:     cfg.Keycloak.AdminUser,
			AdminPassword: cfg.Keycloak.AdminPassword,
		},
		keycloak.WithMetrics(m),
	)
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	var sqlDB *sql.DB
	if infra.DB != nil {
		sqlDB = infra.DB.DB
	}

	router := newRouter(cfg, keycloakProvider, infra.Audit, m, sqlDB)

	return router, infra.Close, nil
}

// newRouter assembles the HTTP surface around an already-built provider.
func newRouter(
	cfg config.Config,
	idp provider.IdentityProvider,
	recorder audit.Recorder,
	m *metrics.Metrics,
	sqlDB *sql.DB,
) *gin.Engine {

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(m.GinMiddleware())
	router.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	// ----------------------------
	// Public Routes
	// ----------------------------

	h := &health{
		service:   serviceName,
		port:      cfg.AppPort,
		startedAt: time.Now(),
		db:        sqlDB,
	}
	router.GET("/", h.root)
	router.GET("/health", h.live)
	router.GET("/health/ready", h.ready)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	authMiddleware := middleware.NewAuthMiddleware(idp)

	api := router.Group("/")
	api.Use(middleware.GinRequireAuth(authMiddleware))

	handler.NewHandler(idp, recorder).RegisterRoutes(api)

	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}

	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}

	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}

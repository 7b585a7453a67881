package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/zuulgate/zuul/backend/internal/api/handlers"
	"github.com/zuulgate/zuul/backend/internal/api/middleware"
	"github.com/zuulgate/zuul/backend/internal/config"
	"github.com/zuulgate/zuul/backend/internal/engine"
	"github.com/zuulgate/zuul/backend/internal/geo"
	"github.com/zuulgate/zuul/backend/internal/logger"
	"github.com/zuulgate/zuul/backend/internal/metrics"
	"github.com/zuulgate/zuul/backend/internal/models"
	"github.com/zuulgate/zuul/backend/internal/services"
)

// Deps are the long-lived components Register wires together. The caller
// owns their shutdown: stop the Scheduler, then Flush the cache.
type Deps struct {
	Cache     *engine.WriteBehindCache
	Scheduler *services.Scheduler
	Reload    func()
}

// Register wires up the decision endpoint and the admin API, and performs
// automatic migrations.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config, resolver geo.Resolver) (*Deps, error) {
	if err := db.AutoMigrate(
		&models.Rule{},
		&models.Ignored{},
		&models.Record{},
		&models.User{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	ruleService := services.NewRuleService(db)
	ignoredService := services.NewIgnoredService(db)
	recordService := services.NewRecordService(db)
	statsService := services.NewStatsService(db)
	authService := services.NewAuthService(db, cfg.JWTSecret)

	// In-memory snapshots the pipeline matches against. Reload swaps both
	// whole, so readers never see a partial update.
	ruleSet := engine.NewRuleSet()
	suppressionSet := engine.NewSuppressionSet()
	reload := func() {
		if rules, err := ruleService.ActiveRules(); err != nil {
			logger.WithError(err).Error("load active rules")
		} else {
			ruleSet.Replace(rules)
		}
		if entries, err := ignoredService.ActiveIgnored(); err != nil {
			logger.WithError(err).Error("load active ignore entries")
		} else {
			suppressionSet.Replace(entries)
		}
	}
	reload()

	cache := engine.NewWriteBehindCache(recordService, cfg.CacheEnabled, cfg.CacheSize)

	var notifier engine.Notifier
	if n := services.NewDenyNotifier(cfg.NotifyURL); n != nil {
		notifier = n
	}

	pipeline := engine.NewPipeline(ruleSet, suppressionSet, cache, resolver, notifier)

	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	// Decision endpoint: any method, any subpath; the proxy consults it per
	// inbound request.
	gateHandler := handlers.NewGateHandler(pipeline)
	router.Any("/gate", gateHandler.Decide)
	router.Any("/gate/*path", gateHandler.Decide)

	router.GET("/api/v1/health", handlers.HealthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(authService)
	ruleHandler := handlers.NewRuleHandler(ruleService, reload)
	ignoredHandler := handlers.NewIgnoredHandler(ignoredService, reload)
	recordHandler := handlers.NewRecordHandler(recordService)
	statsHandler := handlers.NewStatsHandler(statsService)

	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/register", authHandler.Register)
	api.GET("/users/any", userHandler.Any)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(authService))
	{
		protected.GET("/auth/me", authHandler.Me)

		protected.GET("/rules", ruleHandler.List)
		protected.POST("/rules", ruleHandler.Create)
		protected.GET("/rules/info", ruleHandler.Info)
		protected.GET("/rules/:id", ruleHandler.Get)
		protected.PUT("/rules/:id", ruleHandler.Update)
		protected.DELETE("/rules/:id", ruleHandler.Delete)

		protected.GET("/ignored", ignoredHandler.List)
		protected.POST("/ignored", ignoredHandler.Create)
		protected.GET("/ignored/:id", ignoredHandler.Get)
		protected.PUT("/ignored/:id", ignoredHandler.Update)
		protected.DELETE("/ignored/:id", ignoredHandler.Delete)

		protected.GET("/records", recordHandler.List)
		protected.GET("/records/info", recordHandler.Info)
		protected.GET("/records/:id", recordHandler.Get)
		protected.DELETE("/records", recordHandler.DeleteBefore)

		protected.GET("/stats/top-rules", statsHandler.TopRules)
		protected.GET("/stats/top-countries", statsHandler.TopCountries)
		protected.GET("/stats/evolution", statsHandler.Evolution)

		admin := protected.Group("/")
		admin.Use(middleware.RequireRole("admin"))
		{
			admin.GET("/users", userHandler.List)
			admin.POST("/users", userHandler.Create)
		}
	}

	var intervalReload func()
	if cfg.ReloadMode == config.ReloadInterval {
		intervalReload = reload
	}
	scheduler := services.NewScheduler(recordService, cfg.RetentionDays, intervalReload)

	return &Deps{Cache: cache, Scheduler: scheduler, Reload: reload}, nil
}

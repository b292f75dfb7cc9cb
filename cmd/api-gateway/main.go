package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/furukawa-sg/sg-reserve-api/api/swagger"
	"github.com/furukawa-sg/sg-reserve-api/internal/handler"
	"github.com/furukawa-sg/sg-reserve-api/internal/middleware"
	"github.com/furukawa-sg/sg-reserve-api/internal/repository"
	"github.com/furukawa-sg/sg-reserve-api/internal/service"
	"github.com/furukawa-sg/sg-reserve-api/internal/upstream"
	"github.com/furukawa-sg/sg-reserve-api/pkg/cache"
	"github.com/furukawa-sg/sg-reserve-api/pkg/config"
	"github.com/furukawa-sg/sg-reserve-api/pkg/logger"
	corsmiddleware "github.com/furukawa-sg/sg-reserve-api/pkg/middleware/cors"
	reqidmiddleware "github.com/furukawa-sg/sg-reserve-api/pkg/middleware/requestid"
	"github.com/furukawa-sg/sg-reserve-api/pkg/storage"
)

// @title SG Reserve API
// @version 0.1.0
// @description Gateway for the past-exam print reservation flow
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()

	// Session state prefers Redis; a development box without one falls back
	// to the in-process store.
	var kv repository.KV
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Warn("redis unavailable, using in-memory session store")
		kv = repository.NewMemoryKV()
	} else {
		kv = repository.NewRedisKV(client, logr)
	}
	sessions := repository.NewSessionRepository(kv, cfg.Sessions.WizardTTL, cfg.Sessions.HandoffTTL).
		WithObserver(metricsSvc.ObserveSessionStore)

	httpClient := &http.Client{Timeout: cfg.Upstream.Timeout}
	client := upstream.New(cfg.Upstream.BaseURL, httpClient, logr)

	files, err := storage.NewLocalStorage(cfg.Receipts.StorageDir)
	if err != nil {
		log.Fatalf("failed to init receipt storage: %v", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Receipts.SignedURLSecret, cfg.Receipts.SignedURLTTL)
	receiptSvc := service.NewReceiptService(files, signer, cfg.APIPrefix+"/receipts", metricsSvc, logr)

	// Receipts outlive their signed links only briefly.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			receiptSvc.Cleanup(24 * time.Hour)
		}
	}()

	selectionSvc := service.NewSelectionService(client, sessions, metricsSvc, logr)
	reservationSvc := service.NewReservationService(client, sessions, receiptSvc, logr)
	signupSvc := service.NewSignupService(client, logr)

	proxyHandler := handler.NewProxyHandler(cfg.Upstream.BaseURL, httpClient, metricsSvc, logr)
	selectionHandler := handler.NewSelectionHandler(selectionSvc)
	reservationHandler := handler.NewReservationHandler(reservationSvc)
	receiptHandler := handler.NewReceiptHandler(receiptSvc)
	sessionHandler := handler.NewSessionHandler(sessions)
	signupHandler := handler.NewSignupHandler(signupSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		// The relay passes whatever credential the caller sent; the upstream
		// decides. The exams shortcut rejects missing credentials itself.
		api.Any("/proxy/*path", proxyHandler.Relay)
		api.GET("/exams", proxyHandler.Exams)

		api.POST("/signup-requests", signupHandler.Create)
		api.GET("/receipts/:token", receiptHandler.Download)

		secured := api.Group("", middleware.Auth())
		{
			wizard := secured.Group("/reservation/sessions")
			{
				wizard.POST("", selectionHandler.Start)
				wizard.GET("/:id", selectionHandler.Get)
				wizard.DELETE("/:id", selectionHandler.Delete)
				wizard.POST("/:id/kind", selectionHandler.SelectKind)
				wizard.POST("/:id/category", selectionHandler.SelectCategory)
				wizard.POST("/:id/org", selectionHandler.SelectOrg)
				wizard.POST("/:id/toggle", selectionHandler.Toggle)
				wizard.POST("/:id/filter", selectionHandler.Filter)
				wizard.POST("/:id/advance", selectionHandler.Advance)
			}

			secured.GET("/reservations/check", reservationHandler.Check)
			secured.PATCH("/reservations/check/rows/:examID", reservationHandler.UpdateRow)
			secured.POST("/reservations/submit", reservationHandler.Submit)
			secured.GET("/reservations/done", reservationHandler.Done)

			secured.DELETE("/session", sessionHandler.Logout)
			secured.GET("/session/preferences", sessionHandler.GetPreferences)
			secured.PUT("/session/preferences", sessionHandler.PutPreferences)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "upstream_configured", cfg.Upstream.BaseURL != "")
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

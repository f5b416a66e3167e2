package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/jipjipmoney/keywords-api/api/swagger"
	"github.com/jipjipmoney/keywords-api/internal/handler"
	"github.com/jipjipmoney/keywords-api/internal/middleware"
	"github.com/jipjipmoney/keywords-api/internal/models"
	"github.com/jipjipmoney/keywords-api/internal/repository"
	"github.com/jipjipmoney/keywords-api/internal/service"
	"github.com/jipjipmoney/keywords-api/pkg/cache"
	"github.com/jipjipmoney/keywords-api/pkg/config"
	"github.com/jipjipmoney/keywords-api/pkg/database"
	"github.com/jipjipmoney/keywords-api/pkg/export"
	"github.com/jipjipmoney/keywords-api/pkg/logger"
	corsmiddleware "github.com/jipjipmoney/keywords-api/pkg/middleware/cors"
	reqidmiddleware "github.com/jipjipmoney/keywords-api/pkg/middleware/requestid"
)

// @title Keywords API
// @version 2.0.0
// @description Catalog curation service: change request workflow, keyword manager and audit trail
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	catalogDB, err := database.NewPostgres(cfg.CatalogDB)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect catalog database", "error", err)
	}
	defer catalogDB.Close()

	requestDB, err := database.NewPostgres(cfg.RequestDB)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect request database", "error", err)
	}
	defer requestDB.Close()

	var cacheRepo *repository.CacheRepository
	if cfg.Keywords.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, keyword cache disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient)
		}
	}

	requestRepo := repository.NewRequestRepository(requestDB)
	auditRepo := repository.NewAuditRepository(requestDB)
	catalogRepo := repository.NewCatalogRepository(catalogDB)
	userRepo := repository.NewUserRepository(requestDB)

	metricsSvc := service.NewMetricsService()
	var catalogSvc *service.CatalogService
	if cacheRepo != nil {
		catalogSvc = service.NewCatalogService(catalogRepo, cacheRepo, cfg.Keywords.CacheTTL, metricsSvc, logr)
	} else {
		catalogSvc = service.NewCatalogService(catalogRepo, nil, cfg.Keywords.CacheTTL, metricsSvc, logr)
	}
	applier := service.NewCatalogApplier(catalogRepo, catalogSvc, logr)
	requestSvc := service.NewRequestService(requestRepo, auditRepo, catalogRepo, applier, logr)
	keywordSvc := service.NewKeywordService(catalogRepo, auditRepo, catalogSvc, logr)
	authSvc := service.NewAuthService(userRepo, cfg.JWT, logr)
	exportSvc := service.NewExportService(requestRepo, auditRepo, export.NewCSVExporter(), export.NewPDFExporter())

	authHandler := handler.NewAuthHandler(authSvc)
	requestHandler := handler.NewRequestHandler(requestSvc, metricsSvc)
	keywordHandler := handler.NewKeywordHandler(keywordSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	auditHandler := handler.NewAuditHandler(auditRepo)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := catalogDB.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "catalog database unreachable"})
			return
		}
		if err := requestDB.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "request database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Scrape)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	authed.GET("/auth/me", authHandler.Me)

	anyRole := middleware.RequireRoles(models.RoleUser, models.RoleAdmin, models.RoleSuperAdmin)
	adminUp := middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)
	superOnly := middleware.RequireRoles(models.RoleSuperAdmin)

	requests := authed.Group("/requests")
	requests.POST("", anyRole, requestHandler.Submit)
	requests.GET("", anyRole, requestHandler.List)
	requests.GET("/:id", anyRole, requestHandler.Get)
	requests.POST("/:id/approve", adminUp, requestHandler.Approve)
	requests.POST("/:id/reject", adminUp, requestHandler.Reject)
	requests.POST("/:id/execute", superOnly, requestHandler.Execute)
	requests.POST("/:id/mark-executed", superOnly, requestHandler.MarkExecuted)

	catalog := authed.Group("/catalog", anyRole)
	catalog.GET("/brands", catalogHandler.Brands)
	catalog.GET("/brands/:brand/keywords", catalogHandler.BrandKeywords)
	catalog.GET("/brands/:brand/models", catalogHandler.Models)
	catalog.GET("/models/:id/sizes", catalogHandler.Sizes)
	catalog.GET("/models/:id/materials", catalogHandler.Materials)

	keywords := authed.Group("/keywords", adminUp)
	keywords.POST("/brands", keywordHandler.AddBrand)
	keywords.POST("/brands/:brand/colors", keywordHandler.AddBrandColor)
	keywords.POST("/brands/:brand/hardwares", keywordHandler.AddBrandHardware)
	keywords.POST("/models", keywordHandler.AddModel)
	keywords.POST("/models/:id/sizes", keywordHandler.AddSize)
	keywords.POST("/models/:id/materials", keywordHandler.AddMaterial)
	keywords.PUT("/models/:id/name", keywordHandler.RenameSubmodel)
	keywords.DELETE("/models/:id", keywordHandler.DeleteSubmodel)
	keywords.PUT("/sizes/:id", keywordHandler.UpdateSize)
	keywords.DELETE("/sizes/:id", keywordHandler.DeleteSize)
	keywords.PUT("/materials/:id", keywordHandler.UpdateMaterial)
	keywords.DELETE("/materials/:id", keywordHandler.DeleteMaterial)

	authed.GET("/audit", adminUp, auditHandler.List)

	if cfg.Exports.Enabled {
		exports := authed.Group("/exports", adminUp)
		exports.GET("/requests", exportHandler.Requests)
		exports.GET("/audit", exportHandler.AuditLog)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"cafe-pos/config"
	"cafe-pos/internal/database"
	"cafe-pos/internal/database/models"
	"cafe-pos/internal/gateway/clients"
	"cafe-pos/internal/gateway/handlers"
	"cafe-pos/internal/gateway/health"
	"cafe-pos/internal/gateway/middleware"
	"cafe-pos/internal/logger"
	posh "cafe-pos/internal/services/pos/handler"
	userh "cafe-pos/internal/services/user/handler"
	"cafe-pos/internal/utils"
)

const healthRefreshInterval = 30 * time.Second

type healthSource interface {
	Snapshot() (string, map[string]health.ComponentStatus)
}

type grpcProbe interface {
	IsServing(ctx context.Context, service string) (bool, error)
}

func main() {
	cfg := config.LoadConfig()

	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	decimal.MarshalJSONWithoutQuotes = true
	utils.SetJWTSecret(cfg.Auth.JWTSecret)

	db, err := database.NewConnection(cfg.DB.DSN)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.MigratePOSDB(db); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}
	if err := database.SeedPOSDB(db, cfg.DB.SeedDemo); err != nil {
		logger.Log.Fatal("Failed to seed demo data", zap.Error(err))
	}

	redisClient := config.NewRedisClient(cfg.Redis)
	if redisClient != nil {
		defer redisClient.Close()
	}

	middleware.InitMetrics(prometheus.DefaultRegisterer)
	posh.RegisterMetrics(prometheus.DefaultRegisterer)

	posHandler := posh.NewPOSHandler(db, redisClient,
		posh.WithLocation(cfg.Location),
		posh.WithLimits(cfg.POS.OrderListLimit, cfg.POS.TopItemsLimit),
	)
	userHandler := userh.NewUserHandler(db, redisClient, cfg.Auth.SessionTTL)

	checker := health.NewChecker(db, redisClient)
	if err := checker.Start(healthRefreshInterval); err != nil {
		logger.Log.Fatal("Failed to schedule health checks", zap.Error(err))
	}
	defer checker.Stop()

	grpcServer := grpc.NewServer()
	checker.Register(grpcServer)
	lis, err := net.Listen("tcp", ":"+cfg.GRPC.Port)
	if err != nil {
		logger.Log.Fatal("Failed to listen for gRPC", zap.String("port", cfg.GRPC.Port), zap.Error(err))
	}
	go func() {
		logger.Log.Info("gRPC health server listening", zap.String("port", cfg.GRPC.Port))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Log.Error("gRPC server stopped", zap.Error(err))
		}
	}()
	defer grpcServer.GracefulStop()

	probe, err := clients.NewHealthProbe("localhost:" + cfg.GRPC.Port)
	if err != nil {
		logger.Log.Warn("gRPC health probe unavailable", zap.Error(err))
	} else {
		defer probe.Close()
	}

	var p grpcProbe
	if probe != nil {
		p = probe
	}
	r := setupRouter(cfg, posHandler, userHandler, checker, p)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: r,
	}
	go func() {
		logger.Log.Info("Starting server", zap.String("port", cfg.HTTP.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
}

func setupRouter(cfg config.Config, pos handlers.POSService, users handlers.UserService, checker healthSource, probe grpcProbe) *gin.Engine {
	posHTTP := handlers.NewPOSHTTPHandler(pos)
	userHTTP := handlers.NewUserHTTPHandler(users, cfg.Auth.SessionSecure)

	r := gin.New()

	r.Use(middleware.CORS(cfg.HTTP.CORSOrigins))
	r.Use(logger.RequestLogger())
	r.Use(gin.Recovery())
	r.Use(middleware.PrometheusMiddleware())
	r.Use(middleware.RateLimit(cfg.HTTP.RateLimit))

	// --- Public API Group ---
	public := r.Group("/api")
	{
		public.POST("/login", userHTTP.Login)
		public.POST("/logout", userHTTP.Logout)
		public.GET("/_health", healthCheckHandler(checker))
	}

	// --- Protected API Group ---
	protected := r.Group("/api")
	protected.Use(middleware.JWTAuth())
	{
		protected.GET("/user", userHTTP.CurrentUser)

		orders := protected.Group("/orders")
		{
			orders.POST("", posHTTP.CreateOrder)
			orders.POST("/quote", posHTTP.QuoteOrder)
			orders.GET("", posHTTP.ListOrders)
			orders.GET("/:id", posHTTP.GetOrder)
		}

		protected.GET("/categories", posHTTP.ListCategories)
		protected.GET("/products", posHTTP.ListProducts)
		protected.GET("/products/low-stock", posHTTP.ListLowStock)
		protected.GET("/settings", posHTTP.GetSettings)

		manager := protected.Group("")
		manager.Use(middleware.RequireRole(models.RoleManager))
		{
			reports := manager.Group("/reports")
			{
				reports.GET("/summary", posHTTP.Summary)
				reports.GET("/export", posHTTP.Export)
			}

			manager.POST("/categories", posHTTP.CreateCategory)
			manager.PUT("/categories/:id", posHTTP.UpdateCategory)
			manager.DELETE("/categories/:id", posHTTP.DeleteCategory)

			manager.POST("/products", posHTTP.CreateProduct)
			manager.PUT("/products/:id", posHTTP.UpdateProduct)
			manager.DELETE("/products/:id", posHTTP.DeleteProduct)
			manager.PUT("/products/:id/stock", posHTTP.AdjustStock)

			manager.PUT("/settings", posHTTP.UpdateSettings)
		}
	}

	r.GET("/health/detailed", detailedHealthCheckHandler(checker, probe))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func healthCheckHandler(checker healthSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, _ := checker.Snapshot()
		httpStatus := http.StatusOK
		if status == health.StatusUnavailable {
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, gin.H{
			"status":    status,
			"message":   "Server is running",
			"timestamp": time.Now(),
		})
	}
}

func detailedHealthCheckHandler(checker healthSource, probe grpcProbe) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		overallStatus, components := checker.Snapshot()
		services := map[string]interface{}{}
		for name, cs := range components {
			services[name] = cs
		}
		grpcStatus := checkServiceHealth(ctx, probe)
		services["grpc"] = grpcStatus
		if grpcStatus["status"] != health.StatusHealthy && overallStatus == health.StatusHealthy {
			overallStatus = health.StatusDegraded
		}

		c.JSON(http.StatusOK, gin.H{
			"overall_status": overallStatus,
			"services":       services,
			"timestamp":      time.Now(),
		})
	}
}

func checkServiceHealth(ctx context.Context, probe grpcProbe) map[string]interface{} {
	if probe == nil {
		return map[string]interface{}{
			"status":  health.StatusUnavailable,
			"message": "Health client not initialized",
		}
	}
	serving, err := probe.IsServing(ctx, health.ServiceName)
	if err != nil || !serving {
		return map[string]interface{}{
			"status":  health.StatusUnavailable,
			"message": "Service is not serving",
		}
	}
	return map[string]interface{}{
		"status":  health.StatusHealthy,
		"message": "Service is responding",
	}
}

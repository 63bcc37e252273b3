package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	_ "notification-dispatch/ddd/adapter/http"
	"notification-dispatch/ddd/application/app"
	"notification-dispatch/internal/resource"
	"notification-dispatch/pkg/config"
	"notification-dispatch/pkg/lock"
	"notification-dispatch/pkg/logger"
	"notification-dispatch/pkg/manager"
	"notification-dispatch/pkg/middleware"
	"notification-dispatch/pkg/redisclient"
	"notification-dispatch/pkg/repository"
	"notification-dispatch/pkg/sse"
)

// Run is the entrypoint of notification-dispatch.
func Run() {
	fmt.Println("[STARTUP] Starting notification dispatch service...")

	cfgPath := resolveConfigPath()
	fmt.Println("[STARTUP] Loading config file...")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("[ERROR] Failed to load config (%s): %v\n", cfgPath, err)
		os.Exit(1)
	}
	fmt.Printf("[STARTUP] Config file loaded: %s\n", cfgPath)

	fmt.Println("[STARTUP] Initializing logger...")
	logService := logger.NewLogger(cfg)
	logger.SetGlobalLogger(logService)
	logger.Infof("Notification dispatch service starting version=%s", "1.0.0")

	// Initialize database connection and expose it via internal resource package.
	logger.Infof("Initializing database connection...")
	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal(fmt.Sprintf("Failed to initialize database error=%v", err))
	}
	defer db.Close()
	resource.SetMainDB(db.Self)
	logger.Infof("Database connected")

	// Initialize Redis client (optional). If initialization fails we log it
	// and continue with process-local notifications and the MySQL lock.
	logger.Infof("Initializing Redis client...")
	redisCli, err := redisclient.New(cfg.Redis)
	if err != nil {
		logger.Errorf("Failed to initialize redis; SSE notifications will be local-only error=%v", err)
		redisCli = nil
	} else {
		defer func() {
			logger.Infof("Closing Redis client...")
			_ = redisCli.Close()
		}()
		// Bridge in-memory SSE hub to Redis Pub/Sub for cross-instance fanout.
		sse.InitRedisPubSub(redisCli.Raw(), "")
	}

	// Pick the cross-instance dispatch lock provider.
	var locks lock.Provider
	if cfg.Dispatch.LockProvider == "redis" && redisCli != nil {
		locks = lock.NewRedisProvider(redisCli.Raw(), cfg.Dispatch.LockTTL)
		logger.Infof("Dispatch lock provider: redis")
	} else {
		locks = lock.NewMySQLProvider(db.Self)
		logger.Infof("Dispatch lock provider: mysql")
	}

	// Wire the dispatch engine: bounded pool, worker, service, scheduler.
	scheduler, pool := app.InitDispatch(cfg, db.Self, locks)

	// Create Gin engine and common middlewares.
	logger.Infof("Creating HTTP routes...")
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestContextMiddleware(),
		middleware.RequestLogMiddleware(),
	)

	// Health check endpoint.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"service":   "notification-dispatch",
			"timestamp": time.Now().Unix(),
		})
	})

	// Register all controllers via shared manager package; the dispatch
	// controller is wired from ddd/adapter/http via init() side effects.
	logger.Infof("Registering routes...")
	manager.RegisterAllRoutes(router)
	logger.Infof("Routes registered")

	// Start the dispatch scheduler heartbeat.
	scheduler.Start()

	// Start HTTP server with graceful shutdown.
	port := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:    port,
		Handler: router,
	}

	go func() {
		logger.Infof("HTTP server starting port=%s service=%s", port, "notification-dispatch")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(fmt.Sprintf("Failed to start HTTP server error=%v", err))
		}
	}()

	logger.Infof("HTTP server started port=%s health_url=%s", port, fmt.Sprintf("http://localhost%s/health", port))

	// Wait for termination signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Received shutdown signal, shutting down server...")

	// Stop producing new work before draining what is queued.
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Dispatch.DrainTimeout)
	defer cancel()

	if err := pool.Shutdown(ctx, cfg.Dispatch.DrainOnShutdown); err != nil {
		logger.Errorf("Worker pool did not drain in time error=%v", err)
	}

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("Server forced to close error=%v", err))
	}

	logger.Infof("Server exited safely")

	if logService != nil {
		logger.Infof("Closing logger...")
		logService.Close()
	}
}

// resolveConfigPath determines which config file to use.
func resolveConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	if env := os.Getenv("CONFIG_ENV"); env != "" {
		return fmt.Sprintf("configs/config.%s.yaml", env)
	}
	return "configs/config.dev.yaml"
}

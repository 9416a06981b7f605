package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"mc-console-api/internal/cache"
	"mc-console-api/internal/config"
	"mc-console-api/internal/handler"
	"mc-console-api/internal/middleware"
	"mc-console-api/internal/model"
	"mc-console-api/internal/repository"
	"mc-console-api/internal/router"
	"mc-console-api/internal/service"
	"mc-console-api/internal/store"
	"mc-console-api/internal/ws"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting MC Console API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize snapshot repository based on config
	var snapshotRepo repository.SnapshotRepository
	switch cfg.Store.Type {
	case "sqlite":
		sqliteRepo, err := repository.NewSQLiteSnapshotRepository(cfg.Store.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		snapshotRepo = sqliteRepo
		log.Println("SQLite snapshot repository initialized")
	case "mysql":
		mysqlRepo, err := repository.NewMySQLSnapshotRepository(cfg.Store.MySQLDSN())
		if err != nil {
			log.Fatalf("Failed to initialize MySQL: %v", err)
		}
		snapshotRepo = mysqlRepo
		log.Println("MySQL snapshot repository initialized")
	default: // bolt
		boltRepo, err := repository.NewBoltSnapshotRepository(cfg.Store.BoltPath)
		if err != nil {
			log.Fatalf("Failed to initialize bolt store: %v", err)
		}
		snapshotRepo = boltRepo
		log.Println("Bolt snapshot repository initialized")
	}
	defer snapshotRepo.Close()

	// Rehydrate the entity store
	entityStore, err := store.New(snapshotRepo)
	if err != nil {
		log.Fatalf("Failed to rehydrate store: %v", err)
	}
	log.Printf("Store rehydrated: %d accounts, %d proxies, %d transactions",
		len(entityStore.Accounts()), len(entityStore.Proxies()), len(entityStore.SpawnerTransactions()))

	// Initialize session cache
	var sessionCache cache.Cache
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(cache.RedisCacheConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			log.Printf("Warning: Redis connection failed, falling back to memory cache: %v", err)
			sessionCache = cache.NewMemoryCache()
		} else {
			sessionCache = redisCache
		}
	} else {
		sessionCache = cache.NewMemoryCache()
	}
	defer sessionCache.Close()

	// Initialize services
	sessionService := service.NewSessionService(sessionCache, cfg.Access.PIN, cfg.Access.SessionTTL)
	statusLog := service.NewStatusLog()
	consoleService := service.NewConsoleService(entityStore, statusLog)

	// Status event feed
	hub := ws.NewHub()

	// Status checker: reconcile every probe outcome into the store, retain
	// it for the diagnostic view and push it to connected consoles.
	statusChecker := service.NewStatusChecker(entityStore, service.StatusCheckerConfig{
		LookupURL:    cfg.Status.LookupURL,
		APIKey:       cfg.Status.APIKey,
		PollInterval: cfg.Status.PollInterval,
		ProbeTimeout: cfg.Status.ProbeTimeout,
	}, func(result model.StatusResult) {
		patch := model.AccountPatch{
			IsOnline:    &result.IsOnline,
			LastChecked: &result.Timestamp,
		}
		if err := entityStore.UpdateAccount(result.AccountID, patch); err != nil {
			log.Printf("Warning: failed to persist status for %s: %v", result.AccountID, err)
		}
		statusLog.Record(result)
		hub.Broadcast("status", result)
	})
	statusChecker.Start()

	// Initialize handlers
	healthHandler := handler.New(cfg.App.Version)
	accountHandler := handler.NewAccountHandler(consoleService, entityStore, statusChecker, statusLog)
	proxyHandler := handler.NewProxyHandler(consoleService, entityStore)
	spawnerHandler := handler.NewSpawnerHandler(consoleService, entityStore)
	authHandler := handler.NewAuthHandler(sessionService)
	credentialsHandler := handler.NewCredentialsHandler()
	adminHandler := handler.NewAdminHandler(entityStore, hub, cfg.Store.Type)

	// Create access gate with injected dependencies
	accessGate := middleware.NewAccessGate(middleware.AccessGateConfig{
		Sessions: sessionService,
	})

	// Create router
	r := router.New(router.Config{
		Handler:            healthHandler,
		AccountHandler:     accountHandler,
		ProxyHandler:       proxyHandler,
		SpawnerHandler:     spawnerHandler,
		AuthHandler:        authHandler,
		CredentialsHandler: credentialsHandler,
		AdminHandler:       adminHandler,
		Hub:                hub,
		AccessGate:         accessGate,
		StaticDir:          cfg.Static.Dir,
		StaticBasePath:     cfg.Static.NormalizedBasePath(),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Stop the polling timer first so no new probe cycle starts
	statusChecker.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

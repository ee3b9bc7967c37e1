package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"casahogar-storefront-api/internal/auth"
	"casahogar-storefront-api/internal/cache"
	"casahogar-storefront-api/internal/cart"
	"casahogar-storefront-api/internal/catalog"
	"casahogar-storefront-api/internal/checkout"
	"casahogar-storefront-api/internal/config"
	"casahogar-storefront-api/internal/docstore"
	"casahogar-storefront-api/internal/handler"
	"casahogar-storefront-api/internal/localstore"
	"casahogar-storefront-api/internal/notify"
	"casahogar-storefront-api/internal/router"
	"casahogar-storefront-api/internal/session"
	"casahogar-storefront-api/internal/stock"

	"github.com/redis/go-redis/v9"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting CasaHogar storefront API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize the catalog document store based on config
	var store docstore.Store
	switch cfg.CatalogDB.Type {
	case "firestore":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		fsStore, err := docstore.NewFirestoreStore(ctx, cfg.CatalogDB.FirestoreProject, cfg.CatalogDB.FirestoreCredentials)
		cancel()
		if err != nil {
			log.Fatalf("Failed to initialize Firestore: %v", err)
		}
		store = fsStore
		log.Println("Firestore catalog store initialized")
	case "mongodb", "mongo":
		mongoStore, err := docstore.NewMongoStore(cfg.CatalogDB.MongoURI, cfg.CatalogDB.MongoDatabase)
		if err != nil {
			log.Fatalf("Failed to initialize MongoDB: %v", err)
		}
		store = mongoStore
		log.Println("MongoDB catalog store initialized")
	default: // memory
		store = docstore.NewMemoryStore()
		log.Println("In-memory catalog store initialized")
	}
	defer store.Close()

	// Initialize durable local storage for carts
	var local localstore.Store
	switch cfg.LocalStore.Type {
	case "memory":
		local = localstore.NewMemoryStore()
		log.Println("In-memory local store initialized")
	default: // sqlite
		sqliteStore, err := localstore.NewSQLiteStore(cfg.LocalStore.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite local store: %v", err)
		}
		local = sqliteStore
		log.Println("SQLite local store initialized")
	}
	defer local.Close()

	// Initialize the shared catalog cache (Redis optional; memory fallback)
	var catalogCache cache.Cache
	if cfg.Cache.Type == "redis" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Printf("Warning: Redis connection failed, using memory cache: %v", err)
			catalogCache = cache.NewMemoryCache()
		} else {
			catalogCache = cache.NewRedisCache(redisClient, cfg.Cache.RedisPrefix)
			defer redisClient.Close()
			log.Println("Redis catalog cache initialized")
		}
	} else {
		catalogCache = cache.NewMemoryCache()
		log.Println("Memory catalog cache initialized")
	}

	// Collaborators
	notifier := notify.LogNotifier{}
	provider := auth.NewStaticProvider()

	// Core components
	registry := stock.NewRegistry()
	stockManager := stock.NewManager(store, registry)
	products := catalog.NewProductCache(store, catalogCache)
	orders := catalog.NewOrderCache(store)

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	cartStore := cart.NewStore(startCtx, local, registry, notifier)
	catalogSession := session.New(products, orders, cartStore, provider, local)
	catalogSession.Start(startCtx)
	startCancel()

	checkoutService := checkout.NewService(store, cartStore, orders, notifier)

	// Handlers
	healthHandler := handler.New(cfg.App.Version, cfg.App.Environment)
	catalogHandler := handler.NewCatalogHandler(catalogSession, stockManager)
	cartHandler := handler.NewCartHandler(catalogSession)
	orderHandler := handler.NewOrderHandler(catalogSession, checkoutService)
	authHandler := handler.NewAuthHandler(provider)

	// Create router
	r := router.New(router.Config{
		Handler:        healthHandler,
		CatalogHandler: catalogHandler,
		CartHandler:    cartHandler,
		OrderHandler:   orderHandler,
		AuthHandler:    authHandler,
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

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	stockManager.StopAll()
	catalogSession.Close()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

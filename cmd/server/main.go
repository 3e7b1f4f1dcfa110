package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"artfolio/internal/block"
	"artfolio/internal/cache"
	"artfolio/internal/common"
	"artfolio/internal/config"
	"artfolio/internal/dbmongo"
	"artfolio/internal/dbmysql"
	"artfolio/internal/notif"
	"artfolio/internal/portfolio"
	"artfolio/internal/social"
	"artfolio/internal/upload"
)

func main() {

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()

	db, err := dbmysql.NewMySQL(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	mongoClient, err := dbmongo.NewMongoConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to object store: %v", err)
	}
	objectStore := dbmongo.NewObjectStorage(mongoClient)

	portfolioCache, err := cache.NewCache(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	if portfolioCache != nil {
		log.Println("Portfolio cache enabled")
	}

	var natsConn *nats.Conn
	if cfg.NATS.Enabled {
		natsConn, err = nats.Connect(fmt.Sprintf("nats://%s:%s", cfg.NATS.Host, cfg.NATS.Port))
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		log.Println("NATS event publishing enabled")
	}

	// Repositories
	blockRepo := block.NewBlockRepository(db)
	portfolioRepo := portfolio.NewPortfolioRepository(db)
	notifRepo := notif.NewNotificationRepository(db)
	userRepo := dbmysql.NewUserRepository(db)
	socialRepo := social.NewSocialRepository(db)
	uploadRepo := upload.NewUploadRepository(db)

	// Services
	notifService := notif.NewNotificationService(cfg, notifRepo, natsConn)
	portfolioService := portfolio.NewPortfolioService(portfolioRepo, blockRepo, portfolioCache, notifService)
	blockService := block.NewBlockService(blockRepo, portfolioService)
	socialService := social.NewSocialService(socialRepo, userRepo, portfolioRepo, notifService)
	uploadService := upload.NewUploadService(uploadRepo, objectStore, blockService, portfolioService, userRepo, cfg)

	cleaner := upload.NewCleaner(uploadRepo, objectStore, time.Duration(cfg.Upload.CleanupInterval)*time.Minute)
	cleaner.Start()

	// Routing: broker/core operations behind session auth, the object
	// store surface on the bare router (grants are their own auth).
	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	uploadHandler := upload.NewHandler(uploadService)
	uploadHandler.RegisterMediaRoutes(router)

	authed := router.NewRoute().Subrouter()
	authed.Use(common.AuthMiddleware)
	uploadHandler.RegisterRoutes(authed)
	block.NewHandler(blockService).RegisterRoutes(authed)
	portfolio.NewHandler(portfolioService).RegisterRoutes(authed)
	social.NewHandler(socialService).RegisterRoutes(authed)
	notif.NewHandler(notifService).RegisterRoutes(authed)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}

	cleaner.Stop()
	notifService.Shutdown()
	if natsConn != nil {
		natsConn.Close()
	}
	if err := portfolioCache.Close(); err != nil {
		log.Printf("Redis close error: %v", err)
	}
	if err := mongoClient.Close(shutdownCtx); err != nil {
		log.Printf("Mongo close error: %v", err)
	}

	log.Println("Server stopped")
}

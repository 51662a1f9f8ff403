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

	"sagepos/backend/internal/cache"
	"sagepos/backend/internal/config"
	"sagepos/backend/internal/httpapi"
	"sagepos/backend/internal/lookup"
	"sagepos/backend/internal/service"
	"sagepos/backend/internal/store"
	"sagepos/backend/internal/store/memory"
	pgstore "sagepos/backend/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatalf("invalid security configuration: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start with in-memory fallback", err)
		}
		closers = append(closers, pg.Close)
		if cfg.DatabaseAutoMigrate {
			if err := pg.Migrate(ctx); err != nil {
				log.Fatalf("migration failed: %v", err)
			}
			if err := pg.EnsureEmployees(ctx, memory.SeedEmployees()); err != nil {
				log.Fatalf("seeding employees failed: %v", err)
			}
			log.Println("postgres: schema migrated")
		}
		repo = pg
		log.Println("repository: postgres")
	} else {
		repo = memory.NewSeeded()
		log.Println("repository: in-memory")
	}

	var cacheStore cache.Store = cache.NewMemoryStore()
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Printf("redis unavailable (%v), using in-process cache", err)
		} else {
			cacheStore = redisCache
			closers = append(closers, redisCache.Close)
			log.Println("cache: redis")
		}
	} else {
		log.Println("cache: in-process")
	}

	tokenTTL := time.Duration(cfg.AccessTokenTTLMinutes) * time.Minute
	catalog := lookup.NewCatalog(repo, cacheStore, time.Duration(cfg.CatalogCacheTTLSeconds)*time.Second)
	drafts := cache.NewDraftStore(cacheStore, 24*time.Hour)
	svc := service.New(repo, catalog, drafts, service.Options{
		TaxRate:      &cfg.SalesTaxRate,
		StoreTimeout: time.Duration(cfg.StoreTimeoutSeconds) * time.Second,
	})
	auth := httpapi.NewAuthManager(cfg.AuthSecret, tokenTTL, cache.NewSessionStore(cacheStore, tokenTTL), svc)
	api := httpapi.New(svc, auth, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("POS backend listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if cfg.AllowedOrigin == "*" {
		return fmt.Errorf("ALLOWED_ORIGIN must name a single origin")
	}
	return nil
}

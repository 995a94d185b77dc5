// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
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

	"github.com/gatherpoint/gatherpoint/internal/config"
	"github.com/gatherpoint/gatherpoint/internal/database"
	"github.com/gatherpoint/gatherpoint/internal/handler"
	"github.com/gatherpoint/gatherpoint/internal/repository"
	"github.com/gatherpoint/gatherpoint/internal/service"
	"github.com/gatherpoint/gatherpoint/pkg/token"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()

	// ── 1. Configuration ──────────────────────────────────────────────────
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ── 2. Connect to PostgreSQL ──────────────────────────────────────────
	pool, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("✓ Connected to PostgreSQL")

	// ── 3. Wire up layers ────────────────────────────────────────────────
	secret := cfg.JWT.Secret
	if secret == "" {
		// Development only; config.Validate rejects this in production.
		secret = uuid.New().String()
		log.Println("JWT_SECRET not set, using an ephemeral development secret")
	}
	tokens, err := token.NewService(secret, cfg.JWT.Issuer, cfg.JWT.Expiration())
	if err != nil {
		log.Fatalf("token service: %v", err)
	}

	eventRepo := repository.NewEventRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	authSvc := service.NewAuthService(userRepo, tokens)
	eventSvc := service.NewEventService(eventRepo)
	rsvpSvc := service.NewReservationService(eventRepo)

	r := handler.NewRouter(
		handler.NewAuthHandler(authSvc),
		handler.NewEventHandler(eventSvc),
		handler.NewRSVPHandler(rsvpSvc),
		authSvc,
	)

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		log.Printf("✓ Server listening on http://localhost:%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	log.Println("server stopped")
}

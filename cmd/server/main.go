// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/api"
	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/breakdown"
	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/config"
	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/llm"
	_ "github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/llm/providers/gateway"
	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/narrative"
	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer st.Close()

	if err := st.EnsureSchema(ctx); err != nil {
		log.Fatalf("ensuring schema: %v", err)
	}
	log.Println("database ready")

	provider, err := llm.GetProvider("gateway", map[string]string{
		"api_key":  cfg.GatewayAPIKey,
		"base_url": cfg.GatewayBaseURL,
	})
	if err != nil {
		log.Fatalf("initializing AI gateway provider: %v", err)
	}

	hub := api.NewJobHub()
	planner := narrative.NewPlanner(st, provider, cfg.Tuning.Narrative, hub)
	validator := narrative.NewValidator(st, provider, cfg.Tuning.Narrative)
	normalizer := breakdown.NewNormalizer(cfg.Tuning.Breakdown)

	handlers := api.NewHandlers(planner, validator, normalizer, st, hub)
	router := api.NewRouter(handlers, cfg.AuthTokens, cfg.DebugMode)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}

	go func() {
		log.Printf("listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
	log.Println("server stopped")
}

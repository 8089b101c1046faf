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

	"github.com/robfig/cron/v3"

	"github.com/pep299/article-digest/internal/application"
	"github.com/pep299/article-digest/internal/config"
	"github.com/pep299/article-digest/internal/handlers"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := application.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	defer app.Close()

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:      app.Server.SetupRoutes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Schedule daily sends
	scheduler := cron.New(cron.WithLocation(time.UTC))
	schedule(ctx, scheduler, app.Server, cfg.OwnerSchedule, handlers.AudienceOwner)
	schedule(ctx, scheduler, app.Server, cfg.SubscriberSchedule, handlers.AudienceSubscribers)
	scheduler.Start()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s:%s", cfg.Host, cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-sigChan
	log.Println("Shutting down server...")

	// Let a running send finish before cancelling it
	<-scheduler.Stop().Done()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

func schedule(ctx context.Context, scheduler *cron.Cron, server *handlers.Server, spec, audience string) {
	if spec == config.ScheduleOff {
		log.Printf("Scheduled digest to %s is off", audience)
		return
	}

	_, err := scheduler.AddFunc(spec, func() {
		if _, err := server.Send(ctx, audience); err != nil {
			log.Printf("❌ Scheduled digest failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule digest to %s: %v", audience, err)
	}
	log.Printf("🕐 Digest to %s scheduled at '%s' UTC", audience, spec)
}

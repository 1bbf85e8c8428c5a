package main

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
	"github.com/sirupsen/logrus"

	"github.com/mapexe/storefront-backend/internal/config"
	"github.com/mapexe/storefront-backend/internal/database"
	"github.com/mapexe/storefront-backend/internal/i18n"
	"github.com/mapexe/storefront-backend/internal/logger"
	"github.com/mapexe/storefront-backend/internal/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	logger.Setup(cfg.Log)

	// Open the store and migrate
	store, closeStore, err := database.OpenStore(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize store")
	}
	defer closeStore()

	if cfg.Seed.OnStart {
		result, err := database.SeedInitialData(context.Background(), store, database.SeedOptions{
			AdminUsername: cfg.Seed.AdminUsername,
			AdminEmail:    cfg.Seed.AdminEmail,
			AdminPassword: cfg.Seed.AdminPassword,
		})
		if err != nil {
			logrus.WithError(err).Fatal("Failed to seed initial data")
		}
		if result.GeneratedPassword != "" {
			fmt.Printf("Admin account %q created with password: %s\n", cfg.Seed.AdminUsername, result.GeneratedPassword)
		}
	}

	// Initialize i18n
	if err := i18n.Initialize(); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize i18n")
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	r, err := router.Initialize(store, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize router")
	}
	defer r.Close()

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logrus.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
	}

	logrus.Info("Server exited")
}

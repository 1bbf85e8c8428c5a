// Command seed migrates the configured database and loads the starter
// admin account, catalog and testimonials.
package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mapexe/storefront-backend/internal/config"
	"github.com/mapexe/storefront-backend/internal/database"
	"github.com/mapexe/storefront-backend/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	logger.Setup(cfg.Log)

	if cfg.Database.Driver == "memory" {
		logrus.Fatal("Seeding the memory driver has no lasting effect; set DB_DRIVER to postgres or sqlite")
	}

	store, closeStore, err := database.OpenStore(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize store")
	}
	defer closeStore()

	result, err := database.SeedInitialData(context.Background(), store, database.SeedOptions{
		AdminUsername: cfg.Seed.AdminUsername,
		AdminEmail:    cfg.Seed.AdminEmail,
		AdminPassword: cfg.Seed.AdminPassword,
	})
	if err != nil {
		logrus.WithError(err).Fatal("Failed to seed initial data")
	}

	switch {
	case result.GeneratedPassword != "":
		fmt.Printf("Admin account %q created.\nPassword: %s\nStore it now; it will not be shown again.\n",
			cfg.Seed.AdminUsername, result.GeneratedPassword)
	case result.AdminCreated:
		fmt.Printf("Admin account %q created with the configured password.\n", cfg.Seed.AdminUsername)
	default:
		fmt.Printf("Admin account %q already exists.\n", cfg.Seed.AdminUsername)
	}
	fmt.Printf("Catalog items added: %d, testimonials added: %d\n", result.ItemsCreated, result.TestimonialsAdded)
}

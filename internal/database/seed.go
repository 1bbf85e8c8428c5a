package database

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/mapexe/storefront-backend/internal/models"
	"github.com/mapexe/storefront-backend/internal/storage"
	"github.com/mapexe/storefront-backend/internal/utils"
)

const generatedPasswordLength = 16

type SeedOptions struct {
	AdminUsername string
	AdminEmail    string
	// AdminPassword is generated when empty.
	AdminPassword string
}

type SeedResult struct {
	AdminCreated bool
	// GeneratedPassword is set only when the admin was created with a
	// random password.
	GeneratedPassword string
	ItemsCreated      int
	TestimonialsAdded int
}

var seedItems = []models.CatalogItemInput{
	{
		Name:        "Battle Arena",
		Description: "An advanced PVP arena with multiple combat zones and custom effects.",
		Price:       decimal.RequireFromString("25.99"),
		Type:        models.CatalogItemTypeMap,
		Features:    []string{"Multiple combat zones", "Custom effects", "Optimized for performance"},
		Images:      []string{"https://images.unsplash.com/photo-1533750516457-a7f992034fec"},
	},
	{
		Name:        "Survival Island",
		Description: "Immersive survival experience with dynamic weather and resource systems.",
		Price:       decimal.RequireFromString("19.99"),
		Type:        models.CatalogItemTypeMap,
		Features:    []string{"Dynamic weather", "Resource systems", "Immersive experience"},
		Images:      []string{"https://images.unsplash.com/photo-1518709766631-a6a7f45921c3"},
	},
	{
		Name:        "Game Enhancement Script",
		Description: "Advanced script package with multiple game-enhancing features.",
		Price:       decimal.RequireFromString("14.99"),
		Type:        models.CatalogItemTypeScript,
		Features:    []string{"Game-enhancing features", "Secure, tested code", "Regular updates"},
		Images:      []string{"https://images.unsplash.com/photo-1563206767-5b18f218e8de"},
	},
}

var seedTestimonials = []models.TestimonialInput{
	{
		Name:    "GamerX42",
		Role:    "Map Purchaser",
		Rating:  5,
		Content: "The battle arena map I purchased exceeded my expectations. The quality and attention to detail are outstanding, and it's been a huge hit with my friends.",
	},
	{
		Name:    "BlockMaster99",
		Role:    "Script Purchaser",
		Rating:  4.5,
		Content: "The scripts I bought work flawlessly and the support team was very responsive when I had questions. Definitely recommend map.exe to anyone looking for quality Roblox content.",
	},
	{
		Name:    "RobloxPro2023",
		Role:    "Regular Customer",
		Rating:  5,
		Content: "I've purchased multiple maps from map.exe and each one has been superb. The transaction process is smooth and the Discord community is very helpful.",
	},
}

// SeedInitialData creates the admin account, the starter catalog and the
// showcase testimonials. Each group is skipped when it already has data, so
// running it twice is harmless.
func SeedInitialData(ctx context.Context, store storage.Store, opts SeedOptions) (*SeedResult, error) {
	logrus.Info("Seeding initial data...")
	result := &SeedResult{}

	if opts.AdminUsername == "" {
		opts.AdminUsername = "admin"
	}

	admin, err := store.GetAccountByUsername(ctx, opts.AdminUsername)
	if err != nil {
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}
	if admin == nil {
		password := opts.AdminPassword
		if password == "" {
			password, err = utils.GeneratePassword(generatedPasswordLength)
			if err != nil {
				return nil, fmt.Errorf("failed to generate admin password: %w", err)
			}
			result.GeneratedPassword = password
		}

		hash, err := models.HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}

		admin, err = store.CreateAccount(ctx, models.AccountInput{
			Username: opts.AdminUsername,
			Email:    opts.AdminEmail,
			Password: hash,
			IsAdmin:  true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create admin user: %w", err)
		}
		result.AdminCreated = true
		logrus.WithField("username", admin.Username).Info("Default admin user created successfully")
	}

	items, err := store.ListCatalogItems(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog items: %w", err)
	}
	if len(items) == 0 {
		for _, in := range seedItems {
			in.CreatedBy = admin.ID
			if _, err := store.CreateCatalogItem(ctx, in); err != nil {
				return nil, fmt.Errorf("failed to create item %q: %w", in.Name, err)
			}
			result.ItemsCreated++
		}
	}

	testimonials, err := store.ListTestimonials(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list testimonials: %w", err)
	}
	if len(testimonials) == 0 {
		verified := true
		for _, in := range seedTestimonials {
			created, err := store.CreateTestimonial(ctx, in)
			if err != nil {
				return nil, fmt.Errorf("failed to create testimonial from %q: %w", in.Name, err)
			}
			// New testimonials always start unverified; the showcase ones
			// are approved right away.
			if _, err := store.UpdateTestimonial(ctx, created.ID, models.TestimonialPatch{Verified: &verified}); err != nil {
				return nil, fmt.Errorf("failed to verify testimonial from %q: %w", in.Name, err)
			}
			result.TestimonialsAdded++
		}
	}

	logrus.WithFields(logrus.Fields{
		"admin_created": result.AdminCreated,
		"items":         result.ItemsCreated,
		"testimonials":  result.TestimonialsAdded,
	}).Info("Initial data seeding completed")
	return result, nil
}

package router

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/mapexe/storefront-backend/internal/access"
	"github.com/mapexe/storefront-backend/internal/config"
	"github.com/mapexe/storefront-backend/internal/handlers"
	"github.com/mapexe/storefront-backend/internal/middleware"
	"github.com/mapexe/storefront-backend/internal/services"
	"github.com/mapexe/storefront-backend/internal/storage"
	"github.com/mapexe/storefront-backend/internal/utils"
)

// Router is the HTTP surface of the back-office. Close releases the rate
// limiters' background goroutines.
type Router struct {
	*gin.Engine
	limiters []*middleware.RateLimiter
}

func (r *Router) Close() {
	for _, l := range r.limiters {
		l.Close()
	}
}

// Option customizes Initialize.
type Option func(*options)

type options struct {
	imageService *services.ImageService
}

// WithImageService replaces the image service built from cfg.
func WithImageService(svc *services.ImageService) Option {
	return func(o *options) { o.imageService = svc }
}

func Initialize(store storage.Store, cfg *config.Config, opts ...Option) (*Router, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	policy, err := access.NewPolicy()
	if err != nil {
		return nil, err
	}

	// Initialize services
	imageService := o.imageService
	if imageService == nil {
		imageService, err = services.NewImageService(cfg, policy)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize image service: %w", err)
		}
	}
	authService := services.NewAuthService(store, policy, cfg)
	catalogService := services.NewCatalogService(store, policy)
	orderService := services.NewOrderService(store, policy)
	testimonialService := services.NewTestimonialService(store, policy)
	accountService := services.NewAccountService(store, policy)
	dashboardService := services.NewDashboardService(store, policy)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	itemHandler := handlers.NewItemHandler(catalogService)
	orderHandler := handlers.NewOrderHandler(orderService)
	testimonialHandler := handlers.NewTestimonialHandler(testimonialService)
	accountHandler := handlers.NewAccountHandler(accountService)
	adminHandler := handlers.NewAdminHandler(dashboardService)
	uploadHandler := handlers.NewUploadHandler(imageService)
	healthHandler := handlers.NewHealthHandler(store)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	generalLimiter := middleware.PerSecond(cfg.RateLimit.GeneralPerSecond, cfg.RateLimit.GeneralBurst)
	authLimiter := middleware.PerMinute(cfg.RateLimit.AuthPerMinute, cfg.RateLimit.AuthBurst)
	uploadLimiter := middleware.PerMinute(10, 10)

	r := &Router{
		Engine:   gin.New(),
		limiters: []*middleware.RateLimiter{generalLimiter, authLimiter, uploadLimiter},
	}

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))

	r.GET("/health", healthHandler.Health)
	if cfg.AWS.AccessKeyID == "" {
		r.Static(services.LocalUploadPath, cfg.Uploads.LocalDir)
	}

	api := r.Group("/api")
	api.Use(generalLimiter.Middleware())
	api.Use(middleware.Authenticate(authService))
	api.Use(middleware.AuditLog())
	{
		// Authentication routes
		auth := api.Group("/auth")
		auth.Use(authLimiter.Middleware())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Legacy auth paths used by the storefront UI
		api.POST("/register", authLimiter.Middleware(), authHandler.Register)
		api.POST("/login", authLimiter.Middleware(), authHandler.Login)
		api.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
		api.GET("/user", middleware.AuthRequired(), authHandler.GetProfile)

		registerItemRoutes(api.Group("/items"), itemHandler)
		registerItemRoutes(api.Group("/products"), itemHandler)

		orders := api.Group("/orders")
		{
			orders.GET("", orderHandler.ListOrders)
			orders.POST("", orderHandler.CreateOrder)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.PUT("/:id", middleware.AuthRequired(), orderHandler.UpdateOrderStatus)
		}

		testimonials := api.Group("/testimonials")
		{
			testimonials.GET("", testimonialHandler.ListTestimonials)
			testimonials.POST("", testimonialHandler.CreateTestimonial)
			testimonials.PUT("/:id/verify", testimonialHandler.VerifyTestimonial)
		}

		accounts := api.Group("/accounts")
		{
			accounts.GET("", accountHandler.ListAccounts)
			accounts.DELETE("/:id", accountHandler.DeleteAccount)
			accounts.PUT("/:id/promote", accountHandler.PromoteAccount)
		}

		users := api.Group("/users")
		{
			users.GET("", accountHandler.ListAccounts)
			users.DELETE("/:id", accountHandler.DeleteAccount)
			users.PUT("/:id/make-admin", accountHandler.PromoteAccount)
		}

		admin := api.Group("/admin")
		{
			admin.GET("/stats", adminHandler.GetDashboardStats)
		}

		uploads := api.Group("/uploads")
		uploads.Use(middleware.AuthRequired())
		{
			uploads.POST("/images", uploadLimiter.Middleware(), uploadHandler.UploadImage)
		}
	}

	return r, nil
}

// registerItemRoutes mounts the catalog. Writes reject anonymous callers
// before the body is read.
func registerItemRoutes(group *gin.RouterGroup, h *handlers.ItemHandler) {
	group.GET("", h.ListItems)
	group.GET("/:id", h.GetItem)
	group.POST("", middleware.AuthRequired(), h.CreateItem)
	group.PUT("/:id", middleware.AuthRequired(), h.UpdateItem)
	group.DELETE("/:id", middleware.AuthRequired(), h.DeleteItem)
}

package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/windoze95/dapur-api/internal/cache"
	"github.com/windoze95/dapur-api/internal/config"
	"github.com/windoze95/dapur-api/internal/handlers"
	"github.com/windoze95/dapur-api/internal/logger"
	"github.com/windoze95/dapur-api/internal/metrics"
	"github.com/windoze95/dapur-api/internal/middleware"
	"github.com/windoze95/dapur-api/internal/repository"
	"github.com/windoze95/dapur-api/internal/service"
	"github.com/windoze95/dapur-api/internal/ws"
)

// Dependencies are the external resources the router wires into services.
type Dependencies struct {
	Users    repository.UserRepo
	Gen      service.Generator
	Source   service.RecipeSource
	Store    cache.Store
	Renderer service.PDFRenderer
	// Uploader is nil when PDF sharing is disabled.
	Uploader service.PDFUploader
}

// SetupRouter sets up the Gin router.
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowCredentials = true
	corsConfig.AllowOrigins = cfg.EnvVars.AllowedOrigins
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConfig.AddAllowHeaders("Authorization")
	r.Use(cors.New(corsConfig))

	// Add request ID middleware for request correlation
	r.Use(logger.RequestIDMiddleware())
	r.Use(logger.AccessLogMiddleware())

	// Ping route for testing
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/metrics", middleware.RequireBearer(cfg.EnvVars.MetricsToken), metrics.Handler())

	// User-related routes setup
	userService := service.NewUserService(cfg, deps.Users)
	userHandler := handlers.NewUserHandler(userService)

	// File-backed per-user stores
	chats := repository.NewConversationRepository(cfg.EnvVars.DataDir)
	bookmarks := repository.NewBookmarkRepository(cfg.EnvVars.DataDir)
	history := repository.NewViewHistoryRepository(cfg.EnvVars.DataDir)

	// Recipe-related routes setup
	recipeService := service.NewRecipeService(deps.Source, bookmarks, history, deps.Renderer, deps.Uploader)
	recipeHandler := handlers.NewRecipeHandler(recipeService)

	// Chef AI setup
	chefService := service.NewChefService(cfg.Prompts, deps.Gen, chats)
	searchService := service.NewRecipeSearchService(cfg.Prompts, deps.Gen, deps.Source, chats, cfg.EnvVars.RecipeTimeout)
	resultCache := cache.New(deps.Store, cfg.EnvVars.CacheTTL)
	cachedChef := service.NewCachedChefService(chefService, searchService, resultCache)
	chefHandler := handlers.NewChefHandler(cachedChef, recipeService)

	rps := cfg.EnvVars.AIRateLimit
	if rps <= 0 {
		rps = 1
	}
	burst := cfg.EnvVars.AIRateBurst
	if burst <= 0 {
		burst = 5
	}
	aiLimit := middleware.RateLimitByIP("ai", rps, burst, time.Minute, 10*time.Minute)

	// Group for API routes that don't require token verification
	apiPublic := r.Group("/v1")
	{
		// Create a new user
		apiPublic.POST("/users", userHandler.CreateUser)
		// Login a user
		apiPublic.POST("/auth/login", userHandler.LoginUser)
		// Refresh an access token
		apiPublic.POST("/auth/refresh", userHandler.RefreshToken)
	}

	// Group for API routes that require token verification
	apiProtected := r.Group("/v1")
	{
		apiProtected.Use(middleware.VerifyTokenMiddleware(cfg))
		apiProtected.Use(middleware.AttachUserToContext(userService))

		// User-related routes
		apiProtected.GET("/users/verify", userHandler.VerifyToken)
		apiProtected.GET("/users/me", userHandler.GetUserByID)

		// Chef AI routes
		apiProtected.POST("/chef/ask", aiLimit, chefHandler.Ask)
		apiProtected.POST("/chef/search", aiLimit, chefHandler.Search)
		apiProtected.GET("/chef/history", chefHandler.GetHistory)
		apiProtected.DELETE("/chef/history", chefHandler.ClearHistory)

		// Recipe routes
		apiProtected.GET("/recipes/search", recipeHandler.SearchRecipes)
		apiProtected.GET("/recipes/random", recipeHandler.RandomRecipes)
		apiProtected.GET("/recipes/:recipe_id", recipeHandler.GetRecipe)
		apiProtected.GET("/recipes/:recipe_id/pdf", recipeHandler.ExportPDF)
		apiProtected.POST("/recipes/:recipe_id/pdf/share", recipeHandler.SharePDF)

		// Bookmarks
		apiProtected.GET("/bookmarks", recipeHandler.ListBookmarks)
		apiProtected.POST("/bookmarks/:recipe_id", recipeHandler.AddBookmark)
		apiProtected.DELETE("/bookmarks/:recipe_id", recipeHandler.RemoveBookmark)

		// View history
		apiProtected.GET("/history", recipeHandler.ListHistory)
		apiProtected.DELETE("/history", recipeHandler.ClearHistory)
	}

	// WebSocket routes (authenticated via query param token)
	hub := ws.NewHub()
	go hub.Run()
	chefSocket := ws.NewChefHandler(hub, cfg.EnvVars.JwtSecretKey, userService, cachedChef, cfg.EnvVars.AllowedOrigins)
	r.GET("/v1/ws/chef", aiLimit, chefSocket.HandleChefSession)

	return r
}

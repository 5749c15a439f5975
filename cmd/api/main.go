package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/dapur-api/internal/ai"
	"github.com/windoze95/dapur-api/internal/cache"
	"github.com/windoze95/dapur-api/internal/config"
	"github.com/windoze95/dapur-api/internal/db"
	"github.com/windoze95/dapur-api/internal/logger"
	"github.com/windoze95/dapur-api/internal/pdf"
	"github.com/windoze95/dapur-api/internal/repository"
	"github.com/windoze95/dapur-api/internal/router"
	"github.com/windoze95/dapur-api/internal/s3"
	"github.com/windoze95/dapur-api/internal/spoonacular"
	"go.uber.org/zap"
)

// init is called before the main function.
func init() {
	// Initialize structured logger (dev mode if GIN_MODE != release)
	isDev := os.Getenv("GIN_MODE") != "release"
	logger.Init(isDev)

	// Configure the runtime
	ConfigureRuntime()
}

// Entry point for the API.
func main() {
	defer logger.Sync()
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load the config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	// Check that all ENV variables are set
	if err := cfg.CheckConfigEnvFields(); err != nil {
		log.Fatal("missing required config fields", zap.Error(err))
	}

	// Load prompts, embedded defaults unless PROMPTS_PATH overrides them
	prompts, err := config.LoadPrompts(cfg.EnvVars.PromptsPath)
	if err != nil {
		log.Fatal("failed to load prompts", zap.Error(err))
	}
	cfg.Prompts = prompts

	if err := os.MkdirAll(cfg.EnvVars.DataDir, 0o755); err != nil {
		log.Fatal("failed to create data directory", zap.String("dir", cfg.EnvVars.DataDir), zap.Error(err))
	}

	// Connect to the database
	database, err := db.New(cfg)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := database.DB()
	if err != nil {
		log.Fatal("failed to get underlying sql.DB", zap.Error(err))
	}
	defer sqlDB.Close()

	// Model gateway
	gateway, closer := ai.BuildGateway(ctx, cfg.EnvVars)
	defer closer.Close()

	// Recipe source
	source := spoonacular.NewClient(cfg.EnvVars.SpoonacularAPIKey, cfg.EnvVars.SpoonacularCuisine, cfg.EnvVars.RecipeTimeout)
	if !source.Configured() {
		log.Warn("SPOONACULAR_API_KEY not set, recipe lookups will fail")
	}

	deps := router.Dependencies{
		Users:    repository.NewUserRepository(database),
		Gen:      gateway,
		Source:   source,
		Store:    newCacheStore(ctx, cfg),
		Renderer: pdf.NewRenderer(),
	}
	if cfg.SharingEnabled() {
		deps.Uploader = s3.NewPDFUploader(cfg)
	}

	// Create a new gin router
	gin.SetMode(gin.ReleaseMode)
	r := router.SetupRouter(cfg, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.EnvVars.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("port", cfg.EnvVars.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newCacheStore returns the Redis store when REDIS_URL is set and reachable,
// and the in-process store otherwise.
func newCacheStore(ctx context.Context, cfg *config.Config) cache.Store {
	if cfg.EnvVars.RedisURL == "" {
		return cache.NewMemoryStore()
	}
	store, err := cache.NewRedisStore(ctx, cfg.EnvVars.RedisURL, cache.DefaultRedisPrefix)
	if err != nil {
		logger.Get().Warn("redis unavailable, using in-memory result cache", zap.Error(err))
		return cache.NewMemoryStore()
	}
	logger.Get().Info("using redis result cache")
	return store
}

// ConfigureRuntime sets the number of operating system threads.
func ConfigureRuntime() {
	nuCPU := runtime.NumCPU()
	runtime.GOMAXPROCS(nuCPU)
	logger.Get().Info("runtime configured", zap.Int("cpus", nuCPU))
}

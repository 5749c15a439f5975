package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/windoze95/dapur-api/internal/ai"
	"github.com/windoze95/dapur-api/internal/config"
	"github.com/windoze95/dapur-api/internal/repository"
	"github.com/windoze95/dapur-api/internal/service"
	"github.com/windoze95/dapur-api/internal/spoonacular"
)

var errGatewayUnavailable = errors.New("model gateway unavailable: set GOOGLE_API_KEY or ANTHROPIC_API_KEY")

type commandContext struct {
	dataDir string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	buildGateway func(ctx context.Context, env config.EnvVars) (*ai.Gateway, io.Closer)
	buildSource  func(env config.EnvVars) service.RecipeSource
}

func newCommandContext() *commandContext {
	return &commandContext{
		buildGateway: ai.BuildGateway,
		buildSource: func(env config.EnvVars) service.RecipeSource {
			return spoonacular.NewClient(env.SpoonacularAPIKey, env.SpoonacularCuisine, env.RecipeTimeout)
		},
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.LoadConfig()
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		if dir := strings.TrimSpace(c.dataDir); dir != "" {
			cfg.EnvVars.DataDir = dir
		}
		prompts, err := config.LoadPrompts(cfg.EnvVars.PromptsPath)
		if err != nil {
			c.configErr = fmt.Errorf("load prompts: %w", err)
			return
		}
		cfg.Prompts = prompts
		if err := os.MkdirAll(cfg.EnvVars.DataDir, 0o755); err != nil {
			c.configErr = fmt.Errorf("create data directory: %w", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// gateway builds the model gateway. Callers must close the returned closer.
func (c *commandContext) gateway(ctx context.Context) (*ai.Gateway, io.Closer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	g, closer := c.buildGateway(ctx, cfg.EnvVars)
	if closer == nil {
		closer = io.NopCloser(nil)
	}
	return g, closer, nil
}

func (c *commandContext) conversations() (*repository.ConversationRepository, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return repository.NewConversationRepository(cfg.EnvVars.DataDir), nil
}

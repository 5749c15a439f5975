package config

import (
	"fmt"
	"reflect"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration.
type Config struct {
	EnvVars EnvVars  `json:"env"`
	Prompts *Prompts `json:"-"`
}

// EnvVars holds environment variables required by the application.
// Fields tagged `optional:"true"` are skipped by CheckConfigEnvFields.
type EnvVars struct {
	Port         string `env:"PORT" envDefault:"8080"`
	DatabaseUrl  string `env:"DATABASE_URL"`
	JwtSecretKey string `env:"JWT_SECRET_KEY"`
	DataDir      string `env:"DATA_DIR" envDefault:"data"`
	PromptsPath  string `env:"PROMPTS_PATH" optional:"true"`

	// Model gateway
	GoogleAPIKey      string        `env:"GOOGLE_API_KEY" optional:"true"`
	ModelCandidates   []string      `env:"MODEL_CANDIDATES" envSeparator:"," optional:"true"`
	ModelShapes       []string      `env:"MODEL_SHAPES" envSeparator:"," envDefault:"generative_model,completion"`
	AttemptTimeout    time.Duration `env:"MODEL_ATTEMPT_TIMEOUT" envDefault:"30s"`
	AnthropicAPIKey   string        `env:"ANTHROPIC_API_KEY" optional:"true"`
	AnthropicModel    string        `env:"ANTHROPIC_MODEL" envDefault:"claude-haiku-4-5-20251001"`
	CompletionBaseURL string        `env:"COMPLETION_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta/openai/"`

	// Recipe source
	SpoonacularAPIKey  string        `env:"SPOONACULAR_API_KEY" optional:"true"`
	SpoonacularCuisine string        `env:"SPOONACULAR_CUISINE" optional:"true"`
	RecipeTimeout      time.Duration `env:"RECIPE_TIMEOUT" envDefault:"15s"`

	// Result cache
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"1h"`
	RedisURL string        `env:"REDIS_URL" optional:"true"`

	// PDF sharing
	AWSRegion          string `env:"AWS_REGION" optional:"true"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" optional:"true"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" optional:"true"`
	S3Bucket           string `env:"S3_BUCKET" optional:"true"`

	// HTTP surface
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:8501"`
	AIRateLimit    float64  `env:"AI_RATE_LIMIT" envDefault:"1"`
	AIRateBurst    int      `env:"AI_RATE_BURST" envDefault:"5"`
	MetricsToken   string   `env:"METRICS_TOKEN" optional:"true"`
}

// LoadConfig parses environment variables into the Config struct.
func LoadConfig() (*Config, error) {
	var config Config
	if err := env.Parse(&config.EnvVars); err != nil {
		return nil, err
	}
	return &config, nil
}

// CheckConfigEnvFields validates that all required EnvVars fields are set.
func (c *Config) CheckConfigEnvFields() error {
	return checkFieldsRecursive(reflect.ValueOf(c.EnvVars))
}

// SharingEnabled reports whether exported PDFs can be uploaded to S3.
func (c *Config) SharingEnabled() bool {
	return c.EnvVars.S3Bucket != "" && c.EnvVars.AWSRegion != ""
}

func checkFieldsRecursive(v reflect.Value) error {
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := v.Type().Field(i)
		if fieldType.Tag.Get("optional") == "true" {
			continue
		}
		if field.IsZero() {
			name := fieldType.Tag.Get("env")
			if name == "" {
				name = fieldType.Name
			}
			return fmt.Errorf("$%s must be set", name)
		}
		if field.Kind() == reflect.Struct {
			if err := checkFieldsRecursive(field); err != nil {
				return err
			}
		}
	}
	return nil
}

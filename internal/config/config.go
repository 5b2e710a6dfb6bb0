package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/Brownie44l1/foodlens/internal/nutrition"
)

type Config struct {
	HTTPAddress string

	ModelDir     string
	ModelFile    string
	MetadataFile string

	NutritionAPIURL string
	NutritionAPIKey string

	LogLevel string
}

var envMappings = map[string]string{
	"HTTPAddress":     "HTTP_ADDRESS",
	"ModelDir":        "MODEL_DIR",
	"ModelFile":       "MODEL_FILE",
	"MetadataFile":    "METADATA_FILE",
	"NutritionAPIURL": "NUTRITION_API_URL",
	"NutritionAPIKey": "NUTRITION_API_KEY",
	"LogLevel":        "LOG_LEVEL",
}

// Load reads the optional secrets file, an optional foodlens.yaml and the
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	if err := loadSecrets(); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	for key, env := range envMappings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	v.SetConfigName("foodlens")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug().Msg("Config file not found, using environment variables and defaults")
	} else {
		log.Info().Msgf("Using config file: %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if os.Getenv("HTTP_ADDRESS") == "" {
		if port := os.Getenv("PORT"); port != "" {
			cfg.HTTPAddress = ":" + port
		}
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadSecrets loads SECRETS_FILE (default .env) into the environment without
// overriding variables that are already set. A missing file is not an error.
func loadSecrets() error {
	path := os.Getenv("SECRETS_FILE")
	if path == "" {
		path = ".env"
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load secrets file %s: %w", path, err)
	}

	log.Debug().Str("path", path).Msg("Loaded secrets file")
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTPAddress", ":8080")
	v.SetDefault("ModelDir", "models")
	v.SetDefault("ModelFile", "model.onnx")
	v.SetDefault("MetadataFile", "model_metadata.json")
	v.SetDefault("NutritionAPIURL", nutrition.DefaultBaseURL)
	v.SetDefault("LogLevel", "info")
}

func validate(cfg *Config) error {
	var missing []string

	if strings.TrimSpace(cfg.NutritionAPIKey) == "" {
		missing = append(missing, "NUTRITION_API_KEY")
	}
	if cfg.NutritionAPIURL == "" {
		missing = append(missing, "NUTRITION_API_URL")
	}
	if cfg.ModelDir == "" {
		missing = append(missing, "MODEL_DIR")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) ModelPath() string {
	return c.resolve(c.ModelFile)
}

func (c *Config) MetadataPath() string {
	return c.resolve(c.MetadataFile)
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.ModelDir, name)
}

package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Brownie44l1/foodlens/internal/config"
	"github.com/Brownie44l1/foodlens/internal/model"
	"github.com/Brownie44l1/foodlens/internal/nutrition"
	"github.com/Brownie44l1/foodlens/internal/pipeline"
	"github.com/Brownie44l1/foodlens/internal/report"
)

// app holds the process-wide dependencies. The model is loaded once here and
// released by Close.
type app struct {
	model     *model.Server
	nutrition *nutrition.Client
	pipeline  *pipeline.Pipeline
}

func newApp(cfg *config.Config, render report.Renderer) (*app, error) {
	log.Info().Str("model", cfg.ModelPath()).Msg("Loading model")

	modelServer, err := model.NewServer(cfg.ModelPath(), cfg.MetadataPath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize model server: %w", err)
	}

	client := nutrition.NewClient(
		nutrition.WithBaseURL(cfg.NutritionAPIURL),
		nutrition.WithAPIKey(cfg.NutritionAPIKey),
	)

	return &app{
		model:     modelServer,
		nutrition: client,
		pipeline:  pipeline.New(modelServer, client, render),
	}, nil
}

func (a *app) Close() {
	a.model.Close()
}

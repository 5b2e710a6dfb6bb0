package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Brownie44l1/foodlens/internal/handlers"
	"github.com/Brownie44l1/foodlens/internal/report"
	"github.com/Brownie44l1/foodlens/internal/server"
)

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, report.Format)
	if err != nil {
		return err
	}
	defer a.Close()

	if zerolog.GlobalLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	h := handlers.NewHandler(a.model, a.pipeline, a.nutrition)
	router := server.NewRouter(h)

	log.Info().
		Int("classes", len(a.model.Metadata.Classes)).
		Str("nutrition_api", cfg.NutritionAPIURL).
		Msg("Endpoints: GET /health, POST /predict, POST /predict/image, POST /analyze, GET /nutrition")
	log.Info().Msgf("Upload test: curl -X POST -F \"image=@food.jpg\" http://localhost%s/analyze", cfg.HTTPAddress)

	return server.Run(ctx, cfg.HTTPAddress, router)
}

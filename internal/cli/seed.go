package cli

import (
	"context"
	"os"

	"ecoclick-api/internal/config"
	"ecoclick-api/internal/seed"
	"github.com/spf13/cobra"
)

// NewSeedCmd loads the bundled quizzes, eco-feedback and achievements into empty collections.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load sample content into empty collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath)
		},
	}
}

func runSeed(ctx context.Context, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log, os.Stdout)

	rt, err := openRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close(context.Background(), logger)

	seeded, err := seed.Seed(ctx, rt.store)
	if err != nil {
		return err
	}
	logger.Info("seed complete", "collections", seeded)
	return nil
}

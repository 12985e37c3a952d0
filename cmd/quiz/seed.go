package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"astramate/internal/db"
	"astramate/internal/repository"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the candidates table and upsert the demo (or --file) candidates",
	Run: func(cmd *cobra.Command, _ []string) {
		seed()
	},
}

var (
	seedFile     string
	seedParallel int
)

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML candidate catalog (defaults to CANDIDATES_FILE or the demo catalog)")
	seedCmd.Flags().IntVarP(&seedParallel, "parallel", "p", 4, "concurrent upserts")
	rootCmd.AddCommand(seedCmd)
}

func seed() {
	cfg, logger := setup()
	defer logger.Sync()

	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is required for seeding")
	}

	candidates := repository.DemoCandidates()
	path := seedFile
	if path == "" {
		path = cfg.CandidatesFile
	}
	if path != "" {
		list, err := repository.LoadCandidatesFile(path)
		if err != nil {
			logger.Fatal("load candidates", zap.Error(err))
		}
		candidates = list
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	repo := repository.NewPgCandidateRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Fatal("ensure schema", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, seedParallel))
	for _, c := range candidates {
		g.Go(func() error {
			if err := repo.Upsert(gctx, c); err != nil {
				return fmt.Errorf("upsert candidate %d: %w", c.ID, err)
			}
			logger.Info("candidate seeded", zap.Int("id", c.ID), zap.String("name", c.Name))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Fatal("seed", zap.Error(err))
	}
	logger.Info("seed done", zap.Int("candidates", len(candidates)))
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/vajra/internal/cache"
	"github.com/example/vajra/internal/utils"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		file   string
		dryRun bool
		env    string
	)

	cmd := &cobra.Command{
		Use:   "cachefix",
		Short: "Repair an exported storefront storage snapshot",
		Long: `Runs the cart and liked list migration over a JSON object of
storage keys, the shape of an exported browser localStorage, and writes the
result back in place.

Examples:
  cachefix --file storage.json
  cachefix --file storage.json --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := utils.NewLogger(env)
			defer func() { _ = logger.Sync() }()
			return run(logger, file, dryRun)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "storage snapshot to migrate")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report the stored version without changing the file")
	cmd.Flags().StringVar(&env, "env", "development", "logging environment")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func run(logger *zap.Logger, file string, dryRun bool) error {
	storage, err := cache.OpenFileStorage(file)
	if err != nil {
		return err
	}

	if dryRun {
		logger.Info("dry run",
			zap.String("file", file),
			zap.Int("version", cache.StoredVersion(storage)),
			zap.Int("target", cache.SchemaVersion),
			zap.Int("liked", len(cache.GetLiked(storage))),
		)
		return nil
	}

	res, err := cache.Migrate(storage)
	if err != nil {
		return fmt.Errorf("migrate %s: %w", file, err)
	}

	logger.Info("storage migrated",
		zap.String("file", file),
		zap.Int("from_version", res.FromVersion),
		zap.Int("to_version", res.ToVersion),
		zap.Bool("changed", res.Migrated()),
		zap.Int("liked", len(res.Liked)),
		zap.Int("cart", len(res.Cart)),
	)
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"cognition-berries/pkg/config"
	"cognition-berries/pkg/database"
	"cognition-berries/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	mongoURI    string
	mongoDBName string
	dryRun      bool
	repair      bool
	timeout     time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Schema and data maintenance for the Cognition Berries database",
	Long: `Maintenance commands for the MongoDB database behind the API.

Examples:
  migrate indexes                        # create or update all indexes
  migrate normalize-images --dry-run     # show what would be rewritten
  migrate check-images --repair          # clear dangling image references`,
	SilenceUsage: true,
}

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the unique and lookup indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(ctx context.Context, db *database.MongoDB, log *logger.Logger) error {
			return db.EnsureIndexes(ctx, log)
		})
	},
}

var normalizeImagesCmd = &cobra.Command{
	Use:   "normalize-images",
	Short: "Store image data as full data URLs and mark linked courses as base64",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(ctx context.Context, db *database.MongoDB, log *logger.Logger) error {
			stats, err := normalizeImages(ctx, db, dryRun, log)
			if err != nil {
				return err
			}
			log.Info("Normalized %d image documents and %d course references (dry run: %t)",
				stats.ImagesRewritten, stats.CoursesMarked, dryRun)
			return nil
		})
	},
}

var checkImagesCmd = &cobra.Command{
	Use:   "check-images",
	Short: "Report courses whose image reference no longer resolves",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(ctx context.Context, db *database.MongoDB, log *logger.Logger) error {
			broken, err := checkImages(ctx, db, repair, log)
			if err != nil {
				return err
			}
			for _, b := range broken {
				log.Warn("Course %s (%s) points at missing image %q", b.CourseID, b.Title, b.Image)
			}
			log.Info("%d courses with dangling image references (repaired: %t)", len(broken), repair && !dryRun)
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB connection string (defaults to MONGO_URI)")
	rootCmd.PersistentFlags().StringVar(&mongoDBName, "db", "", "Database name (defaults to MONGO_DB_NAME)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Report changes without writing")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "Give up after this long")

	checkImagesCmd.Flags().BoolVar(&repair, "repair", false, "Clear references to missing images")

	rootCmd.AddCommand(indexesCmd, normalizeImagesCmd, checkImagesCmd)
}

func withDatabase(parent context.Context, fn func(ctx context.Context, db *database.MongoDB, log *logger.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if mongoURI == "" {
		mongoURI = cfg.MongoURI
	}
	if mongoDBName == "" {
		mongoDBName = cfg.MongoDBName
	}

	log := logger.NewWithOptions(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}).Named("migrate")
	defer log.Sync()

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	db, err := database.Connect(ctx, mongoURI, mongoDBName, log)
	if err != nil {
		return err
	}
	defer db.Close(context.Background())

	return fn(ctx, db, log)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
